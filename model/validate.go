package model

import (
	"errors"
	"fmt"
)

type refChecker struct {
	errs []error
}

func (c *refChecker) ref(where string, id ObjectID, n int, optional bool) {
	if id == NullID {
		if !optional {
			c.errs = append(c.errs, fmt.Errorf("%s: %w", where, ErrNullReference))
		}
		return
	}
	if int(id) >= n {
		c.errs = append(c.errs, fmt.Errorf("%s: index %d out of range (%d)", where, id, n))
	}
}

// Validate checks that every handle in the document is null where allowed
// or in range of its target array, and that buffer views fit their buffers.
func (r *Root) Validate() error {
	c := &refChecker{}
	c.ref("scene", r.Scene, len(r.Scenes), true)
	for i, s := range r.Scenes {
		for _, n := range s.Nodes {
			c.ref(fmt.Sprintf("scenes[%d].nodes", i), n, len(r.Nodes), false)
		}
	}
	for i, n := range r.Nodes {
		where := fmt.Sprintf("nodes[%d]", i)
		c.ref(where+".mesh", n.Mesh, len(r.Meshes), true)
		c.ref(where+".skin", n.Skin, len(r.Skins), true)
		for _, ch := range n.Children {
			c.ref(where+".children", ch, len(r.Nodes), false)
		}
	}
	for i, m := range r.Meshes {
		for j, p := range m.Primitives {
			where := fmt.Sprintf("meshes[%d].primitives[%d]", i, j)
			c.ref(where+".indices", p.Indices, len(r.Accessors), true)
			c.ref(where+".material", p.Material, len(r.Materials), true)
			for name, a := range p.Attributes {
				c.ref(where+".attributes."+name, a, len(r.Accessors), false)
			}
			for k, t := range p.Targets {
				for name, a := range t {
					c.ref(fmt.Sprintf("%s.targets[%d].%s", where, k, name), a, len(r.Accessors), false)
				}
			}
		}
	}
	for i, a := range r.Accessors {
		where := fmt.Sprintf("accessors[%d]", i)
		c.ref(where+".bufferView", a.BufferView, len(r.BufferViews), true)
		if a.Sparse != nil {
			c.ref(where+".sparse.indices", a.Sparse.Indices.BufferView, len(r.BufferViews), false)
			c.ref(where+".sparse.values", a.Sparse.Values.BufferView, len(r.BufferViews), false)
		}
	}
	for i, v := range r.BufferViews {
		where := fmt.Sprintf("bufferViews[%d]", i)
		c.ref(where+".buffer", v.Buffer, len(r.Buffers), false)
		if v.Buffer.In(len(r.Buffers)) {
			if b := r.Buffers[v.Buffer]; uint64(v.ByteOffset)+uint64(v.ByteLength) > uint64(b.ByteLength) {
				c.errs = append(c.errs, fmt.Errorf("%s: range %d+%d exceeds buffer length %d", where, v.ByteOffset, v.ByteLength, b.ByteLength))
			}
		}
	}
	for i, m := range r.Materials {
		where := fmt.Sprintf("materials[%d]", i)
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorTexture != nil {
				c.ref(where+".baseColorTexture", pbr.BaseColorTexture.Index, len(r.Textures), false)
			}
			if pbr.MetallicRoughnessTexture != nil {
				c.ref(where+".metallicRoughnessTexture", pbr.MetallicRoughnessTexture.Index, len(r.Textures), false)
			}
		}
		if m.NormalTexture != nil {
			c.ref(where+".normalTexture", m.NormalTexture.Index, len(r.Textures), false)
		}
		if m.OcclusionTexture != nil {
			c.ref(where+".occlusionTexture", m.OcclusionTexture.Index, len(r.Textures), false)
		}
		if m.EmissiveTexture != nil {
			c.ref(where+".emissiveTexture", m.EmissiveTexture.Index, len(r.Textures), false)
		}
	}
	for i, t := range r.Textures {
		where := fmt.Sprintf("textures[%d]", i)
		c.ref(where+".sampler", t.Sampler, len(r.Samplers), true)
		c.ref(where+".source", t.Source, len(r.Images), true)
	}
	for i, img := range r.Images {
		c.ref(fmt.Sprintf("images[%d].bufferView", i), img.BufferView, len(r.BufferViews), true)
	}
	for i, s := range r.Skins {
		where := fmt.Sprintf("skins[%d]", i)
		c.ref(where+".inverseBindMatrices", s.InverseBindMatrices, len(r.Accessors), true)
		c.ref(where+".skeleton", s.Skeleton, len(r.Nodes), true)
		for _, j := range s.Joints {
			c.ref(where+".joints", j, len(r.Nodes), false)
		}
	}
	for i, a := range r.Animations {
		for j, s := range a.Samplers {
			where := fmt.Sprintf("animations[%d].samplers[%d]", i, j)
			c.ref(where+".input", s.Input, len(r.Accessors), false)
			c.ref(where+".output", s.Output, len(r.Accessors), false)
		}
		for j, ch := range a.Channels {
			where := fmt.Sprintf("animations[%d].channels[%d]", i, j)
			c.ref(where+".sampler", ch.Sampler, len(a.Samplers), false)
			c.ref(where+".target.node", ch.Target.Node, len(r.Nodes), true)
		}
	}
	return errors.Join(c.errs...)
}
