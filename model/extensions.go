package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// Extension is the payload stored under one extension name.
type Extension interface {
	ExtensionName() string
}

// ExtensionDecoder turns the raw JSON of a registered extension into its typed payload.
type ExtensionDecoder func(data []byte) (Extension, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ExtensionDecoder{}
)

// RegisterExtension makes Decode produce a typed payload for name.
func RegisterExtension(name string, dec ExtensionDecoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = dec
}

func decodeExtension(name string, data []byte) (Extension, error) {
	registryMu.RLock()
	dec := registry[name]
	registryMu.RUnlock()
	if dec == nil {
		return &RawExtension{Name: name, Data: append(json.RawMessage(nil), data...)}, nil
	}
	ext, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("model: extension %s: %w", name, err)
	}
	return ext, nil
}

// RawExtension keeps an unknown extension as opaque JSON.
type RawExtension struct {
	Name string
	Data json.RawMessage
}

func (r *RawExtension) ExtensionName() string { return r.Name }

func (r *RawExtension) MarshalJSON() ([]byte, error) {
	if len(r.Data) == 0 {
		return []byte("{}"), nil
	}
	return r.Data, nil
}

// Extensions is an insertion-ordered map from extension name to payload.
type Extensions struct {
	keys   []string
	values map[string]Extension
}

// Set stores ext under its name. Replacing keeps the original position.
func (e *Extensions) Set(ext Extension) {
	name := ext.ExtensionName()
	if e.values == nil {
		e.values = map[string]Extension{}
	}
	if _, ok := e.values[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.values[name] = ext
}

func (e *Extensions) Get(name string) (Extension, bool) {
	ext, ok := e.values[name]
	return ext, ok
}

func (e *Extensions) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

func (e *Extensions) Len() int {
	return len(e.keys)
}

// Names returns extension names in insertion order.
func (e *Extensions) Names() []string {
	return append([]string(nil), e.keys...)
}

func (e Extensions) IsZero() bool {
	return len(e.keys) == 0
}

func (e Extensions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v, err := json.Marshal(e.values[k])
		if err != nil {
			return nil, fmt.Errorf("model: extension %s: %w", k, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Extensions) UnmarshalJSON(data []byte) error {
	*e = Extensions{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("model: extensions must be an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		ext, err := decodeExtension(name, raw)
		if err != nil {
			return err
		}
		e.Set(ext)
	}
	_, err = dec.Token()
	return err
}

const (
	UnlitExtension            = "KHR_materials_unlit"
	TextureTransformExtension = "KHR_texture_transform"
)

func init() {
	RegisterExtension(UnlitExtension, func(data []byte) (Extension, error) {
		return &MaterialsUnlit{}, nil
	})
	RegisterExtension(TextureTransformExtension, func(data []byte) (Extension, error) {
		var t TextureTransform
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return &t, nil
	})
}

// MaterialsUnlit is KHR_materials_unlit. It carries no properties.
type MaterialsUnlit struct{}

func (*MaterialsUnlit) ExtensionName() string { return UnlitExtension }

// TextureTransform is KHR_texture_transform.
type TextureTransform struct {
	Offset   *[2]float32 `json:"offset,omitempty"`
	Rotation float32     `json:"rotation,omitempty"`
	Scale    *[2]float32 `json:"scale,omitempty"`
	TexCoord *uint32     `json:"texCoord,omitempty"`
}

func (*TextureTransform) ExtensionName() string { return TextureTransformExtension }
