// Package exporter packs geometry, animation and image data into a single
// binary buffer while building the glTF document that describes it.
//
// An Exporter is one export session. It owns its document and buffer and is
// not safe for concurrent use.
package exporter

import (
	"fmt"

	"github.com/binzume/glbexport/model"
	gltfbinary "github.com/qmuntal/gltf/binary"
	"go.uber.org/zap"
)

// DefaultGenerator is written to asset.generator when Options leaves it empty.
const DefaultGenerator = "glbexport"

// bufferID is the single binary buffer every view points into.
const bufferID model.ObjectID = 0

// Options configures an export session. A nil Logger discards log output.
type Options struct {
	Generator string
	Copyright string
	Logger    *zap.Logger
	Texture   TextureOptions
}

// Exporter builds a document and its binary buffer. Buffer 0 is created up
// front and every buffer view points into it.
type Exporter struct {
	*model.Root
	*Options

	buffer   []byte
	log      *zap.Logger
	textures map[string]model.ObjectID
	samplers map[model.Sampler]model.ObjectID
}

// NewExporter starts an export session with an empty document. options may
// be nil.
func NewExporter(options *Options) *Exporter {
	if options == nil {
		options = &Options{}
	}
	if options.Generator == "" {
		options.Generator = DefaultGenerator
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{
		Root:     model.NewRoot(options.Generator),
		Options:  options,
		log:      log,
		textures: map[string]model.ObjectID{},
		samplers: map[model.Sampler]model.ObjectID{},
	}
	e.Asset.Copyright = options.Copyright
	e.AddBuffer(&model.Buffer{})
	return e
}

// Append writes data at the end of the buffer and zero-pads the buffer to a
// multiple of 4. The returned length excludes the padding.
func (e *Exporter) Append(data []byte) (offset, length uint32) {
	offset = uint32(len(e.buffer))
	e.buffer = append(e.buffer, data...)
	for len(e.buffer)%4 != 0 {
		e.buffer = append(e.buffer, 0)
	}
	e.Buffers[bufferID].ByteLength = uint32(len(e.buffer))
	return offset, uint32(len(data))
}

// Len returns the number of bytes packed so far, padding included.
func (e *Exporter) Len() int {
	return len(e.buffer)
}

// Bytes returns the packed buffer. The slice must not be modified.
func (e *Exporter) Bytes() []byte {
	return e.buffer[:len(e.buffer):len(e.buffer)]
}

// GetData returns the bytes already written for a buffer view.
func (e *Exporter) GetData(view model.ObjectID) []byte {
	if !view.In(len(e.BufferViews)) {
		return nil
	}
	v := e.BufferViews[view]
	end := v.ByteOffset + v.ByteLength
	return e.buffer[v.ByteOffset:end:end]
}

// CreateOrReuseAccessor materializes an accessor and its buffer view.
// For NullID a new empty pair is appended; otherwise the existing pair is
// returned unchanged.
func (e *Exporter) CreateOrReuseAccessor(id model.ObjectID) (accessor, view model.ObjectID) {
	if !id.IsNull() {
		return id, e.accessorView(id)
	}
	view = e.AddBufferView(&model.BufferView{Buffer: bufferID})
	accessor = e.AddAccessor(&model.Accessor{BufferView: view})
	return accessor, view
}

func (e *Exporter) accessorView(id model.ObjectID) model.ObjectID {
	a := e.Accessors[id]
	if a.Sparse != nil {
		return a.Sparse.Values.BufferView
	}
	return a.BufferView
}

func (e *Exporter) writeView(id model.ObjectID, data []byte, stride uint32, target model.Target) {
	offset, length := e.Append(data)
	v := e.BufferViews[id]
	v.Buffer = bufferID
	v.ByteOffset = offset
	v.ByteLength = length
	v.ByteStride = stride
	v.Target = target
}

// pack encodes rows of a supported slice type as tightly packed little-endian data.
func pack(data interface{}, count int, elemSize int) []byte {
	b := make([]byte, count*elemSize)
	if err := gltfbinary.Write(b, uint32(elemSize), data); err != nil {
		panic(fmt.Sprintf("exporter: cannot pack %T: %v", data, err))
	}
	return b
}
