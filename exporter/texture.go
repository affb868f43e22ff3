package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"github.com/binzume/glbexport/model"
	"github.com/blezek/tga"
	"github.com/h2non/filetype"
	_ "github.com/oov/psd"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

var ErrNoImage = errors.New("exporter: texture has neither data nor image")

type TextureOptions struct {
	ReCompress    bool
	MaxResolution int     // 0: unlimited
	Scale         float32 // 0 or 1: keep size
	JPEGQuality   int     // 0: encoder default
}

func (o *TextureOptions) resize() bool {
	return o.MaxResolution > 0 || (o.Scale != 0 && o.Scale != 1)
}

// SampledTextureUnit is one texture ready for embedding. Either Data (an
// encoded image file) or Image must be set.
type SampledTextureUnit struct {
	Name     string
	Data     []byte
	Image    image.Image
	MimeType string // detected from Data when empty
	Sampler  model.Sampler
}

// CreateSampledTexture embeds the image of unit into the buffer and returns a
// texture referencing it. Textures with the same non-empty name are created once.
func (e *Exporter) CreateSampledTexture(unit *SampledTextureUnit) (model.ObjectID, error) {
	if unit.Name != "" {
		if id, ok := e.textures[unit.Name]; ok {
			return id, nil
		}
	}
	data, mime, err := e.encodeTexture(unit)
	if err != nil {
		return model.NullID, fmt.Errorf("texture %q: %w", unit.Name, err)
	}

	view := e.AddBufferView(&model.BufferView{Buffer: bufferID})
	e.writeView(view, data, 0, model.TargetNone)
	img := e.AddImage(&model.Image{Name: unit.Name, MimeType: mime, BufferView: view})

	sampler, ok := e.samplers[unit.Sampler]
	if !ok {
		s := unit.Sampler
		sampler = e.AddSampler(&s)
		e.samplers[unit.Sampler] = sampler
	}
	id := e.AddTexture(&model.Texture{Name: unit.Name, Sampler: sampler, Source: img})
	if unit.Name != "" {
		e.textures[unit.Name] = id
	}
	return id, nil
}

func (e *Exporter) encodeTexture(unit *SampledTextureUnit) ([]byte, string, error) {
	opt := &e.Texture
	mime := unit.MimeType
	if mime == "" && len(unit.Data) > 0 {
		kind, err := filetype.Match(unit.Data)
		if err == nil && kind != filetype.Unknown {
			mime = kind.MIME.Value
		}
	}
	embeddable := mime == MimePNG || mime == MimeJPEG
	if len(unit.Data) > 0 && embeddable && !opt.ReCompress && !opt.resize() {
		return unit.Data, mime, nil
	}

	img := unit.Image
	if img == nil {
		if len(unit.Data) == 0 {
			return nil, "", ErrNoImage
		}
		var err error
		img, err = decodeImage(unit.Data)
		if err != nil {
			return nil, "", err
		}
		e.log.Debug("texture decoded", zap.String("texture", unit.Name), zap.String("mime", mime))
	}
	img = scaleImage(img, opt.Scale, opt.MaxResolution)

	w := new(bytes.Buffer)
	if mime == MimeJPEG {
		var jo *jpeg.Options
		if opt.JPEGQuality > 0 {
			jo = &jpeg.Options{Quality: opt.JPEGQuality}
		}
		if err := jpeg.Encode(w, img, jo); err != nil {
			return nil, "", err
		}
		return w.Bytes(), MimeJPEG, nil
	}
	if err := png.Encode(w, img); err != nil {
		return nil, "", err
	}
	return w.Bytes(), MimePNG, nil
}

// decodeImage decodes any registered format. TGA has no magic number, so it
// is tried last.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if img, tgaErr := tga.Decode(bytes.NewReader(data)); tgaErr == nil {
		return img, nil
	}
	return nil, err
}

func scaleImage(img image.Image, scale float32, limit int) image.Image {
	if scale == 0 {
		scale = 1
	}
	rect := img.Bounds()
	if limit > 0 {
		sz := int(float32(max(rect.Dx(), rect.Dy())) * scale)
		if sz > limit {
			scale *= float32(limit) / float32(sz)
		}
	}
	if scale == 1 {
		return img
	}
	w := max(int(float32(rect.Dx())*scale), 1)
	h := max(int(float32(rect.Dy())*scale), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	return dst
}
