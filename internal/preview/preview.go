// Package preview decodes live-view frames reported by a device.
package preview

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"time"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// Frame is one decoded preview. Data keeps the encoded bytes so they can be
// served without re-encoding.
type Frame struct {
	Seq        uint64
	Image      *image.RGBA
	Data       []byte
	CapturedAt time.Time
}

func (f *Frame) Width() int  { return f.Image.Rect.Dx() }
func (f *Frame) Height() int { return f.Image.Rect.Dy() }

// Decode turns JPEG bytes into an RGBA frame.
func Decode(data []byte) (*Frame, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &types.DecodeError{Err: err}
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	return &Frame{
		Image:      rgba,
		Data:       data,
		CapturedAt: time.Now(),
	}, nil
}
