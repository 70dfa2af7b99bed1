package encoder

import (
	"bytes"
	"image"
	"image/jpeg"

	"thermalview/internal/frame"
)

// JPEGEncoder encodes frames as JPEG.
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	e := &JPEGEncoder{}
	e.SetQuality(quality)
	return e
}

// SetQuality clamps and applies the JPEG quality for subsequent encodes.
func (e *JPEGEncoder) SetQuality(quality int) {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	e.quality = quality
}

// Encode validates the frame and compresses it. Gray frames are stored as
// grayscale JPEG, color frames as RGB.
func (e *JPEGEncoder) Encode(f *frame.Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(64 * 1024)
	if err := jpeg.Encode(&buf, toImage(f), &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toImage(f *frame.Frame) image.Image {
	if f.Format == frame.Gray8 {
		img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
		copy(img.Pix, f.Data)
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for p := 0; p < f.Width*f.Height; p++ {
		img.Pix[p*4+0] = f.Data[p*3+0]
		img.Pix[p*4+1] = f.Data[p*3+1]
		img.Pix[p*4+2] = f.Data[p*3+2]
		img.Pix[p*4+3] = 0xFF
	}
	return img
}
