package encoder

import (
	"bytes"
	"image/jpeg"
	"testing"

	"thermalview/internal/frame"
)

func TestEncodeGrayFrame(t *testing.T) {
	e := NewJPEGEncoder(80)
	f := &frame.Frame{Width: 16, Height: 12, Format: frame.Gray8, Data: make([]byte, 192)}
	for i := range f.Data {
		f.Data[i] = byte(i)
	}

	data, err := e.Encode(f)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not decodable JPEG: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Errorf("decoded size %v, want 16x12", img.Bounds())
	}
}

func TestEncodeColorFrame(t *testing.T) {
	e := NewJPEGEncoder(80)
	f := &frame.Frame{Width: 8, Height: 8, Format: frame.RGB24, Data: make([]byte, 192)}

	data, err := e.Encode(f)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not decodable JPEG: %v", err)
	}
}

func TestEncodeRejectsMalformed(t *testing.T) {
	e := NewJPEGEncoder(80)
	f := &frame.Frame{Width: 8, Height: 8, Format: frame.RGB24, Data: make([]byte, 3)}
	if _, err := e.Encode(f); err == nil {
		t.Error("Encode accepted a malformed frame")
	}
}

func TestQualityClamped(t *testing.T) {
	for _, q := range []int{-5, 0, 101, 1000} {
		e := NewJPEGEncoder(q)
		if e.quality < 1 || e.quality > 100 {
			t.Errorf("quality %d not clamped: %d", q, e.quality)
		}
	}
}
