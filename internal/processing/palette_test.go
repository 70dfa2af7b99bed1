package processing

import (
	"errors"
	"testing"

	"thermalview/internal/frame"
)

func TestLookupKnownPalettes(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Name() = %q, want %q", p.Name(), name)
		}
	}
}

func TestLookupUnknownPalette(t *testing.T) {
	_, err := Lookup("plasma")
	if !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("Lookup error = %v, want ErrUnknownPalette", err)
	}
}

// TestApplyExpandsChannels verifies the LUT expansion produces a valid rgb24
// frame three times the input size.
func TestApplyExpandsChannels(t *testing.T) {
	p, err := Lookup("iron")
	if err != nil {
		t.Fatal(err)
	}
	in := &frame.Frame{
		Width:  16,
		Height: 8,
		Format: frame.Gray8,
		Data:   make([]byte, 128),
		Seq:    7,
	}
	for i := range in.Data {
		in.Data[i] = byte(i * 2)
	}

	out, err := p.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Format != frame.RGB24 {
		t.Errorf("output format = %s, want rgb24", out.Format)
	}
	if len(out.Data) != 3*len(in.Data) {
		t.Errorf("output length = %d, want %d", len(out.Data), 3*len(in.Data))
	}
	if err := out.Validate(); err != nil {
		t.Errorf("output invalid: %v", err)
	}
	if out.Seq != in.Seq {
		t.Errorf("sequence not carried over: %d != %d", out.Seq, in.Seq)
	}
}

// TestGrayPaletteIsIdentity checks the gray LUT replicates intensity into
// all three channels.
func TestGrayPaletteIsIdentity(t *testing.T) {
	p, err := Lookup("gray")
	if err != nil {
		t.Fatal(err)
	}
	in := &frame.Frame{Width: 2, Height: 1, Format: frame.Gray8, Data: []byte{0, 200}}
	out, err := p.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 200, 200, 200}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Fatalf("Data = %v, want %v", out.Data, want)
		}
	}
}

func TestApplyRejectsColorInput(t *testing.T) {
	p, err := Lookup("gray")
	if err != nil {
		t.Fatal(err)
	}
	in := &frame.Frame{Width: 2, Height: 1, Format: frame.RGB24, Data: make([]byte, 6)}
	if _, err := p.Apply(in); err == nil {
		t.Error("Apply accepted an rgb24 frame")
	}
}

func TestTemperatureRoundTrip(t *testing.T) {
	const minT, maxT = -20.0, 120.0
	for _, raw := range []byte{0, 1, 64, 128, 254, 255} {
		temp := RawToTemperature(raw, minT, maxT)
		if back := TemperatureToRaw(temp, minT, maxT); back != raw {
			t.Errorf("raw %d -> %.2f°C -> %d", raw, temp, back)
		}
	}
	if RawToTemperature(0, minT, maxT) != minT {
		t.Error("raw 0 should map to the minimum temperature")
	}
	if RawToTemperature(255, minT, maxT) != maxT {
		t.Error("raw 255 should map to the maximum temperature")
	}
}
