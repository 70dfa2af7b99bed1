package frame

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		f       *Frame
		wantErr bool
	}{
		{"nil", nil, true},
		{"gray ok", &Frame{Width: 4, Height: 3, Format: Gray8, Data: make([]byte, 12)}, false},
		{"rgb ok", &Frame{Width: 4, Height: 3, Format: RGB24, Data: make([]byte, 36)}, false},
		{"short buffer", &Frame{Width: 4, Height: 3, Format: RGB24, Data: make([]byte, 12)}, true},
		{"long buffer", &Frame{Width: 4, Height: 3, Format: Gray8, Data: make([]byte, 13)}, true},
		{"zero height", &Frame{Width: 4, Height: 0, Format: Gray8, Data: nil}, true},
		{"empty", &Frame{Width: 4, Height: 3, Format: Gray8}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.f.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFormatChannels(t *testing.T) {
	if Gray8.Channels() != 1 || RGB24.Channels() != 3 {
		t.Errorf("channels = %d/%d, want 1/3", Gray8.Channels(), RGB24.Channels())
	}
}
