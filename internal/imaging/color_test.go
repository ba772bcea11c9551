package imaging

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    color.NRGBA
		wantErr bool
	}{
		{"green", "#00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"upper case", "#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"no hash", "0000ff", color.NRGBA{0, 0, 255, 255}, false},
		{"short form", "#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"empty", "", color.NRGBA{}, true},
		{"garbage", "#zzzzzz", color.NRGBA{}, true},
		{"bad length", "#12345", color.NRGBA{}, true},
		{"too long", "#1234567", color.NRGBA{}, true},
		{"too long no hash", "12345678", color.NRGBA{}, true},
		{"hash only", "#", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.hex)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{0, 255, 0, 255}); got != "#00ff00" {
		t.Errorf("got %s, want #00ff00", got)
	}
}
