package renderer

import "testing"

func TestPixelFormatIsBlendable(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   bool
	}{
		{PixelFormatRGBA16Float, true},
		{PixelFormatRGBA8Unorm, true},
		{PixelFormatBGRA8Unorm, true},
		{PixelFormatR32G32Float, false},
		{PixelFormatDepth32Float, false},
		{PixelFormatUndefined, false},
	}

	for _, tt := range tests {
		if got := tt.format.IsBlendable(); got != tt.want {
			t.Errorf("%v.IsBlendable() = %v, want %v", tt.format, got, tt.want)
		}
	}
}
