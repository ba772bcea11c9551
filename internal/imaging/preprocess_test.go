package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestPreprocess(t *testing.T) {
	src := createInMemoryImage(30, 20, color.NRGBA{200, 40, 40, 255})

	for _, mode := range PreprocessModes {
		t.Run(mode, func(t *testing.T) {
			out, err := Preprocess(src, mode)
			if err != nil {
				t.Fatalf("Preprocess failed: %v", err)
			}
			if out.Bounds().Size() != src.Bounds().Size() {
				t.Errorf("size changed: got %v, want %v", out.Bounds().Size(), src.Bounds().Size())
			}
		})
	}
}

func TestPreprocess_NoneReturnsSource(t *testing.T) {
	src := createInMemoryImage(4, 4, color.White)

	out, err := Preprocess(src, PreprocessNone)
	if err != nil {
		t.Fatal(err)
	}
	if out != image.Image(src) {
		t.Error("none should return the source image")
	}
}

func TestPreprocess_Threshold(t *testing.T) {
	src := createInMemoryImage(10, 10, color.White)
	for x := 0; x < 5; x++ {
		src.Set(x, 5, color.Black)
	}

	out, err := Preprocess(src, PreprocessThreshold)
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", out)
	}
	if gray.GrayAt(2, 5).Y != 0 {
		t.Errorf("dark pixel: got %d, want 0", gray.GrayAt(2, 5).Y)
	}
	if gray.GrayAt(8, 8).Y != 255 {
		t.Errorf("light pixel: got %d, want 255", gray.GrayAt(8, 8).Y)
	}
}

func TestPreprocess_UnknownMode(t *testing.T) {
	src := createInMemoryImage(4, 4, color.White)
	if _, err := Preprocess(src, "sharpen"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
