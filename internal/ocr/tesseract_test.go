package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	point := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  point,
	}
	d.DrawString(text)
}

// createImageWithText renders text and scales it up by drawing each pixel as
// a scale x scale block, which Tesseract reads far more reliably.
func createImageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

// newTestEngine builds a Tesseract engine or skips when the library is missing.
func newTestEngine(t *testing.T, level string) *Tesseract {
	t.Helper()
	engine, err := NewTesseract(Options{Language: "eng", Level: level, PageSegMode: DefaultPageSegMode})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestFromBoundingBoxes(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(366, 119, 641, 172), Word: "Examination 2023", Confidence: 91.5},
		{Box: image.Rect(10, 10, 20, 20), Word: "   ", Confidence: 80},
		{Box: image.Rect(0, 0, 5, 5), Word: " roll ", Confidence: 12},
	}

	got := FromBoundingBoxes(boxes)

	if len(got) != 2 {
		t.Fatalf("len: got %d, want 2 (blank word dropped)", len(got))
	}

	want := geometry.Quad{geometry.Pt(366, 119), geometry.Pt(641, 119), geometry.Pt(641, 172), geometry.Pt(366, 172)}
	if got[0].Quad != want {
		t.Errorf("quad: got %v, want %v", got[0].Quad, want)
	}
	if got[0].Text != "Examination 2023" {
		t.Errorf("text: got %q", got[0].Text)
	}
	if got[0].Confidence < 0.914 || got[0].Confidence > 0.916 {
		t.Errorf("confidence: got %v, want 0.915", got[0].Confidence)
	}
	if got[1].Text != "roll" {
		t.Errorf("text not trimmed: got %q", got[1].Text)
	}
}

func TestFromBoundingBoxes_Empty(t *testing.T) {
	got := FromBoundingBoxes(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestQuadFromRect(t *testing.T) {
	q := QuadFromRect(image.Rect(1, 2, 3, 4))
	if q[geometry.TopRight] != geometry.Pt(3, 2) || q[geometry.BottomLeft] != geometry.Pt(1, 4) {
		t.Errorf("unexpected corner order: %v", q)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    gosseract.PageIteratorLevel
		wantErr bool
	}{
		{"word", gosseract.RIL_WORD, false},
		{"textline", gosseract.RIL_TEXTLINE, false},
		{"TextLine", gosseract.RIL_TEXTLINE, false},
		{"para", gosseract.RIL_PARA, false},
		{"block", gosseract.RIL_BLOCK, false},
		{"symbol", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := ParseLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTesseract_InvalidOptions(t *testing.T) {
	if _, err := NewTesseract(Options{Level: "glyph"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewTesseract(Options{PageSegMode: 42}); err == nil {
		t.Error("expected error for out-of-range page segmentation mode")
	}
}

func TestTesseract_Detect(t *testing.T) {
	engine := newTestEngine(t, LevelTextLine)
	img := createImageWithText("EXAM 2023", 4)

	detections, err := engine.Detect(context.Background(), img)
	if err != nil {
		if strings.Contains(err.Error(), "tesseract") || strings.Contains(err.Error(), "library") {
			t.Skip("Tesseract not available")
		}
		t.Fatalf("Detect failed: %v", err)
	}

	found := false
	for _, d := range detections {
		if d.Confidence < 0 || d.Confidence > 1 {
			t.Errorf("confidence out of range: %v", d.Confidence)
		}
		if d.Quad[geometry.TopLeft].X > d.Quad[geometry.TopRight].X ||
			d.Quad[geometry.TopLeft].Y > d.Quad[geometry.BottomLeft].Y {
			t.Errorf("corners out of order: %v", d.Quad)
		}
		if strings.Contains(d.Text, "2023") {
			found = true
		}
	}
	if !found {
		// Recognition quality depends on the installed language data.
		t.Logf("marker not recognized; detections: %+v", detections)
	}
}

func TestTesseract_DetectCancelled(t *testing.T) {
	engine := newTestEngine(t, LevelWord)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Detect(ctx, createImageWithText("2023", 2)); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestTesseract_Close(t *testing.T) {
	engine := newTestEngine(t, LevelWord)

	if err := engine.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := engine.Detect(context.Background(), createImageWithText("2023", 2)); err == nil {
		t.Error("Detect after Close should fail")
	}
	if engine.Version() != "" {
		t.Error("Version after Close should be empty")
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo(Options{Language: "eng"})

	if info.Backend != "gosseract" {
		t.Errorf("Backend: got %s, want gosseract", info.Backend)
	}
	if info.Available && info.Version == "" {
		t.Error("available engine should report a version")
	}
	if !info.Available && info.Error == "" {
		t.Error("unavailable engine should report an error")
	}
}
