package ocr

import (
	"context"
	"image"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
)

// Detection is one recognized text region.
type Detection struct {
	// Quad holds the region's corners in TL, TR, BR, BL order. Engines that
	// only produce axis-aligned boxes still fill all four corners.
	Quad geometry.Quad `json:"quad"`

	// Text is the recognized content, trimmed of surrounding whitespace.
	Text string `json:"text"`

	// Confidence is the recognition confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// Engine detects and recognizes text in an image.
type Engine interface {
	// Detect returns every text region found in img.
	Detect(ctx context.Context, img image.Image) ([]Detection, error)

	// Name identifies the backend in logs and diagnostics.
	Name() string

	// Close releases the engine. The engine must not be used afterwards.
	Close() error
}

// QuadFromRect converts an axis-aligned rectangle to corner form.
func QuadFromRect(r image.Rectangle) geometry.Quad {
	return geometry.RectCorners(
		geometry.Pt(r.Min.X, r.Min.Y),
		geometry.Pt(r.Max.X, r.Max.Y),
	)
}
