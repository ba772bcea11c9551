package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
)

// CropResult is a PNG snapshot of part of an image.
type CropResult struct {
	X1          int    `json:"x1"`
	Y1          int    `json:"y1"`
	X2          int    `json:"x2"`
	Y2          int    `json:"y2"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// BoundingRect returns the smallest rectangle holding every corner of q,
// grown by margin pixels on each side.
func BoundingRect(q geometry.Quad, margin int) image.Rectangle {
	r := image.Rectangle{Min: q[0].ImagePoint(), Max: q[0].ImagePoint()}
	for _, p := range q[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r.Inset(-margin)
}

// CropQuad crops the bounding rectangle of q, grown by margin and clipped to
// img, and returns it PNG-encoded. A scale other than 1 resizes the crop.
func CropQuad(img image.Image, q geometry.Quad, margin int, scale float64) (*CropResult, error) {
	r := BoundingRect(q, margin).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region %v lies outside image bounds %v", q, img.Bounds())
	}

	cropped := imaging.Crop(img, r)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %v shrinks %dx%d crop to nothing", scale, cropped.Bounds().Dx(), cropped.Bounds().Dy())
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X1:          r.Min.X,
		Y1:          r.Min.Y,
		X2:          r.Max.X,
		Y2:          r.Max.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
