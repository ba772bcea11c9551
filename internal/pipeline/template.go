package pipeline

import (
	"fmt"
	"image/color"
	"image/draw"
	"strings"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
	"github.com/ironsheep/answer-sheet-roi/internal/imaging"
	"github.com/ironsheep/answer-sheet-roi/internal/ocr"
)

// Region is one box of interest, placed relative to the marker's top-left
// corner. Its height is the template's reference height.
type Region struct {
	Name   string         `json:"name"`
	Offset geometry.Point `json:"offset"`
	Width  int            `json:"width"`
}

// Template describes one document layout: the marker to look for, the size
// it is expected to have, and where the regions of interest sit relative to it.
type Template struct {
	// ReferenceBox is the marker's bounding box on the template image as
	// x1, y1, x2, y2.
	ReferenceBox [4]int `json:"reference_box"`

	// HeightPad is added to the reference box height to give every region
	// some slack for skewed scans.
	HeightPad int `json:"height_pad"`

	// Confidence is the exclusive lower bound on detection confidence.
	Confidence float64 `json:"confidence"`

	// Marker must appear as a literal substring of the detected text.
	Marker string `json:"marker"`

	// Regions are projected in order; the coordinate file lists them in the
	// same order.
	Regions []Region `json:"regions"`

	// ApplyScale sizes regions by the measured marker scale instead of
	// drawing them at their nominal template size.
	ApplyScale bool `json:"apply_scale"`
}

// Default template values for the answer sheets this tool was built for.
const (
	DefaultConfidence = 0.25
	DefaultMarker     = "2023"
	DefaultHeightPad  = 15
)

// DefaultReferenceBox is the marker's box on the reference sheet.
var DefaultReferenceBox = [4]int{366, 119, 641, 172}

// DefaultRegions are the roll-number box and the name box.
func DefaultRegions() []Region {
	return []Region{
		{Name: "roll", Offset: geometry.Pt(-95, 130), Width: 220},
		{Name: "name", Offset: geometry.Pt(290, 120), Width: 280},
	}
}

// DefaultTemplate returns the built-in answer-sheet layout.
func DefaultTemplate() Template {
	return Template{
		ReferenceBox: DefaultReferenceBox,
		HeightPad:    DefaultHeightPad,
		Confidence:   DefaultConfidence,
		Marker:       DefaultMarker,
		Regions:      DefaultRegions(),
	}
}

// ReferenceSize is the reference box width and the padded reference height.
func (t Template) ReferenceSize() geometry.Size {
	return geometry.Size{
		Width:  t.ReferenceBox[2] - t.ReferenceBox[0],
		Height: t.ReferenceBox[3] - t.ReferenceBox[1] + t.HeightPad,
	}
}

// Validate checks that the template can produce regions.
func (t Template) Validate() error {
	ref := t.ReferenceSize()
	if ref.Width <= 0 || ref.Height <= 0 {
		return fmt.Errorf("reference box %v has no area", t.ReferenceBox)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("confidence threshold must be within [0,1], got %v", t.Confidence)
	}
	if t.Marker == "" {
		return fmt.Errorf("marker text must not be empty")
	}
	if len(t.Regions) == 0 {
		return fmt.Errorf("template needs at least one region")
	}
	for _, r := range t.Regions {
		if r.Width <= 0 {
			return fmt.Errorf("region %q: width must be positive, got %d", r.Name, r.Width)
		}
	}
	return nil
}

// Accepts reports whether d is a marker: its confidence exceeds the threshold
// and its text contains the marker substring.
func (t Template) Accepts(d ocr.Detection) bool {
	return d.Confidence > t.Confidence && strings.Contains(d.Text, t.Marker)
}

// Style controls how regions are drawn.
type Style struct {
	Color     color.Color
	Thickness int
}

// DefaultStyle draws 4px green outlines.
func DefaultStyle() Style {
	return Style{Color: color.NRGBA{0, 255, 0, 255}, Thickness: imaging.DefaultThickness}
}

// RegionResult is one projected region.
type RegionResult struct {
	Name    string        `json:"name"`
	Corners geometry.Quad `json:"corners"`
}

// Match is an accepted marker detection and everything derived from it.
type Match struct {
	Detection ocr.Detection  `json:"detection"`
	Angle     float64        `json:"angle_degrees"`
	ScaleW    float64        `json:"scale_w"`
	ScaleH    float64        `json:"scale_h"`
	Regions   []RegionResult `json:"regions"`
}

// Apply derives the marker transform from d and projects every region. When
// dst is non-nil the regions are also drawn onto it with style.
//
// Scale factors compare the marker's measured width and height against the
// reference size. The rotation angle comes from the marker's top edge.
func (t Template) Apply(dst draw.Image, d ocr.Detection, style Style) Match {
	topLeft := d.Quad[geometry.TopLeft]
	topRight := d.Quad[geometry.TopRight]
	bottomLeft := d.Quad[geometry.BottomLeft]

	ref := t.ReferenceSize()
	actualWidth := topRight.X - topLeft.X
	actualHeight := bottomLeft.Y - topLeft.Y

	m := Match{
		Detection: d,
		Angle:     geometry.AngleOfRotation(topLeft, topRight),
		ScaleW:    float64(actualWidth) / float64(ref.Width),
		ScaleH:    float64(actualHeight) / float64(ref.Height),
		Regions:   make([]RegionResult, 0, len(t.Regions)),
	}

	scale := geometry.Identity
	if t.ApplyScale {
		scale = geometry.Scale{X: m.ScaleW, Y: m.ScaleH}
	}

	for _, r := range t.Regions {
		origin := topLeft.Add(r.Offset)
		size := geometry.Size{Width: r.Width, Height: ref.Height}

		var corners geometry.Quad
		if dst != nil {
			corners = imaging.DrawRegion(dst, origin, size, scale, style.Color, style.Thickness, m.Angle)
		} else {
			corners = imaging.RegionCorners(origin, size, scale, m.Angle)
		}
		m.Regions = append(m.Regions, RegionResult{Name: r.Name, Corners: corners})
	}

	return m
}

// MatchDetections applies the template to every accepted detection, in the
// order the engine returned them.
func (t Template) MatchDetections(dst draw.Image, detections []ocr.Detection, style Style) []Match {
	matches := make([]Match, 0)
	for _, d := range detections {
		if !t.Accepts(d) {
			continue
		}
		matches = append(matches, t.Apply(dst, d, style))
	}
	return matches
}
