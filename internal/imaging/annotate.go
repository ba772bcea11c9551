package imaging

import (
	"image/color"
	"image/draw"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
)

// DrawRegion projects a template box onto dst and outlines it.
//
// The box starts at origin and spans size multiplied by scale (see
// geometry.ProjectTemplateBox). When angle is non-zero the four corners are
// rotated about the box's own center before drawing. The outline is stroked
// TL→TR→BR→BL→TL with the given color and thickness.
//
// Returns the corners actually drawn, in TL, TR, BR, BL order. Corners may lie
// outside dst; drawing is clipped but the returned coordinates are not.
func DrawRegion(dst draw.Image, origin geometry.Point, size geometry.Size, scale geometry.Scale,
	c color.Color, thickness int, angle float64) geometry.Quad {

	corners := RegionCorners(origin, size, scale, angle)
	DrawPolyline(dst, corners[:], c, thickness)
	return corners
}

// RegionCorners computes the corners DrawRegion would draw without touching
// any image.
func RegionCorners(origin geometry.Point, size geometry.Size, scale geometry.Scale, angle float64) geometry.Quad {
	end := geometry.ProjectTemplateBox(origin, size, scale)
	corners := geometry.RectCorners(origin, end)

	if angle != 0 {
		center := geometry.Center(corners[geometry.TopLeft], corners[geometry.BottomRight])
		corners = geometry.RotateQuad(corners, angle, center)
	}
	return corners
}
