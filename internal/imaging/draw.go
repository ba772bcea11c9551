package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
	"golang.org/x/image/vector"
)

// DefaultThickness is the stroke width of annotation boxes in pixels.
const DefaultThickness = 4

// DrawLine strokes the segment p→q onto dst with the given color and
// thickness. Ends are squared off by half the thickness so consecutive
// segments of a box meet without notches.
//
// The stroke is rasterized as a filled quadrilateral with
// golang.org/x/image/vector. Only the part overlapping dst's bounds is
// rendered; the rest is silently dropped.
func DrawLine(dst draw.Image, p, q geometry.Point, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	half := float64(thickness) / 2

	px, py := float64(p.X), float64(p.Y)
	qx, qy := float64(q.X), float64(q.Y)

	// Unit direction along the segment; a degenerate segment becomes a square dot.
	dx, dy := qx-px, qy-py
	length := math.Hypot(dx, dy)
	if length == 0 {
		dx, dy = 1, 0
	} else {
		dx, dy = dx/length, dy/length
	}

	// Extend both ends and offset along the normal.
	ex, ey := dx*half, dy*half
	nx, ny := -dy*half, dx*half

	poly := [4][2]float64{
		{px - ex + nx, py - ey + ny},
		{qx + ex + nx, qy + ey + ny},
		{qx + ex - nx, qy + ey - ny},
		{px - ex - nx, py - ey - ny},
	}

	area := polygonBounds(poly[:]).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	z := vector.NewRasterizer(area.Dx(), area.Dy())
	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	z.MoveTo(float32(poly[0][0]-ox), float32(poly[0][1]-oy))
	for _, v := range poly[1:] {
		z.LineTo(float32(v[0]-ox), float32(v[1]-oy))
	}
	z.ClosePath()
	z.Draw(dst, area, image.NewUniform(c), image.Point{})
}

// DrawPolyline strokes the closed outline through points in order.
func DrawPolyline(dst draw.Image, points []geometry.Point, c color.Color, thickness int) {
	for i := range points {
		DrawLine(dst, points[i], points[(i+1)%len(points)], c, thickness)
	}
}

// polygonBounds returns the smallest integer rectangle containing every vertex.
func polygonBounds(poly [][2]float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range poly {
		minX = math.Min(minX, v[0])
		minY = math.Min(minY, v[1])
		maxX = math.Max(maxX, v[0])
		maxY = math.Max(maxY, v[1])
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}
