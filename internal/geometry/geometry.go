package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// ImagePoint converts p to an image.Point for use with the image packages.
func (p Point) ImagePoint() image.Point {
	return image.Pt(p.X, p.Y)
}

// Size is a rectangle extent in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Scale holds independent horizontal and vertical scale factors.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity leaves a template box at its nominal size.
var Identity = Scale{X: 1, Y: 1}

// Quad is four corners in TL, TR, BR, BL order.
type Quad [4]Point

// Corner indices into a Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// AngleOfRotation returns the angle in degrees of the vector from a to b
// relative to the positive X axis. The four-quadrant arctangent covers the
// full circle, so the result lies in (-180, 180].
func AngleOfRotation(a, b Point) float64 {
	deltaX := float64(b.X - a.X)
	deltaY := float64(b.Y - a.Y)
	return math.Atan2(deltaY, deltaX) * 180 / math.Pi
}

// RotationMatrix builds the 2x3 affine matrix that rotates by angle degrees
// about center with unit scale:
//
//	[  α  β  (1-α)·cx - β·cy ]
//	[ -β  α  β·cx + (1-α)·cy ]
//
// where α = cos(angle) and β = sin(angle). In y-down image space a positive
// angle turns points counter-clockwise as seen on screen.
func RotationMatrix(angle float64, center Point) *mat.Dense {
	theta := angle * math.Pi / 180
	alpha := math.Cos(theta)
	beta := math.Sin(theta)
	cx := float64(center.X)
	cy := float64(center.Y)

	return mat.NewDense(2, 3, []float64{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
	})
}

// RotatePoints rotates every point about center by angle degrees.
//
// Each point is lifted to homogeneous form (x, y, 1) and multiplied by the
// matrix from RotationMatrix. The result is truncated toward zero, so a
// rotation by 0 returns the input unchanged.
func RotatePoints(points []Point, angle float64, center Point) []Point {
	m := RotationMatrix(angle, center)

	rotated := make([]Point, 0, len(points))
	var out mat.VecDense
	for _, p := range points {
		v := mat.NewVecDense(3, []float64{float64(p.X), float64(p.Y), 1})
		out.MulVec(m, v)
		rotated = append(rotated, Point{
			X: int(out.AtVec(0)),
			Y: int(out.AtVec(1)),
		})
	}
	return rotated
}

// RotateQuad is RotatePoints for a fixed four-corner quad.
func RotateQuad(q Quad, angle float64, center Point) Quad {
	rotated := RotatePoints(q[:], angle, center)
	var out Quad
	copy(out[:], rotated)
	return out
}

// ProjectTemplateBox returns the end point of a template box that starts at
// origin, with each dimension of size multiplied by the matching factor and
// truncated before being added.
func ProjectTemplateBox(origin Point, size Size, scale Scale) Point {
	scaledWidth := int(float64(size.Width) * scale.X)
	scaledHeight := int(float64(size.Height) * scale.Y)
	return Point{X: origin.X + scaledWidth, Y: origin.Y + scaledHeight}
}

// RectCorners returns the axis-aligned corners spanned by start and end.
func RectCorners(start, end Point) Quad {
	return Quad{
		start,
		{X: end.X, Y: start.Y},
		end,
		{X: start.X, Y: end.Y},
	}
}

// Center returns the midpoint of a and b using floor division.
func Center(a, b Point) Point {
	return Point{X: floorDiv(a.X+b.X, 2), Y: floorDiv(a.Y+b.Y, 2)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
