package region

import (
	"fmt"
	"math"
	"math/bits"
)

// Point is an integer block coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// Pt is shorthand for constructing a Point.
func Pt(x, y, z int) Point {
	return Point{X: x, Y: y, Z: z}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Box is an axis-aligned volume with closed intervals on every axis.
// Boxes built with NewBox are normalized so that Min <= Max per axis.
type Box struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewBox builds a normalized box from two arbitrary corners.
func NewBox(a, b Point) Box {
	return Box{
		Min: Point{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: Point{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Volume returns (x2-x1)*(y2-y1)*(z2-z1), saturating at math.MaxInt64 when
// the product does not fit in an int64.
//
// Edge lengths are coordinate differences, not block counts, so a box whose
// corners share a coordinate on any axis has zero volume.
func (b Box) Volume() int64 {
	hi, xy := bits.Mul64(span(b.Min.X, b.Max.X), span(b.Min.Y, b.Max.Y))
	if hi != 0 {
		return math.MaxInt64
	}
	hi, v := bits.Mul64(xy, span(b.Min.Z, b.Max.Z))
	if hi != 0 || v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// span is hi-lo as an unsigned length, exact over the whole int range.
// Inverted bounds have zero length.
func span(lo, hi int) uint64 {
	if hi <= lo {
		return 0
	}
	return uint64(hi) - uint64(lo)
}

// Contains reports whether p lies inside b, boundaries included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps reports whether the closed intervals of b and o intersect on all
// three axes. Boxes sharing only a face, edge, or corner overlap.
func (b Box) Overlaps(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

func (b Box) String() string {
	return b.Min.String() + "-" + b.Max.String()
}
