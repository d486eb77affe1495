package game

import "math"

// Vec2 is a world-space float pair
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns the unit vector in the direction of v. The zero vector
// stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X, Y, W, H float64
}

func NewRect(pos Vec2, size Vec2) Rect {
	return Rect{X: pos.X, Y: pos.Y, W: size.X, H: size.Y}
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Overlaps reports whether the rectangles intersect. Touching edges count
// as overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.Right() && r.Right() >= o.X &&
		r.Y <= o.Bottom() && r.Bottom() >= o.Y
}

// Offset returns r translated by d
func (r Rect) Offset(d Vec2) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}
