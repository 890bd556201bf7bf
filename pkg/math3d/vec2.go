package math3d

import "math"

// Vec2 represents a 2D vector, used for texture coordinates and screen
// positions.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Negate returns the negated vector.
func (a Vec2) Negate() Vec2 {
	return Vec2{-a.X, -a.Y}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross treats a and b as homogeneous points (x, y, 1) and returns their
// 3D cross product. X and Y are the coefficients of the line through both
// points; Z is the signed area of the parallelogram spanned by a and b,
// positive when b lies counter-clockwise of a.
func (a Vec2) Cross(b Vec2) Vec3 {
	return Vec3{
		a.Y - b.Y,
		b.X - a.X,
		a.X*b.Y - a.Y*b.X,
	}
}

// Perp returns a rotated 90° counter-clockwise.
func (a Vec2) Perp() Vec2 {
	return Vec2{-a.Y, a.X}
}

// Len returns the length (magnitude) of the vector.
func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

// Normalize returns the unit vector in the same direction, or the zero
// vector when a has zero length.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l < Epsilon {
		return Vec2{}
	}
	return a.Scale(1 / l)
}

// NormalizeChecked is Normalize that reports ErrZeroLength instead of
// returning the zero vector.
func (a Vec2) NormalizeChecked() (Vec2, error) {
	l := a.Len()
	if l < Epsilon {
		return Vec2{}, ErrZeroLength
	}
	return a.Scale(1 / l), nil
}

// Vec2i is an integer 2D vector, used for pixel coordinates.
type Vec2i struct {
	X, Y int
}

// V2i creates a new Vec2i.
func V2i(x, y int) Vec2i {
	return Vec2i{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2i) Add(b Vec2i) Vec2i {
	return Vec2i{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2i) Sub(b Vec2i) Vec2i {
	return Vec2i{a.X - b.X, a.Y - b.Y}
}

func (a Vec2i) Scale(s int) Vec2i {
	return Vec2i{a.X * s, a.Y * s}
}

func (a Vec2i) Negate() Vec2i {
	return Vec2i{-a.X, -a.Y}
}

func (a Vec2i) Dot(b Vec2i) int {
	return a.X*b.X + a.Y*b.Y
}

// Cross is the integer form of Vec2.Cross: the homogeneous cross product
// of (a.X, a.Y, 1) and (b.X, b.Y, 1).
func (a Vec2i) Cross(b Vec2i) Vec3i {
	return Vec3i{
		a.Y - b.Y,
		b.X - a.X,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec2i) Len() float64 {
	return math.Sqrt(float64(a.Dot(a)))
}

// Vec2 converts to a float vector.
func (a Vec2i) Vec2() Vec2 {
	return Vec2{float64(a.X), float64(a.Y)}
}

// Clamp limits each component to [lo, hi].
func (a Vec2i) Clamp(lo, hi Vec2i) Vec2i {
	return Vec2i{min(max(a.X, lo.X), hi.X), min(max(a.Y, lo.Y), hi.Y)}
}
