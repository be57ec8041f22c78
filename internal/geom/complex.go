package geom

import "math"

// Complex is an immutable unit 2-vector (x,y) with x^2+y^2=1, encoding a
// heading as a mathematical angle measured clockwise from the "forward" axis
// +y (so X = sin(theta), Y = cos(theta)). Treating (X,Y) as the complex
// number Y+iX makes Add literally complex multiplication, which is what
// makes angle composition (Add) and angle difference (Sub) work.
type Complex struct {
	X, Y float64
}

// DEG0 is the zero heading: straight ahead along +y.
var DEG0 = Complex{X: 0, Y: 1}

// DEG90 is a quarter turn clockwise from DEG0.
var DEG90 = Complex{X: 1, Y: 0}

// DEG180 is a half turn from DEG0.
var DEG180 = Complex{X: 0, Y: -1}

// DEG270 is three quarter turns clockwise from DEG0.
var DEG270 = Complex{X: -1, Y: 0}

// FromRad builds a Complex from an angle in radians.
func FromRad(rad float64) Complex {
	s, c := math.Sincos(rad)
	return Complex{X: s, Y: c}
}

// FromDeg builds a Complex from an angle in degrees.
func FromDeg(deg float64) Complex {
	return FromRad(deg * math.Pi / 180)
}

// FromPoint builds a Complex from the direction of p relative to the
// origin. The zero vector maps to DEG0 rather than producing NaN.
func FromPoint(p Point) Complex {
	n := p.Norm()
	if n == 0 {
		return DEG0
	}
	return Complex{X: p.X / n, Y: p.Y / n}
}

// Direction returns the heading from point a to point b.
func Direction(a, b Point) Complex {
	return FromPoint(b.Sub(a))
}

// ToRad returns the angle in radians, in (-pi, pi].
func (c Complex) ToRad() float64 {
	r := math.Atan2(c.X, c.Y)
	if r == -math.Pi {
		return math.Pi
	}
	return r
}

// ToDeg returns the angle in degrees, in (-180, 180].
func (c Complex) ToDeg() float64 {
	return c.ToRad() * 180 / math.Pi
}

// ToIntDeg rounds ToDeg to the nearest integer degree, half away from zero.
func (c Complex) ToIntDeg() int {
	d := c.ToDeg()
	if d >= 0 {
		return int(math.Floor(d + 0.5))
	}
	return int(math.Ceil(d - 0.5))
}

// Tan returns sin(theta)/cos(theta) = X/Y.
func (c Complex) Tan() float64 {
	return c.X / c.Y
}

// Add composes two headings (rotation by b applied to a); equivalent to
// complex multiplication under the Y+iX encoding.
func (a Complex) Add(b Complex) Complex {
	return Complex{
		X: a.Y*b.X + a.X*b.Y,
		Y: a.Y*b.Y - a.X*b.X,
	}
}

// Neg reflects the heading about the +y axis: (x,y) -> (-x,y).
func (c Complex) Neg() Complex {
	return Complex{X: -c.X, Y: c.Y}
}

// Sub returns the heading difference a-b (rotation that takes b to a).
func (a Complex) Sub(b Complex) Complex {
	return a.Add(b.Neg())
}

// Opposite returns the heading rotated by 180 degrees: (x,y) -> (-x,-y).
func (c Complex) Opposite() Complex {
	return Complex{X: -c.X, Y: -c.Y}
}

// Point returns the unit vector for this heading as a plain Point.
func (c Complex) Point() Point {
	return Point{X: c.X, Y: c.Y}
}

// Dot returns the cosine of the angle between a and b.
func (a Complex) Dot(b Complex) float64 {
	return a.X*b.X + a.Y*b.Y
}

// IsCloseTo reports whether a and b are within eps of each other, using the
// cosine-distance test a.Dot(b) >= 1 - eps^2/2.
func (a Complex) IsCloseTo(b Complex, eps float64) bool {
	return a.Dot(b) >= 1-eps*eps/2
}

// IsFront reports whether this (relative) heading points within eps of
// straight ahead (DEG0).
func (c Complex) IsFront(eps float64) bool {
	return c.IsCloseTo(DEG0, eps)
}

// IsRear reports whether this (relative) heading points within eps of
// straight behind (DEG180).
func (c Complex) IsRear(eps float64) bool {
	return c.IsCloseTo(DEG180, eps)
}

// IsLeft reports whether this (relative) heading points within eps of due
// left (DEG270).
func (c Complex) IsLeft(eps float64) bool {
	return c.IsCloseTo(DEG270, eps)
}

// IsRight reports whether this (relative) heading points within eps of due
// right (DEG90).
func (c Complex) IsRight(eps float64) bool {
	return c.IsCloseTo(DEG90, eps)
}
