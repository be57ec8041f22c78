package geom

// QVect is the length-5 vector (1, x, y, x^2, y^2) that lets a quadratic
// predicate a0 + a1*x + a2*y + a3*x^2 + a4*y^2 >= 0 be evaluated as a dot
// product a.MMult(v) >= 0.
type QVect [5]float64

// From builds the QVect representation of a point.
func From(p Point) QVect {
	return QVect{1, p.X, p.Y, p.X * p.X, p.Y * p.Y}
}

// Zeros returns the zero vector.
func Zeros() QVect {
	return QVect{}
}

// Ones returns the all-ones vector.
func Ones() QVect {
	return QVect{1, 1, 1, 1, 1}
}

// MMult returns the dot product a . b.
func (a QVect) MMult(b QVect) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Intersect solves the pair of linear constraints (ignoring the quadratic
// entries) a1*x+a2*y+a0=0 and b1*x+b2*y+b0=0 for their intersection point.
// The second return value is false if the lines are parallel (zero
// determinant).
func (a QVect) Intersect(b QVect) (Point, bool) {
	det := a[1]*b[2] - a[2]*b[1]
	if det == 0 {
		return Point{}, false
	}
	x := (a[2]*b[0] - a[0]*b[2]) / det
	y := (a[0]*b[1] - a[1]*b[0]) / det
	return Point{X: x, Y: y}, true
}
