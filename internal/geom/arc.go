package geom

import "math"

// ArcSquareIntersect computes the near/far intersection of an angular arc
// (apex q, axis heading, half-width halfWidth) with an axis-aligned square
// of the given side length centred at squareCenter. It returns ok=false if
// the arc misses the square entirely (the standard "empty" sentinel used
// throughout the grid updater instead of an option wrapper).
//
// The candidate point set is the square's corners that fall inside the
// wedge plus the points where the wedge's two boundary rays cross a square
// edge; near/far are the closest/farthest of that set from q.
func ArcSquareIntersect(q Point, axis Complex, halfWidth float64, squareCenter Point, side float64) (near, far Point, ok bool) {
	half := side / 2

	// The apex sits inside the cell square: treat the near point as q
	// itself (distance zero), per the "contains sensor" case.
	if math.Abs(q.X-squareCenter.X) <= half && math.Abs(q.Y-squareCenter.Y) <= half {
		return q, q, true
	}

	corners := [4]Point{
		{X: squareCenter.X - half, Y: squareCenter.Y - half},
		{X: squareCenter.X + half, Y: squareCenter.Y - half},
		{X: squareCenter.X + half, Y: squareCenter.Y + half},
		{X: squareCenter.X - half, Y: squareCenter.Y + half},
	}

	var candidates []Point

	for _, c := range corners {
		if inWedge(q, axis, halfWidth, c) {
			candidates = append(candidates, c)
		}
	}

	rayLeft := axis.Add(FromRad(-halfWidth))
	rayRight := axis.Add(FromRad(halfWidth))
	for _, ray := range [2]Complex{rayLeft, rayRight} {
		for i := 0; i < 4; i++ {
			a := corners[i]
			b := corners[(i+1)%4]
			if p, hit := rayIntersectSegment(q, ray, a, b); hit {
				candidates = append(candidates, p)
			}
		}
	}

	if len(candidates) == 0 {
		return Point{}, Point{}, false
	}

	near, far = candidates[0], candidates[0]
	nearD, farD := q.Distance(near), q.Distance(far)
	for _, c := range candidates[1:] {
		d := q.Distance(c)
		if d < nearD {
			near, nearD = c, d
		}
		if d > farD {
			far, farD = c, d
		}
	}
	return near, far, true
}

// inWedge reports whether point p lies within halfWidth of axis as seen
// from apex q (on or inside the wedge's angular boundary).
func inWedge(q Point, axis Complex, halfWidth float64, p Point) bool {
	if p == q {
		return true
	}
	rel := Direction(q, p).Sub(axis)
	// rel is within the wedge iff its angle from axis is within halfWidth.
	return math.Abs(rel.ToRad()) <= halfWidth+1e-12
}

// rayIntersectSegment intersects the ray from q in direction dir with the
// closed segment a-b, returning the point and true if the ray (t>=0) meets
// the segment (0<=u<=1).
func rayIntersectSegment(q Point, dir Complex, a, b Point) (Point, bool) {
	// Ray: q + t*dir, t >= 0 (dir = (dir.X, dir.Y) as a plain vector).
	// Segment: a + u*(b-a), 0 <= u <= 1.
	dx, dy := dir.X, dir.Y
	ex, ey := b.X-a.X, b.Y-a.Y
	denom := dx*ey - dy*ex
	if denom == 0 {
		return Point{}, false
	}
	wx, wy := a.X-q.X, a.Y-q.Y
	t := (wx*ey - wy*ex) / denom
	u := (wx*dy - wy*dx) / denom
	if t < 0 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Point{X: q.X + t*dx, Y: q.Y + t*dy}, true
}

// HorizontalLineIntersect computes the near/far intersection of the arc
// (apex q, axis heading, half-width halfWidth) with the horizontal line
// y=y0, clipped to the wedge. Returns ok=false if the wedge never crosses
// the line in its forward (t>=0) direction.
func HorizontalLineIntersect(q Point, axis Complex, halfWidth float64, y0 float64) (near, far Point, ok bool) {
	return arcLineIntersect(q, axis, halfWidth, Point{X: 0, Y: 1}, y0-q.Y)
}

// VerticalLineIntersect computes the near/far intersection of the arc with
// the vertical line x=x0.
func VerticalLineIntersect(q Point, axis Complex, halfWidth float64, x0 float64) (near, far Point, ok bool) {
	return arcLineIntersect(q, axis, halfWidth, Point{X: 1, Y: 0}, x0-q.X)
}

// arcLineIntersect intersects the two wedge boundary rays with an axis
// aligned line (normal n, offset such that n.X*(x-q.X)+n.Y*(y-q.Y) = offset
// defines the line), returning near/far among the hits with t>=0.
func arcLineIntersect(q Point, axis Complex, halfWidth float64, n Point, offset float64) (near, far Point, ok bool) {
	rayLeft := axis.Add(FromRad(-halfWidth))
	rayRight := axis.Add(FromRad(halfWidth))

	var candidates []Point
	for _, ray := range [2]Complex{rayLeft, rayRight} {
		denom := n.X*ray.X + n.Y*ray.Y
		if denom == 0 {
			continue
		}
		t := offset / denom
		if t < 0 {
			continue
		}
		candidates = append(candidates, Point{X: q.X + t*ray.X, Y: q.Y + t*ray.Y})
	}
	if len(candidates) == 0 {
		return Point{}, Point{}, false
	}
	near, far = candidates[0], candidates[0]
	nearD, farD := q.Distance(near), q.Distance(far)
	for _, c := range candidates[1:] {
		d := q.Distance(c)
		if d < nearD {
			near, nearD = c, d
		}
		if d > farD {
			far, farD = c, d
		}
	}
	return near, far, true
}
