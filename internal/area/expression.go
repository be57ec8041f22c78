// Package area implements the boolean area-expression DSL used to describe
// regions of the plane as combinations of quadratic half-plane and circle
// predicates (see geom.QVect), and the bulk evaluator that tests many grid
// cells against an expression in one pass.
package area

import "github.com/m-marini/wheelly/internal/geom"

// kind identifies the shape of an Expression node.
type kind int

const (
	kindIneq kind = iota
	kindAnd
	kindOr
	kindNot
)

// Expression is an immutable node in the boolean area-predicate tree: a
// leaf Ineq(v) tests v.MMult(p) >= 0 at a point's QVect representation p,
// and And/Or/Not combine sub-expressions the usual way.
type Expression struct {
	kind     kind
	leaf     geom.QVect
	children []Expression
}

// Ineq builds a leaf testing the quadratic inequality v.MMult(p) >= 0.
func Ineq(v geom.QVect) Expression {
	return Expression{kind: kindIneq, leaf: v}
}

// And builds the conjunction of the given expressions.
func And(es ...Expression) Expression {
	return Expression{kind: kindAnd, children: es}
}

// Or builds the disjunction of the given expressions.
func Or(es ...Expression) Expression {
	return Expression{kind: kindOr, children: es}
}

// Not negates e.
func Not(e Expression) Expression {
	return Expression{kind: kindNot, children: []Expression{e}}
}

// Eval reports whether point p satisfies the expression.
func (e Expression) Eval(p geom.Point) bool {
	return e.evalVect(geom.From(p))
}

func (e Expression) evalVect(v geom.QVect) bool {
	switch e.kind {
	case kindIneq:
		return e.leaf.MMult(v) >= 0
	case kindAnd:
		for _, c := range e.children {
			if !c.evalVect(v) {
				return false
			}
		}
		return true
	case kindOr:
		for _, c := range e.children {
			if c.evalVect(v) {
				return true
			}
		}
		return false
	case kindNot:
		return !e.children[0].evalVect(v)
	default:
		return false
	}
}

// leaves collects every Ineq leaf reachable from e, in a stable
// left-to-right order (a leaf that occurs twice is collected twice),
// appending to and returning acc.
func (e Expression) leaves(acc []geom.QVect) []geom.QVect {
	switch e.kind {
	case kindIneq:
		return append(acc, e.leaf)
	default:
		for _, c := range e.children {
			acc = c.leaves(acc)
		}
		return acc
	}
}

// evalFromLeafValues evaluates e given the pre-computed >=0 results of each
// leaf in the order leaves() produced them; idx tracks the read cursor so
// nested calls consume the right slice.
func (e Expression) evalFromLeafValues(values []bool, idx *int) bool {
	switch e.kind {
	case kindIneq:
		v := values[*idx]
		*idx++
		return v
	case kindAnd:
		result := true
		for _, c := range e.children {
			if !c.evalFromLeafValues(values, idx) {
				result = false
			}
		}
		return result
	case kindOr:
		result := false
		for _, c := range e.children {
			if c.evalFromLeafValues(values, idx) {
				result = true
			}
		}
		return result
	case kindNot:
		return !e.children[0].evalFromLeafValues(values, idx)
	default:
		return false
	}
}

// RightHalfPlane returns the QVect of the half-plane lying to the right of
// the line through p in direction dir: points q for which dir, as seen from
// p, has q on its clockwise side.
func RightHalfPlane(p geom.Point, dir geom.Complex) geom.QVect {
	return geom.QVect{dir.X*p.Y - dir.Y*p.X, dir.Y, -dir.X, 0, 0}
}

// Circle returns the QVect of the disk of radius r centred at center.
func Circle(center geom.Point, r float64) geom.QVect {
	return geom.QVect{
		r*r - center.X*center.X - center.Y*center.Y,
		2 * center.X,
		2 * center.Y,
		-1,
		-1,
	}
}

// Angle returns the area expression for the angular sector with apex,
// bisector heading dir, and total angular width (radians).
func Angle(apex geom.Point, dir geom.Complex, width float64) Expression {
	d1 := dir.Add(geom.FromRad(-width / 2))
	d2 := dir.Add(geom.FromRad(width / 2))
	return And(Ineq(RightHalfPlane(apex, d1)), Not(Ineq(RightHalfPlane(apex, d2))))
}

// Rectangle returns the area expression for the stripe of the given width
// running from a to b (a rectangle with a-b as its long axis): two side
// planes parallel to the a-b axis plus two end caps perpendicular to it.
func Rectangle(a, b geom.Point, width float64) Expression {
	dir := geom.Direction(a, b)
	n := dir.Add(geom.DEG90)
	offset := n.Point().Scale(width / 2)
	pPlus := a.Add(offset)
	pMinus := a.Sub(offset)
	return And(
		Ineq(RightHalfPlane(pMinus, dir)),
		Not(Ineq(RightHalfPlane(pPlus, dir))),
		Ineq(RightHalfPlane(a, n.Opposite())),
		Ineq(RightHalfPlane(b, n)),
	)
}

// FilterByArea evaluates each leaf of e at every point in vertices once,
// then for each cell in verticesByCell (a cell index -> vertex index list,
// e.g. the 4 corners of a grid square) ORs every leaf's result across the
// cell's corners before evaluating e's And/Or/Not combinators exactly
// once on that merged per-leaf vector. ORing per leaf first (rather than
// evaluating e per corner and ORing the resulting booleans) is required
// for correctness on AND-combined expressions: a cell can satisfy every
// leaf of a conjunction without any single corner satisfying all of them
// simultaneously (e.g. a narrow angular wedge slicing through the middle
// of a cell), and this bulk accelerator must still flag that cell as a
// candidate. This is the accelerator used by the grid map updater so a
// shared vertex between adjacent cells is only evaluated once.
func FilterByArea(e Expression, vertices []geom.Point, verticesByCell [][]int) []bool {
	leaves := e.leaves(nil)

	leafValues := make([][]bool, len(vertices))
	for vi, v := range vertices {
		qv := geom.From(v)
		row := make([]bool, len(leaves))
		for li, leaf := range leaves {
			row[li] = leaf.MMult(qv) >= 0
		}
		leafValues[vi] = row
	}

	cellResult := make([]bool, len(verticesByCell))
	merged := make([]bool, len(leaves))
	for ci, vs := range verticesByCell {
		for li := range merged {
			merged[li] = false
		}
		for _, vi := range vs {
			for li, v := range leafValues[vi] {
				if v {
					merged[li] = true
				}
			}
		}
		idx := 0
		cellResult[ci] = e.evalFromLeafValues(merged, &idx)
	}
	return cellResult
}

// RadialSensorArea returns the area expression for a sensor's field of
// view: the angular sector of the given receptive angle (half-width,
// radians) about sensorDir, capped at maxDistance from sensorLoc.
func RadialSensorArea(sensorLoc geom.Point, sensorDir geom.Complex, receptiveAngle, maxDistance float64) Expression {
	return And(Angle(sensorLoc, sensorDir, 2*receptiveAngle), Ineq(Circle(sensorLoc, maxDistance)))
}
