package simrobot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/m-marini/wheelly/internal/geom"
)

// integratePosition advances pos by dtSec seconds at speed (m/s) along
// dir, via a small gonum/mat vector addition. Kept as a matrix op rather
// than inlined scalar arithmetic so the state-transition step composes
// cleanly if the model grows additional state dimensions.
func integratePosition(pos geom.Point, dir geom.Complex, speed, dtSec float64) geom.Point {
	p := mat.NewVecDense(2, []float64{pos.X, pos.Y})
	step := mat.NewVecDense(2, []float64{dir.X * speed * dtSec, dir.Y * speed * dtSec})
	var next mat.VecDense
	next.AddVec(p, step)
	return geom.Point{X: next.AtVec(0), Y: next.AtVec(1)}
}

// approachLinear moves current toward target by at most maxDelta.
func approachLinear(current, target, maxDelta float64) float64 {
	if current < target {
		if target-current < maxDelta {
			return target
		}
		return current + maxDelta
	}
	if current-target < maxDelta {
		return target
	}
	return current - maxDelta
}

// approachAngular rotates current toward target by at most maxRad,
// choosing the shorter rotation direction.
func approachAngular(current, target geom.Complex, maxRad float64) geom.Complex {
	delta := target.Sub(current).ToRad()
	if delta > maxRad {
		delta = maxRad
	} else if delta < -maxRad {
		delta = -maxRad
	}
	return current.Add(geom.FromRad(delta))
}
