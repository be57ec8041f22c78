package geom_test

import (
	"testing"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/testutil"
)

func TestArcSquareIntersectHit(t *testing.T) {
	q := geom.Point{X: 0, Y: 0}
	near, far, ok := geom.ArcSquareIntersect(q, geom.DEG0, 0.4, geom.Point{X: 0, Y: 2}, 1)
	if !ok {
		t.Fatal("expected intersection")
	}
	if near.Distance(q) > far.Distance(q) {
		t.Errorf("near %v should not be farther than far %v", near, far)
	}
	testutil.AssertInRange(t, near.Distance(q), 1.4, 2.1)
	testutil.AssertInRange(t, far.Distance(q), 1.4, 2.8)
}

func TestArcSquareIntersectMiss(t *testing.T) {
	q := geom.Point{X: 0, Y: 0}
	// square far off to the left, outside a narrow forward wedge
	_, _, ok := geom.ArcSquareIntersect(q, geom.DEG0, 0.05, geom.Point{X: -10, Y: 2}, 1)
	if ok {
		t.Fatal("expected no intersection")
	}
}

func TestHorizontalLineIntersect(t *testing.T) {
	q := geom.Point{X: 0, Y: 0}
	near, far, ok := geom.HorizontalLineIntersect(q, geom.DEG0, 0.4, 2)
	if !ok {
		t.Fatal("expected intersection")
	}
	testutil.AssertAlmostEqual(t, near.Y, 2, 1e-9)
	testutil.AssertAlmostEqual(t, far.Y, 2, 1e-9)
}

func TestHorizontalLineIntersectBehind(t *testing.T) {
	q := geom.Point{X: 0, Y: 0}
	_, _, ok := geom.HorizontalLineIntersect(q, geom.DEG0, 0.4, -2)
	if ok {
		t.Fatal("expected no forward intersection with a line behind the apex")
	}
}

func TestVerticalLineIntersect(t *testing.T) {
	q := geom.Point{X: 0, Y: 0}
	near, far, ok := geom.VerticalLineIntersect(q, geom.DEG90, 0.4, 2)
	if !ok {
		t.Fatal("expected intersection")
	}
	testutil.AssertAlmostEqual(t, near.X, 2, 1e-9)
	testutil.AssertAlmostEqual(t, far.X, 2, 1e-9)
}
