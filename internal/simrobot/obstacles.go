// Package simrobot implements a deterministic 2D physics substitute for
// the physical robot: the same message stream, produced by integrating a
// small rigid-body model instead of reading hardware.
package simrobot

import (
	"math"

	"github.com/m-marini/wheelly/internal/geom"
)

// Obstacle is a labeled disk obstacle.
type Obstacle struct {
	Label  string
	Center geom.Point
	Radius float64
}

// ObstacleMap is the flat set of obstacles the sim robot can collide with
// or echo off of.
type ObstacleMap struct {
	Obstacles []Obstacle
}

// Nearest returns the distance from p to the surface of the nearest
// obstacle whose centre lies within halfAngle of dir (as seen from p), and
// that obstacle's label. ok is false if no obstacle falls in the cone.
// Collision detection and the echo raycast share this: collision calls it
// with halfAngle pi (every direction) and compares dist against the robot
// radius, the raycast calls it with the sensor cone. dist is clamped to 0
// when p is inside an obstacle.
func (m ObstacleMap) Nearest(p geom.Point, dir geom.Complex, halfAngle float64) (dist float64, label string, ok bool) {
	best := math.Inf(1)
	for _, o := range m.Obstacles {
		if p == o.Center {
			return 0, o.Label, true
		}
		rel := geom.Direction(p, o.Center).Sub(dir)
		if math.Abs(rel.ToRad()) > halfAngle {
			continue
		}
		d := p.Distance(o.Center) - o.Radius
		if d < 0 {
			d = 0
		}
		if d < best {
			best = d
			label = o.Label
			ok = true
		}
	}
	return best, label, ok
}
