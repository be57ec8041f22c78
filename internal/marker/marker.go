// Package marker implements the correlated camera+range fusion that
// creates, updates, and evicts labeled fiducial markers.
package marker

import (
	"math"

	"github.com/m-marini/wheelly/internal/geom"
)

// LabelMarker is a single labeled fiducial's fused location estimate.
type LabelMarker struct {
	Label      string
	Location   geom.Point
	Weight     float64
	MarkerTime int64
	CleanTime  int64
}

// CorrelatedCameraEvent bundles a camera detection with the range/proxy
// sample considered its correlate. Label is "?" when the camera saw
// something but could not read its fiducial.
type CorrelatedCameraEvent struct {
	CameraTime      int64
	ProxyTime       int64
	Label           string
	SensorLocation  geom.Point
	SensorDirection geom.Complex
	Distance        float64
}

// Params holds the fusion tunables: the maximum camera/proxy time gap that
// still counts as one correlated event, the physical size of a marker (used
// to push the fused location slightly beyond the echo), the exponential
// smoothing time constant for updates, the lidar field-of-view half-width,
// and its maximum range.
type Params struct {
	CorrelationInterval int64
	MarkerSize          float64
	SmoothingTau        float64
	ReceptiveAngle      float64
	MaxDistance         float64
}

// Update fuses event into markers and returns the resulting map. markers is
// not mutated; the result is always a fresh map (even when unchanged) so
// callers can rely on map identity never being shared across updates.
func Update(markers map[string]LabelMarker, event CorrelatedCameraEvent, p Params) map[string]LabelMarker {
	result := clone(markers)

	if abs64(event.CameraTime-event.ProxyTime) > p.CorrelationInterval {
		return result
	}

	if event.Label != "" && event.Label != "?" {
		loc := labelLocation(event, p.MarkerSize)
		if existing, ok := result[event.Label]; ok {
			result[event.Label] = blend(existing, loc, event.ProxyTime, p.SmoothingTau)
		} else {
			result[event.Label] = LabelMarker{
				Label:      event.Label,
				Location:   loc,
				Weight:     1,
				MarkerTime: event.ProxyTime,
			}
		}
	}

	for label, m := range result {
		if label == event.Label {
			continue
		}
		if inFieldOfView(event, m.Location, p.ReceptiveAngle) && inRange(event, m.Location, p.MaxDistance) {
			delete(result, label)
		}
	}

	return result
}

// labelLocation places a new/updated marker slightly beyond the measured
// echo, along the sensor's heading.
func labelLocation(event CorrelatedCameraEvent, markerSize float64) geom.Point {
	offset := event.Distance + markerSize/2
	return event.SensorLocation.Add(event.SensorDirection.Point().Scale(offset))
}

// blend exponentially smooths existing toward loc, weighted by the time
// elapsed since the marker was last seen.
func blend(existing LabelMarker, loc geom.Point, proxyTime int64, tau float64) LabelMarker {
	dt := proxyTime - existing.MarkerTime
	gamma := math.Exp(-float64(dt) / tau)
	return LabelMarker{
		Label: existing.Label,
		Location: geom.Point{
			X: gamma*existing.Location.X + (1-gamma)*loc.X,
			Y: gamma*existing.Location.Y + (1-gamma)*loc.Y,
		},
		Weight:     1,
		MarkerTime: proxyTime,
		CleanTime:  existing.CleanTime,
	}
}

// inFieldOfView reports whether loc falls within the sensor's receptive
// angle as measured from event's sensor pose.
func inFieldOfView(event CorrelatedCameraEvent, loc geom.Point, receptiveAngle float64) bool {
	if loc == event.SensorLocation {
		return true
	}
	rel := geom.Direction(event.SensorLocation, loc).Sub(event.SensorDirection)
	return math.Abs(rel.ToRad()) <= receptiveAngle
}

// inRange reports whether loc lies within maxDistance of the sensor; the
// event's own Distance reading is not consulted.
func inRange(event CorrelatedCameraEvent, loc geom.Point, maxDistance float64) bool {
	d := event.SensorLocation.Distance(loc)
	return d <= maxDistance
}

func clone(markers map[string]LabelMarker) map[string]LabelMarker {
	result := make(map[string]LabelMarker, len(markers))
	for k, v := range markers {
		result[k] = v
	}
	return result
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
