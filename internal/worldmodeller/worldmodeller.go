// Package worldmodeller is the stateful driver that turns a stream of
// robot.Status snapshots into marker.WorldModel updates: it owns the
// evolving RadarMap and fiducial marker map, applying each status's proxy
// reading to the grid and each camera/proxy pair to the marker fusion,
// then derives a fresh PolarMap and WorldModel. It mirrors the teacher's
// "subscribe to upstream status, aggregate into a read-only summary"
// layering (see internal/marker/worldmodel.go's doc comment), but
// WorldModeller is the part that actually owns and advances the mutable
// state across ticks.
package worldmodeller

import (
	"math"

	"github.com/m-marini/wheelly/internal/geom"
	"github.com/m-marini/wheelly/internal/gridmap"
	"github.com/m-marini/wheelly/internal/marker"
	"github.com/m-marini/wheelly/internal/robot"
	"github.com/m-marini/wheelly/internal/units"
)

// Config carries the modelling tunables a WorldModeller needs beyond the
// robot.Spec grid/sensor geometry.
type Config struct {
	NumSectors int
}

// WorldModeller owns the RadarMap and marker map derived from a robot
// status stream, and projects them into WorldModel snapshots on demand.
// It is not safe for concurrent use; it is driven from a single
// goroutine, exactly like the controller's inference callback that calls
// it.
type WorldModeller struct {
	spec   robot.Spec
	cfg    Config
	radar  gridmap.RadarMap
	markers map[string]marker.LabelMarker

	lastProxy robot.ProxyMessage
	haveProxy bool
}

// New builds a WorldModeller over an empty grid spanning spec's
// configured topology, centred on the origin.
func New(spec robot.Spec, cfg Config) *WorldModeller {
	topology := gridmap.NewTopology(geom.Point{X: 0, Y: 0}, spec.GridWidth, spec.GridHeight, spec.GridSize)
	return &WorldModeller{
		spec:    spec,
		cfg:     cfg,
		radar:   gridmap.NewRadarMap(topology),
		markers: map[string]marker.LabelMarker{},
	}
}

// Restore replaces the modeller's grid and marker state with a
// previously persisted WorldModel, for warm restart from the sqlite
// snapshot store.
func (w *WorldModeller) Restore(m marker.WorldModel) {
	w.radar = m.RadarMap
	w.markers = m.Markers
}

// Snapshot returns the modeller's current grid and marker state as a
// WorldModel, suitable for persisting without waiting for a fresh
// status. RobotStatus and PolarMap are left zero-valued; callers that
// need a live projection should use Observe instead.
func (w *WorldModeller) Snapshot() marker.WorldModel {
	return marker.NewWorldModel(w.spec, robot.Status{Spec: w.spec}, w.radar, w.markers, gridmap.PolarMap{}, w.spec.RobotRadius)
}

// Observe folds one robot.Status into the modeller's state and returns
// the resulting WorldModel. Status updates are applied in this order:
// grid clean (if due), proxy echo/anechoic update, camera/proxy
// correlation, then the PolarMap/WorldModel projection.
func (w *WorldModeller) Observe(status robot.Status) marker.WorldModel {
	w.radar = w.radar.Clean(status.SimTime, w.spec.CleanInterval, w.spec.EchoPersistence, w.spec.ContactPersistence)

	if status.Proxy.SimTime != 0 {
		signal := w.proxySignal(status.Proxy)
		w.radar = w.radar.Update(signal, w.spec.ReceptiveAngle, w.spec.MaxDistance, w.spec.DecayTau)
		w.lastProxy = status.Proxy
		w.haveProxy = true
	}

	if status.Camera.SimTime != 0 && w.haveProxy {
		event := w.correlatedEvent(status.Camera)
		w.markers = marker.Update(w.markers, event, marker.Params{
			CorrelationInterval: w.spec.CorrelationInterval,
			MarkerSize:          w.spec.MarkerSize,
			SmoothingTau:        w.spec.MarkerSmoothingTau,
			ReceptiveAngle:      w.spec.ReceptiveAngle,
			MaxDistance:         w.spec.MaxDistance,
		})
	}

	center := status.Motion.SensorLocation(w.spec.DistancePerPulse)
	polarMap := gridmap.BuildPolarMap(w.radar, center, w.cfg.NumSectors)
	return marker.NewWorldModel(w.spec, status, w.radar, w.markers, polarMap, w.spec.RobotRadius)
}

// proxySignal converts a wire ProxyMessage (pulses + absolute sensor
// heading + round-trip echo delay) into the gridmap Signal the RadarMap
// update rule expects.
func (w *WorldModeller) proxySignal(p robot.ProxyMessage) gridmap.Signal {
	loc := geom.Point{
		X: units.PulsesToMeters(p.XPulses, w.spec.DistancePerPulse),
		Y: units.PulsesToMeters(p.YPulses, w.spec.DistancePerPulse),
	}
	dir := geom.FromDeg(float64(p.SensorDirDeg))
	var dist float64
	if p.EchoDelayUs > 0 {
		dist = float64(p.EchoDelayUs) * units.DistanceScale(1)
	}
	return gridmap.Signal{
		SensorLocation:  loc,
		SensorDirection: dir,
		Distance:        dist,
		Timestamp:       p.SimTime,
	}
}

// correlatedEvent pairs a camera detection with the most recent proxy
// sample, taking the camera's reported world-frame offset (Dx, Dy) as
// the correlate's distance/direction relative to the sensor pose that
// produced the last proxy reading.
func (w *WorldModeller) correlatedEvent(c robot.CameraMessage) marker.CorrelatedCameraEvent {
	loc := geom.Point{
		X: units.PulsesToMeters(w.lastProxy.XPulses, w.spec.DistancePerPulse),
		Y: units.PulsesToMeters(w.lastProxy.YPulses, w.spec.DistancePerPulse),
	}
	dist := math.Hypot(c.Dx, c.Dy)
	dir := geom.FromPoint(geom.Point{X: c.Dx, Y: c.Dy})
	return marker.CorrelatedCameraEvent{
		CameraTime:      c.SimTime,
		ProxyTime:       w.lastProxy.SimTime,
		Label:           c.Label,
		SensorLocation:  loc,
		SensorDirection: dir,
		Distance:        dist,
	}
}
