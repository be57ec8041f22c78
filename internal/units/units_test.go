package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPulsesToMeters(t *testing.T) {
	assert.InDelta(t, 1.0, PulsesToMeters(10, 0.1), 1e-9)
	assert.InDelta(t, 0.0, PulsesToMeters(0, 0.1), 1e-9)
}

func TestMetersToPulsesRoundTrip(t *testing.T) {
	const dpp = 0.0739
	meters := 3.25
	pulses := MetersToPulses(meters, dpp)
	assert.InDelta(t, meters, PulsesToMeters(pulses, dpp), 1e-9)
}

func TestMetersToPulsesZeroDistancePerPulse(t *testing.T) {
	assert.Equal(t, 0.0, MetersToPulses(10, 0))
}

func TestMmMetersRoundTrip(t *testing.T) {
	assert.InDelta(t, 1234.5, MetersToMm(MmToMeters(1234.5)), 1e-9)
}

func TestDistanceScale(t *testing.T) {
	// At 1 microsecond per tick, a round trip of 2*d metres takes
	// 2*d/SpeedOfSound seconds; DistanceScale inverts that relationship.
	scale := DistanceScale(1.0)
	delayUs := 1000.0
	got := delayUs * scale
	want := SpeedOfSound / 2 * delayUs * 1e-6
	assert.True(t, math.Abs(got-want) < 1e-12)
}
