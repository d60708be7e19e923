package infoneige

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMTM8CentralMeridian(t *testing.T) {
	// at the false easting the longitude is exactly the central meridian
	lat, lng := MTM8ToWGS84(304800, 5040000)
	assert.InDelta(t, -73.5, lng, 1e-9)
	assert.InDelta(t, 45.5, lat, 0.15)
}

func TestMTM8EastOfMeridian(t *testing.T) {
	_, lngWest := MTM8ToWGS84(294800, 5040000)
	_, lngEast := MTM8ToWGS84(314800, 5040000)
	assert.Less(t, lngWest, -73.5)
	assert.Greater(t, lngEast, -73.5)

	// 10 km is roughly an eighth of a degree of longitude at Montreal
	assert.InDelta(t, 0.128, lngEast+73.5, 0.01)
}

func TestMTM8MonotonicNorthing(t *testing.T) {
	latLow, _ := MTM8ToWGS84(300000, 5030000)
	latHigh, _ := MTM8ToWGS84(300000, 5050000)
	assert.Greater(t, latHigh, latLow)
	assert.InDelta(t, 0.18, latHigh-latLow, 0.01)
}
