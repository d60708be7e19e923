package snow

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerPointSingleVertex(t *testing.T) {
	p, ok := MarkerPoint(orb.LineString{{-73.57, 45.50}})
	require.True(t, ok)
	assert.Equal(t, orb.Point{-73.57, 45.50}, p)
}

func TestMarkerPointEmpty(t *testing.T) {
	_, ok := MarkerPoint(orb.LineString{})
	assert.False(t, ok)
}

func TestMarkerPointTwoVertices(t *testing.T) {
	p, ok := MarkerPoint(orb.LineString{{-73.60, 45.50}, {-73.50, 45.52}})
	require.True(t, ok)
	assert.InDelta(t, -73.55, p[0], 1e-9)
	assert.InDelta(t, 45.51, p[1], 1e-9)
}

// All vertices coincident: total length is zero, no division happens, the
// first vertex comes back.
func TestMarkerPointZeroLength(t *testing.T) {
	line := orb.LineString{{-73.57, 45.50}, {-73.57, 45.50}, {-73.57, 45.50}}
	p, ok := MarkerPoint(line)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-73.57, 45.50}, p)
}

// Distance weighting: a long first leg followed by many short ones should
// put the marker inside the first leg, not at the middle vertex.
func TestMarkerPointDistanceWeighted(t *testing.T) {
	line := orb.LineString{
		{-73.600, 45.500},
		{-73.500, 45.500}, // ~7.8km leg
		{-73.499, 45.500},
		{-73.498, 45.500},
		{-73.497, 45.500},
	}
	p, ok := MarkerPoint(line)
	require.True(t, ok)
	assert.Greater(t, p[0], -73.600)
	assert.Less(t, p[0], -73.500, "marker should land on the dominant first leg")
	assert.InDelta(t, 45.500, p[1], 1e-9)
}

func TestLongestPart(t *testing.T) {
	ml := orb.MultiLineString{
		{{-73.57, 45.50}, {-73.56, 45.50}},
		{{-73.55, 45.51}, {-73.54, 45.51}, {-73.53, 45.51}},
	}
	assert.Len(t, LongestPart(ml), 3)

	p, ok := MarkerPointMulti(ml)
	require.True(t, ok)
	assert.InDelta(t, 45.51, p[1], 1e-9, "marker must come from the longest part")
}
