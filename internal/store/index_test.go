package store

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func bound(minLng, minLat, maxLng, maxLat float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minLng, minLat}, Max: orb.Point{maxLng, maxLat}}
}

func TestSpatialIndexSearch(t *testing.T) {
	ix := newSpatialIndex()
	ix.upsert(1, bound(-73.60, 45.50, -73.59, 45.51))
	ix.upsert(2, bound(-73.58, 45.52, -73.57, 45.53))
	ix.upsert(3, bound(-73.70, 45.40, -73.69, 45.41))

	ids := ix.search(bound(-73.61, 45.49, -73.565, 45.525))
	assert.ElementsMatch(t, []int64{1, 2}, ids)

	assert.Empty(t, ix.search(bound(-73.50, 45.60, -73.49, 45.61)))
}

func TestSpatialIndexUpsertMoves(t *testing.T) {
	ix := newSpatialIndex()
	ix.upsert(1, bound(-73.60, 45.50, -73.59, 45.51))
	ix.upsert(1, bound(-73.50, 45.60, -73.49, 45.61))

	assert.Equal(t, 1, ix.size())
	assert.Empty(t, ix.search(bound(-73.61, 45.49, -73.58, 45.52)))
	assert.Equal(t, []int64{1}, ix.search(bound(-73.51, 45.59, -73.48, 45.62)))
}

func TestSpatialIndexDegenerateBox(t *testing.T) {
	// perfectly north-south street: zero width
	ix := newSpatialIndex()
	ix.upsert(7, bound(-73.60, 45.50, -73.60, 45.52))

	assert.Equal(t, []int64{7}, ix.search(bound(-73.61, 45.49, -73.59, 45.53)))
}
