package snow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(id int64) StreetSegment {
	return StreetSegment{MunID: MontrealMunID, CoteRueID: id, EtatDeneig: EtatPlanifie}
}

func TestMergeDeduplicatesByID(t *testing.T) {
	viewport := []StreetSegment{seg(1), seg(2), seg(3)}
	favorites := []StreetSegment{seg(2), seg(4)}

	merged := Merge(viewport, favorites)

	ids := make([]int64, 0, len(merged))
	seen := map[int64]int{}
	for _, s := range merged {
		ids = append(ids, s.CoteRueID)
		seen[s.CoteRueID]++
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids, "viewport order first, then new favorites")
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %d appears once", id)
	}
	assert.Len(t, merged, 3+1)
}

func TestMergeEmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	assert.Len(t, Merge([]StreetSegment{seg(1)}, nil), 1)
	assert.Len(t, Merge(nil, []StreetSegment{seg(1)}), 1)
}

func TestFilterAllPassesThrough(t *testing.T) {
	merged := Merge([]StreetSegment{seg(1)}, []StreetSegment{seg(2)})
	items := Filter(merged, FilterAll, map[int64]bool{2: true}, nil)

	require.Len(t, items, 2)
	assert.Equal(t, ItemStreet, items[0].Kind)
	assert.Equal(t, int64(1), items[0].Street.CoteRueID)
	assert.Equal(t, int64(2), items[1].Street.CoteRueID)
}

func TestFilterFavoritesInjectsParking(t *testing.T) {
	merged := Merge([]StreetSegment{seg(1)}, []StreetSegment{seg(2)})
	parking := []ParkingLocation{{ID: "p1", Latitude: 45.50, Longitude: -73.57}}

	items := Filter(merged, FilterFavorites, map[int64]bool{2: true}, parking)

	require.Len(t, items, 2)
	assert.Equal(t, ItemStreet, items[0].Kind)
	assert.Equal(t, int64(2), items[0].Street.CoteRueID)
	assert.Equal(t, ItemParking, items[1].Kind)
	assert.Equal(t, "p1", items[1].Parking.ID)
	assert.Nil(t, items[1].Street, "parking items carry no street")
}

func TestFilterFavoritesEmptySet(t *testing.T) {
	merged := []StreetSegment{seg(1), seg(2)}
	items := Filter(merged, FilterFavorites, map[int64]bool{}, nil)
	assert.Empty(t, items)
}
