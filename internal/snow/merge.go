package snow

// FilterMode selects which items the map list shows.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterFavorites FilterMode = "favorites"
)

// ItemKind discriminates the display item union.
type ItemKind string

const (
	ItemStreet  ItemKind = "street"
	ItemParking ItemKind = "parking"
)

// DisplayItem is the tagged union handed to the UI list: either a street
// segment or a parking pin. Consumers must branch on Kind before touching
// the kind-specific field.
type DisplayItem struct {
	Kind    ItemKind         `json:"kind"`
	Street  *StreetSegment   `json:"street,omitempty"`
	Parking *ParkingLocation `json:"parking,omitempty"`
}

// Merge combines viewport-fetched segments with hydrated favorites,
// de-duplicated by coteRueId. Viewport segments come first in fetch
// order; favorites not already present are appended in hydration order.
func Merge(viewport, favorites []StreetSegment) []StreetSegment {
	seen := make(map[int64]struct{}, len(viewport))
	merged := make([]StreetSegment, 0, len(viewport)+len(favorites))
	for _, s := range viewport {
		seen[s.CoteRueID] = struct{}{}
		merged = append(merged, s)
	}
	for _, f := range favorites {
		if _, ok := seen[f.CoteRueID]; ok {
			continue
		}
		seen[f.CoteRueID] = struct{}{}
		merged = append(merged, f)
	}
	return merged
}

// Filter applies the active view filter to a merged segment list. Mode
// "all" passes every segment through as street items. Mode "favorites"
// keeps only segments in the favorite set and appends every saved
// parking location as a parking item.
func Filter(merged []StreetSegment, mode FilterMode, favorites map[int64]bool, parking []ParkingLocation) []DisplayItem {
	items := make([]DisplayItem, 0, len(merged)+len(parking))
	if mode == FilterFavorites {
		for i := range merged {
			if favorites[merged[i].CoteRueID] {
				items = append(items, DisplayItem{Kind: ItemStreet, Street: &merged[i]})
			}
		}
		for i := range parking {
			items = append(items, DisplayItem{Kind: ItemParking, Parking: &parking[i]})
		}
		return items
	}
	for i := range merged {
		items = append(items, DisplayItem{Kind: ItemStreet, Street: &merged[i]})
	}
	return items
}
