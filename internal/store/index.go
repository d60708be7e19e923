package store

import (
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent pads degenerate bounding boxes (straight north-south or
// east-west streets) so the R-tree accepts them.
const minExtent = 1e-9

type streetEntry struct {
	id   int64
	rect rtreego.Rect
}

func (e *streetEntry) Bounds() rtreego.Rect { return e.rect }

// spatialIndex is an R-tree over street bounding boxes, keyed by
// cote_rue_id. It answers viewport queries without touching the
// database.
type spatialIndex struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[int64]*streetEntry
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[int64]*streetEntry),
	}
}

func boundRect(b orb.Bound) rtreego.Rect {
	lengths := []float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]}
	for i, l := range lengths {
		if l < minExtent {
			lengths[i] = minExtent
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, lengths)
	if err != nil {
		// unreachable: lengths are always positive
		panic(err)
	}
	return rect
}

func (ix *spatialIndex) upsert(id int64, b orb.Bound) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.entries[id]; ok {
		ix.tree.Delete(old)
	}
	e := &streetEntry{id: id, rect: boundRect(b)}
	ix.entries[id] = e
	ix.tree.Insert(e)
}

func (ix *spatialIndex) search(b orb.Bound) []int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	hits := ix.tree.SearchIntersect(boundRect(b))
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*streetEntry).id)
	}
	return ids
}

func (ix *spatialIndex) size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}
