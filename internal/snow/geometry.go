package snow

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// MarkerPoint reduces a street-side polyline to a single representative
// point for marker placement: the point at 50% of the line's arc length.
//
// Weighting by great-circle distance rather than vertex index keeps the
// marker visually centered on long segments regardless of how densely
// the line is vertexed. Degenerate inputs fall back as follows: an empty
// line yields ok=false, a single vertex yields that vertex, and a line
// of coincident vertices (total length zero) yields the first vertex.
func MarkerPoint(line orb.LineString) (orb.Point, bool) {
	switch len(line) {
	case 0:
		return orb.Point{}, false
	case 1:
		return line[0], true
	}

	// Cumulative arc length at each vertex.
	cum := make([]float64, len(line))
	for i := 1; i < len(line); i++ {
		cum[i] = cum[i-1] + geo.Distance(line[i-1], line[i])
	}

	total := cum[len(cum)-1]
	if total == 0 {
		return line[0], true
	}

	half := total / 2
	for i := 1; i < len(line); i++ {
		if cum[i] < half {
			continue
		}
		segLen := cum[i] - cum[i-1]
		t := (half - cum[i-1]) / segLen
		return orb.Point{
			line[i-1][0] + t*(line[i][0]-line[i-1][0]),
			line[i-1][1] + t*(line[i][1]-line[i-1][1]),
		}, true
	}

	// Unreachable given total > 0, but keep the last vertex as a guard.
	return line[len(line)-1], true
}

// LongestPart returns the part of a multi-part line with the most
// vertices. Segments occasionally arrive as disconnected pieces; marker
// placement and geometry normalization operate on the dominant piece.
func LongestPart(ml orb.MultiLineString) orb.LineString {
	var longest orb.LineString
	for _, part := range ml {
		if len(part) > len(longest) {
			longest = part
		}
	}
	return longest
}

// MarkerPointMulti is MarkerPoint over a possibly multi-part geometry.
func MarkerPointMulti(ml orb.MultiLineString) (orb.Point, bool) {
	return MarkerPoint(LongestPart(ml))
}
