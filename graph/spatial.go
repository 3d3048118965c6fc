package graph

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/uber/h3-go/v4"
)

// nearestNodeResolution is the H3 cell resolution used to bucket nodes for
// nearest-neighbor lookups: resolution 9 cells are ~175m across, tight
// enough for road-segment-scale snapping without degenerating to a linear
// scan on dense urban topologies.
const nearestNodeResolution = 9

// spatialIndex buckets nodes into H3 cells so nearest_node can expand a
// ring search outward from the query cell instead of scanning every node.
// Grounded on h3-spatial-cache's use of uber/h3-go for cell bucketing.
type spatialIndex struct {
	cellNodes map[h3.Cell][]NodeID
	lookupLRU *lru.Cache[coordKey, NodeID]
}

// coordKey is a query coordinate rounded to 1e-6 degrees, the key of the
// recent-lookup cache.
type coordKey struct{ lon, lat float64 }

func newSpatialIndex(nodes map[NodeID]Node) *spatialIndex {
	idx := &spatialIndex{
		cellNodes: make(map[h3.Cell][]NodeID, len(nodes)),
	}
	cache, err := lru.New[coordKey, NodeID](4096)
	if err == nil {
		idx.lookupLRU = cache
	}
	for id, n := range nodes {
		cell := h3.LatLngToCell(h3.NewLatLng(n.Lat, n.Lon), nearestNodeResolution)
		idx.cellNodes[cell] = append(idx.cellNodes[cell], id)
	}
	return idx
}

// nearest returns the closest node to (lon, lat) by expanding H3 grid rings
// until at least one candidate is found, then resolving ties by great-circle
// distance and, per the spec's determinism rule, by smaller NodeID.
func (idx *spatialIndex) nearest(nodes map[NodeID]Node, lon, lat float64) (NodeID, bool) {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), nearestNodeResolution)
	key := coordKey{lon: math.Round(lon*1e6) / 1e6, lat: math.Round(lat*1e6) / 1e6}
	if idx.lookupLRU != nil {
		if cached, ok := idx.lookupLRU.Get(key); ok {
			return cached, true
		}
	}

	var candidates []NodeID
	for ring := 0; ring <= 6 && len(candidates) == 0; ring++ {
		cells := h3.GridDisk(origin, ring)
		for _, c := range cells {
			candidates = append(candidates, idx.cellNodes[c]...)
		}
	}
	if len(candidates) == 0 {
		// Degenerate fallback: the index has no coverage near the query
		// point (e.g. a tiny test topology). Scan every node.
		for id := range nodes {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	best := candidates[0]
	bestDist := greatCircleDistanceM(lat, lon, nodes[best].Lat, nodes[best].Lon)
	for _, id := range candidates[1:] {
		n := nodes[id]
		d := greatCircleDistanceM(lat, lon, n.Lat, n.Lon)
		if d < bestDist || (d == bestDist && id < best) {
			best = id
			bestDist = d
		}
	}

	if idx.lookupLRU != nil {
		idx.lookupLRU.Add(key, best)
	}
	return best, true
}
