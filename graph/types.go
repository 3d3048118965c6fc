// Package graph implements the mutable road graph: junctions and segments
// loaded once from a topology artifact, with a per-edge risk score that the
// Fusion Engine updates continuously.
package graph

import "fmt"

// RoadClass enumerates the speed/behavior class of a segment.
type RoadClass string

const (
	RoadMotorway    RoadClass = "motorway"
	RoadPrimary     RoadClass = "primary"
	RoadSecondary   RoadClass = "secondary"
	RoadResidential RoadClass = "residential"
	RoadService     RoadClass = "service"
)

// NodeID is the stable integer identity of a junction.
type NodeID int64

// Node is an immutable junction: identity plus geographic coordinate.
// Nodes are loaded once from the topology artifact and never mutated.
type Node struct {
	ID  NodeID
	Lon float64
	Lat float64
}

// EdgeKey uniquely identifies a directed segment; K disambiguates parallel edges.
type EdgeKey struct {
	U NodeID
	V NodeID
	K int
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d#%d", k.U, k.V, k.K)
}

// LocationWeight is one entry in an edge's influence list: the named
// location that can raise this edge's risk, and the distance (meters)
// used to derive its exponential-decay weight during fusion.
type LocationWeight struct {
	Location   string
	DistanceM  float64
}

// edgeAttrs holds the immutable attributes of a segment. Risk is stored
// separately as an atomic cell (see riskCell) so readers never need a lock.
type edgeAttrs struct {
	Key         EdgeKey
	LengthM     float64
	RoadClass   RoadClass
	Geometry    []LatLon
	Influences  []LocationWeight
}

// LatLon is a single point of an edge's polyline geometry.
type LatLon struct {
	Lat float64
	Lon float64
}

// EdgeView is the read-only projection of an edge handed out by a
// GraphView: immutable attributes plus the risk value observed at
// snapshot time.
type EdgeView struct {
	Key        EdgeKey
	LengthM    float64
	RoadClass  RoadClass
	Geometry   []LatLon
	Influences []LocationWeight
	Risk       float64
}

// ChangeToken is returned by UpdateRisk so callers (and tests) can observe
// that a write was accepted and order writes relative to each other.
type ChangeToken struct {
	Key     EdgeKey
	Version uint64
	Risk    float64
}
