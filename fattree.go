// Package fattree builds and queries k-ary fat-tree data-center network
// topologies.  A topology is constructed once from the parameter k,
// compute nodes are bound to its edge switches, and thereafter the
// structure is queried read-only: switch-level paths between nodes,
// structural metrics (bisection bandwidth, equal-cost path counts,
// oversubscription, cost and power planning estimates), and accessors
// that let a surrounding harness wire the switches and nodes into its
// own machinery.
package fattree

// fattree.go holds the data structures describing a built fat tree and
// the lookup state used to answer queries against it

import (
	"fmt"
	"sync"
)

// Tier identifies the layer a switch occupies in the fat tree.
type Tier int

const (
	CoreTier Tier = iota
	AggTier
	EdgeTier
)

// tierToStr is a translation table for creating strings from tier codes
var tierToStr map[Tier]string = map[Tier]string{
	CoreTier: "core", AggTier: "aggregation", EdgeTier: "edge"}

func (tier Tier) String() string {
	return tierToStr[tier]
}

// NodeID is an opaque handle for a compute node owned by the caller.
// The topology records only the identity; whatever resources the node
// models live outside this package.
type NodeID int

// InvalidParameterError reports a fat-tree parameter from which no
// topology can be built.
type InvalidParameterError struct {
	K int
}

func (ipe *InvalidParameterError) Error() string {
	return fmt.Sprintf("fat tree parameter k must be a positive even number, have %d", ipe.K)
}

// CoreCount gives the number of core switches for parameter k
func CoreCount(k int) int {
	return (k / 2) * (k / 2)
}

// AggCount gives the number of aggregation switches for parameter k
func AggCount(k int) int {
	return k * (k / 2)
}

// EdgeCount gives the number of edge switches for parameter k
func EdgeCount(k int) int {
	return k * (k / 2)
}

// MaxNodes gives the compute-node capacity of a fat tree with parameter k
func MaxNodes(k int) int {
	return k * k * k / 4
}

// Topology is the aggregate built by BuildFatTree.  Switch adjacency is
// immutable once the build completes; the only later mutation is the
// node binding installed by AssignNodes, which is serialized against
// concurrent queries by the reader-writer lock.
type Topology struct {
	K int // fat-tree parameter, positive and even

	CoreSwitches []*Switch // (k/2)^2 switches, pod-agnostic
	AggSwitches  []*Switch // k*(k/2) switches, pod-major order
	EdgeSwitches []*Switch // k*(k/2) switches, pod-major order

	SwitchByID   map[int]*Switch
	SwitchByName map[string]*Switch

	edgeOfNode map[NodeID]*Switch // assignment of node to edge switch
	assigned   []NodeID           // assigned nodes in placement order

	perf    PerfParams     // coefficients used by the metrics estimator
	metrics NetworkMetrics // snapshot refreshed at build and assignment

	rtState *routeState // switch graph in gonum form, built once

	mu sync.RWMutex
}

// registerSwitch puts a new switch into the lookup maps, guarding
// against id or name reuse
func (topo *Topology) registerSwitch(swtch *Switch) {
	_, present := topo.SwitchByID[swtch.SwitchID]
	if present {
		panic(fmt.Sprintf("index %d over-used in SwitchByID", swtch.SwitchID))
	}
	_, present = topo.SwitchByName[swtch.SwitchName]
	if present {
		panic(fmt.Sprintf("name %s over-used in SwitchByName", swtch.SwitchName))
	}
	topo.SwitchByID[swtch.SwitchID] = swtch
	topo.SwitchByName[swtch.SwitchName] = swtch
}

// SwitchesByTier returns the switches of the named tier, in identity order.
// The returned slice is a copy, so callers cannot disturb the topology.
func (topo *Topology) SwitchesByTier(tier Tier) []*Switch {
	var src []*Switch
	switch tier {
	case CoreTier:
		src = topo.CoreSwitches
	case AggTier:
		src = topo.AggSwitches
	case EdgeTier:
		src = topo.EdgeSwitches
	}
	rtn := make([]*Switch, len(src))
	copy(rtn, src)
	return rtn
}

// NodesOnSwitch returns the compute nodes bound to the switch with the
// given identity.  Empty for core and aggregation switches, for unknown
// identities, and for edge switches with no assignment.
func (topo *Topology) NodesOnSwitch(switchID int) []NodeID {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	swtch, present := topo.SwitchByID[switchID]
	if !present || swtch.SwitchTier != EdgeTier {
		return []NodeID{}
	}
	rtn := make([]NodeID, len(swtch.EdgeNodes))
	copy(rtn, swtch.EdgeNodes)
	return rtn
}

// EdgeSwitchOf reports the edge switch a node is bound to, if any
func (topo *Topology) EdgeSwitchOf(node NodeID) (*Switch, bool) {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	swtch, present := topo.edgeOfNode[node]
	return swtch, present
}

// AssignedNodes returns the bound compute nodes in placement order
func (topo *Topology) AssignedNodes() []NodeID {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	rtn := make([]NodeID, len(topo.assigned))
	copy(rtn, topo.assigned)
	return rtn
}

// Capacity reports the maximum number of compute nodes the topology accepts
func (topo *Topology) Capacity() int {
	return MaxNodes(topo.K)
}
