package fattree

// net.go holds the run-time representation of fat-tree switches, the
// code that builds the three-tier switch graph, and the code that binds
// compute nodes to edge switches

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Switch is one switch in the fat tree.  Its adjacency lists are filled
// during the build and never change afterwards; the EdgeNodes list is
// populated only on the edge tier, by AssignNodes.
type Switch struct {
	SwitchName string // unique name, e.g. "agg.2.1" for pod 2 position 1
	SwitchID   int    // unique integer id, assigned in creation order
	SwitchTier Tier
	SwitchPod  int // pod holding the switch, -1 on the core tier
	TierIndex  int // position within the tier; pod-major for agg and edge
	Ports      int // port capacity, k for every switch in a k-ary tree

	Uplinks   []*Switch // ordered connections toward the core
	Downlinks []*Switch // ordered connections toward the edge

	EdgeNodes []NodeID // compute nodes bound to an edge switch
}

// createSwitch is a constructor.  The name encodes tier, pod, and
// position so that a dump of the topology reads directly.
func createSwitch(tier Tier, pod, tierIndex, switchID, ports int) *Switch {
	swtch := new(Switch)
	swtch.SwitchTier = tier
	swtch.SwitchPod = pod
	swtch.TierIndex = tierIndex
	swtch.SwitchID = switchID
	swtch.Ports = ports
	swtch.Uplinks = make([]*Switch, 0)
	swtch.Downlinks = make([]*Switch, 0)

	if tier == CoreTier {
		swtch.SwitchName = fmt.Sprintf("core.%d", tierIndex)
	} else {
		pos := tierIndex - pod*(ports/2)
		switch tier {
		case AggTier:
			swtch.SwitchName = fmt.Sprintf("agg.%d.%d", pod, pos)
		case EdgeTier:
			swtch.SwitchName = fmt.Sprintf("edge.%d.%d", pod, pos)
		}
	}
	return swtch
}

// ConnectedTo reports whether the two switches share a link, looking in
// both directions
func (swtch *Switch) ConnectedTo(other *Switch) bool {
	return slices.Contains(swtch.Uplinks, other) || slices.Contains(swtch.Downlinks, other)
}

// BuildFatTree constructs the complete switch graph for the fat tree
// with parameter k.  k must be a positive even integer; any other value
// yields an InvalidParameterError and no partial topology.  Building is
// deterministic: two calls with the same k produce structurally
// identical topologies.
func BuildFatTree(k int) (*Topology, error) {
	if k <= 0 || k%2 != 0 {
		return nil, &InvalidParameterError{K: k}
	}

	topo := new(Topology)
	topo.K = k
	topo.perf = DefaultPerfParams()
	topo.SwitchByID = make(map[int]*Switch)
	topo.SwitchByName = make(map[string]*Switch)
	topo.edgeOfNode = make(map[NodeID]*Switch)

	half := k / 2
	nxtID := 0

	// create the core tier
	topo.CoreSwitches = make([]*Switch, 0, CoreCount(k))
	for idx := 0; idx < CoreCount(k); idx++ {
		swtch := createSwitch(CoreTier, -1, idx, nxtID, k)
		nxtID++
		topo.CoreSwitches = append(topo.CoreSwitches, swtch)
		topo.registerSwitch(swtch)
	}

	// create the aggregation and edge tiers, pod-major
	topo.AggSwitches = make([]*Switch, 0, AggCount(k))
	for idx := 0; idx < AggCount(k); idx++ {
		swtch := createSwitch(AggTier, idx/half, idx, nxtID, k)
		nxtID++
		topo.AggSwitches = append(topo.AggSwitches, swtch)
		topo.registerSwitch(swtch)
	}

	topo.EdgeSwitches = make([]*Switch, 0, EdgeCount(k))
	for idx := 0; idx < EdgeCount(k); idx++ {
		swtch := createSwitch(EdgeTier, idx/half, idx, nxtID, k)
		nxtID++
		topo.EdgeSwitches = append(topo.EdgeSwitches, swtch)
		topo.registerSwitch(swtch)
	}

	// uplink every aggregation switch to its core group.  The cores are
	// partitioned into k/2 groups of k/2, the group index being the
	// switch's position within its pod, and each group is consumed in
	// ascending core order.
	for pod := 0; pod < k; pod++ {
		for pos := 0; pos < half; pos++ {
			aggSwtch := topo.AggSwitches[pod*half+pos]
			for coreIdx := pos * half; coreIdx < (pos+1)*half; coreIdx++ {
				coreSwtch := topo.CoreSwitches[coreIdx]
				aggSwtch.Uplinks = append(aggSwtch.Uplinks, coreSwtch)
				coreSwtch.Downlinks = append(coreSwtch.Downlinks, aggSwtch)
			}
		}
	}

	// full bipartite mesh between the edge and aggregation switches of
	// each pod
	for pod := 0; pod < k; pod++ {
		for pos := 0; pos < half; pos++ {
			edgeSwtch := topo.EdgeSwitches[pod*half+pos]
			for aggPos := 0; aggPos < half; aggPos++ {
				aggSwtch := topo.AggSwitches[pod*half+aggPos]
				edgeSwtch.Uplinks = append(edgeSwtch.Uplinks, aggSwtch)
				aggSwtch.Downlinks = append(aggSwtch.Downlinks, edgeSwtch)
			}
		}
	}

	// the adjacency is now frozen, so the graph form used by route
	// verification can be built once here
	topo.rtState = buildConnGraph(topo)

	topo.metrics = topo.computeMetrics(0)

	log.WithFields(log.Fields{
		"k":     k,
		"cores": len(topo.CoreSwitches),
		"aggs":  len(topo.AggSwitches),
		"edges": len(topo.EdgeSwitches),
	}).Debug("built fat-tree topology")

	return topo, nil
}

// AssignNodes binds the offered compute nodes to edge switches, filling
// pods in ascending order and each edge switch up to k/2 nodes before
// moving to the next.  A call replaces any earlier assignment entirely.
// Input beyond the k^3/4 capacity is dropped, and an empty input is a
// no-op; both produce an advisory in the returned warn string (empty
// when the assignment is clean) rather than an error.
func (topo *Topology) AssignNodes(nodes []NodeID) (int, string) {
	topo.mu.Lock()
	defer topo.mu.Unlock()

	// discard any earlier binding
	topo.edgeOfNode = make(map[NodeID]*Switch)
	topo.assigned = topo.assigned[:0]
	for _, swtch := range topo.EdgeSwitches {
		swtch.EdgeNodes = swtch.EdgeNodes[:0]
	}

	warn := ""
	if len(nodes) == 0 {
		warn = "no compute nodes offered for assignment"
		log.Warn(warn)
		topo.metrics = topo.computeMetrics(0)
		return 0, warn
	}

	capacity := MaxNodes(topo.K)
	actual := len(nodes)
	if actual > capacity {
		actual = capacity
		warn = fmt.Sprintf("%d compute nodes offered exceed capacity %d, dropping %d",
			len(nodes), capacity, len(nodes)-capacity)
		log.Warn(warn)
	}

	perEdge := topo.K / 2
	nodeIdx := 0
	for _, swtch := range topo.EdgeSwitches {
		if nodeIdx == actual {
			break
		}
		for slot := 0; slot < perEdge && nodeIdx < actual; slot++ {
			node := nodes[nodeIdx]
			nodeIdx++
			swtch.EdgeNodes = append(swtch.EdgeNodes, node)
			topo.edgeOfNode[node] = swtch
			topo.assigned = append(topo.assigned, node)
		}
	}

	topo.metrics = topo.computeMetrics(actual)

	log.WithFields(log.Fields{
		"assigned": actual,
		"capacity": capacity,
	}).Debug("bound compute nodes to edge switches")

	return actual, warn
}
