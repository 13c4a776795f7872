package fattree

// routes.go resolves the switch-level path between two compute nodes.
// Two resolvers are provided.  FindPath follows the classic fat-tree
// routing cases directly from the deterministic wiring and returns one
// representative path without validating the cross-pod core hop.
// FindRoute converts the switch graph into the form used by the gonum
// graph package, runs Dijkstra over it with unit edge weights, and
// caches the resulting shortest-path tree per source, so every route it
// returns is fully connected.

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// FindPath returns the ordered switch sequence joining the edge
// switches of two assigned nodes: one switch when they share an edge
// switch, three within a pod, five across pods.  Where the topology
// offers several equal-cost alternatives the resolver always takes the
// first uplink at each upward hop, so the result is a representative
// path, not an enumeration; in the cross-pod case the chosen core
// switch is not checked for a direct link onward to the destination's
// aggregation switch (use FindRoute when that guarantee is needed).
// Either endpoint lacking an assignment yields an empty path.
func (topo *Topology) FindPath(src, dst NodeID) []*Switch {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	return topo.findPath(src, dst)
}

// findPath is the lock-free body of FindPath, shared with the sampler
func (topo *Topology) findPath(src, dst NodeID) []*Switch {
	srcEdge, srcOK := topo.edgeOfNode[src]
	dstEdge, dstOK := topo.edgeOfNode[dst]
	if !srcOK || !dstOK {
		return []*Switch{}
	}

	if srcEdge == dstEdge {
		return []*Switch{srcEdge}
	}

	// a built topology always gives every edge switch k/2 uplinks, so
	// an empty uplink list here means the build invariants were broken
	if len(srcEdge.Uplinks) == 0 || len(dstEdge.Uplinks) == 0 {
		panic(fmt.Sprintf("edge switch %s or %s has no uplinks in built topology",
			srcEdge.SwitchName, dstEdge.SwitchName))
	}

	// pod membership follows from identity numbering
	half := topo.K / 2
	if srcEdge.TierIndex/half == dstEdge.TierIndex/half {
		return []*Switch{srcEdge, srcEdge.Uplinks[0], dstEdge}
	}

	srcAgg := srcEdge.Uplinks[0]
	if len(srcAgg.Uplinks) == 0 {
		panic(fmt.Sprintf("aggregation switch %s has no uplinks in built topology",
			srcAgg.SwitchName))
	}

	return []*Switch{srcEdge, srcAgg, srcAgg.Uplinks[0], dstEdge.Uplinks[0], dstEdge}
}

// routeState holds the gonum representation of the switch graph and a
// cache of shortest-path trees keyed by the source switch id.  The
// graph itself is immutable once built; the cache fills lazily and has
// its own lock so concurrent readers may resolve routes.
type routeState struct {
	gNodes    map[int]simple.Node
	connGraph graph.Graph

	mu       sync.Mutex
	cachedSP map[int]path.Shortest
}

// buildConnGraph transforms the switch adjacency lists into a weighted
// undirected gonum graph with every link carrying weight 1, so that a
// shortest path minimizes hop count
func buildConnGraph(topo *Topology) *routeState {
	rs := new(routeState)
	rs.gNodes = make(map[int]simple.Node)
	rs.cachedSP = make(map[int]path.Shortest)

	connGraph := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for switchID := range topo.SwitchByID {
		rs.gNodes[switchID] = simple.Node(switchID)
	}

	// recording the uplink direction is enough, the graph is undirected
	for switchID, swtch := range topo.SwitchByID {
		for _, upl := range swtch.Uplinks {
			weightedEdge := simple.WeightedEdge{F: rs.gNodes[switchID], T: rs.gNodes[upl.SwitchID], W: 1.0}
			connGraph.SetWeightedEdge(weightedEdge)
		}
	}

	rs.connGraph = connGraph
	return rs
}

// getSPTree returns the shortest-path tree rooted in 'from', computing
// and caching it on first use
func (rs *routeState) getSPTree(from int) path.Shortest {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	spTree, present := rs.cachedSP[from]
	if present {
		return spTree
	}

	spTree = path.DijkstraFrom(rs.gNodes[from], rs.connGraph)
	rs.cachedSP[from] = spTree
	return spTree
}

// FindRoute returns a verified shortest switch-level route between two
// assigned nodes, discovered over the actual adjacency rather than by
// the first-uplink convention.  Hop counts match FindPath (1, 3, or 5)
// but every consecutive pair of switches on the result is guaranteed to
// share a link.  Unassigned endpoints yield an empty route.
func (topo *Topology) FindRoute(src, dst NodeID) []*Switch {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	srcEdge, srcOK := topo.edgeOfNode[src]
	dstEdge, dstOK := topo.edgeOfNode[dst]
	if !srcOK || !dstOK {
		return []*Switch{}
	}

	if srcEdge == dstEdge {
		return []*Switch{srcEdge}
	}

	spTree := topo.rtState.getSPTree(srcEdge.SwitchID)
	nodeSeq, _ := spTree.To(int64(dstEdge.SwitchID))

	route := make([]*Switch, 0, len(nodeSeq))
	for _, gNode := range nodeSeq {
		route = append(route, topo.SwitchByID[int(gNode.ID())])
	}
	return route
}
