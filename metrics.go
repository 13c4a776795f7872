package fattree

// metrics.go derives structural metrics from a built topology.  All the
// values are computed from counts and configured coefficients; nothing
// here measures traffic.

// NetworkMetrics is a snapshot of derived counts and planning estimates
// for a topology.  It is recomputed at build time, whenever nodes are
// assigned, and whenever the performance coefficients change.
type NetworkMetrics struct {
	K            int `json:"k" yaml:"k"`
	CoreSwitches int `json:"coreswitches" yaml:"coreswitches"`
	AggSwitches  int `json:"aggswitches" yaml:"aggswitches"`
	EdgeSwitches int `json:"edgeswitches" yaml:"edgeswitches"`

	ConnectedNodes int     `json:"connectednodes" yaml:"connectednodes"`
	MaxNodes       int     `json:"maxnodes" yaml:"maxnodes"`
	Utilization    float64 `json:"utilization" yaml:"utilization"` // percent of node capacity bound

	// bisection bandwidth of the full tree, (k/2)^2 links of the
	// configured capacity crossing the midpoint cut
	BisectionBandwidth float64 `json:"bisectionbandwidth" yaml:"bisectionbandwidth"`

	// equal-cost path counts are reported separately for the two traffic
	// classes rather than as one ambiguous number
	SamePodPaths  int `json:"samepodpaths" yaml:"samepodpaths"`   // k/2, between edge switches of one pod
	CrossPodPaths int `json:"crosspodpaths" yaml:"crosspodpaths"` // (k/2)^2, between pods

	// 1.0 for the canonical fully-wired tree; this is a structural
	// constant, not a measurement of a pruned deployment
	Oversubscription float64 `json:"oversubscription" yaml:"oversubscription"`

	EstimatedCost    float64 `json:"estimatedcost" yaml:"estimatedcost"` // cost units, linear in tier counts
	EstimatedPowerKW float64 `json:"estimatedpowerkw" yaml:"estimatedpowerkw"`
}

// computeMetrics derives the snapshot from structural counts and the
// installed coefficients.  Callers hold the topology lock.
func (topo *Topology) computeMetrics(connected int) NetworkMetrics {
	half := topo.K / 2

	nm := NetworkMetrics{
		K:              topo.K,
		CoreSwitches:   len(topo.CoreSwitches),
		AggSwitches:    len(topo.AggSwitches),
		EdgeSwitches:   len(topo.EdgeSwitches),
		ConnectedNodes: connected,
		MaxNodes:       MaxNodes(topo.K),
	}

	if nm.MaxNodes > 0 {
		nm.Utilization = float64(connected) * 100.0 / float64(nm.MaxNodes)
	}

	nm.BisectionBandwidth = float64(half*half) * topo.perf.LinkCapacity
	nm.SamePodPaths = half
	nm.CrossPodPaths = half * half
	nm.Oversubscription = 1.0

	nm.EstimatedCost = float64(nm.CoreSwitches)*topo.perf.CoreUnitCost +
		float64(nm.AggSwitches)*topo.perf.AggUnitCost +
		float64(nm.EdgeSwitches)*topo.perf.EdgeUnitCost

	nm.EstimatedPowerKW = float64(nm.CoreSwitches)*topo.perf.CorePowerKW +
		float64(nm.AggSwitches)*topo.perf.AggPowerKW +
		float64(nm.EdgeSwitches)*topo.perf.EdgePowerKW

	return nm
}

// Metrics returns the current snapshot
func (topo *Topology) Metrics() NetworkMetrics {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	return topo.metrics
}

// TheoreticalMetrics gives the closed-form planning numbers for a
// parameter k without building the topology, the kind of table used
// when comparing candidate network sizes.
type TheoreticalMetrics struct {
	K                 int     `json:"k" yaml:"k"`
	MaxNodes          int     `json:"maxnodes" yaml:"maxnodes"`
	TotalSwitches     int     `json:"totalswitches" yaml:"totalswitches"`
	BisectionUnits    float64 `json:"bisectionunits" yaml:"bisectionunits"` // bisection bandwidth in units of link capacity
	MaxEqualCostPaths int     `json:"maxequalcostpaths" yaml:"maxequalcostpaths"`
	DiameterHops      int     `json:"diameterhops" yaml:"diameterhops"` // switches on the longest node-to-node route
	NodesPerPod       int     `json:"nodesperpod" yaml:"nodesperpod"`
}

// Theoretical computes the planning numbers for parameter k.  The same
// validity rule applies as for BuildFatTree.
func Theoretical(k int) (TheoreticalMetrics, error) {
	if k <= 0 || k%2 != 0 {
		return TheoreticalMetrics{}, &InvalidParameterError{K: k}
	}
	half := k / 2

	return TheoreticalMetrics{
		K:                 k,
		MaxNodes:          MaxNodes(k),
		TotalSwitches:     CoreCount(k) + AggCount(k) + EdgeCount(k),
		BisectionUnits:    float64(half * half),
		MaxEqualCostPaths: half * half,
		DiameterHops:      5, // edge, agg, core, agg, edge on a cross-pod route
		NodesPerPod:       k * k / 4,
	}, nil
}
