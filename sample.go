package fattree

// sample.go estimates hop-count statistics by drawing random pairs of
// assigned compute nodes and resolving each pair's path.  This is
// static structural analysis of the built graph, useful for judging
// traffic locality assumptions, and involves no traffic simulation.

import (
	"github.com/iti/rngstream"
	"gonum.org/v1/gonum/stat"
)

// HopSample summarizes the path lengths observed over sampled node pairs
type HopSample struct {
	Trials      int         // pairs actually drawn
	MeanHops    float64     // mean switches per path
	StdDevHops  float64     // corrected sample standard deviation
	CountByHops map[int]int // histogram over path length, keys 1, 3, 5
}

// SampleHopCounts draws trials random ordered pairs of distinct
// assigned nodes from the given RNG stream and resolves each with the
// representative path resolver.  A nil rng draws a fresh stream.  Fewer
// than two assigned nodes, or a non-positive trial count, yields an
// empty sample.
func (topo *Topology) SampleHopCounts(trials int, rng *rngstream.RngStream) HopSample {
	topo.mu.RLock()
	defer topo.mu.RUnlock()

	hs := HopSample{CountByHops: make(map[int]int)}

	numAssigned := len(topo.assigned)
	if numAssigned < 2 || trials <= 0 {
		return hs
	}

	if rng == nil {
		rng = rngstream.New("hopsample")
	}
	lengths := make([]float64, 0, trials)

	for idx := 0; idx < trials; idx++ {
		srcIdx := int(rng.RandU01() * float64(numAssigned))
		if srcIdx == numAssigned {
			srcIdx = numAssigned - 1
		}

		dstIdx := int(rng.RandU01() * float64(numAssigned))
		if dstIdx == numAssigned {
			dstIdx = numAssigned - 1
		}
		// force the pair to be distinct
		if dstIdx == srcIdx {
			dstIdx = (dstIdx + 1) % numAssigned
		}

		hops := len(topo.findPath(topo.assigned[srcIdx], topo.assigned[dstIdx]))
		lengths = append(lengths, float64(hops))
		hs.CountByHops[hops] += 1
	}

	hs.Trials = len(lengths)
	hs.MeanHops = stat.Mean(lengths, nil)
	hs.StdDevHops = stat.StdDev(lengths, nil)

	return hs
}
