package fattree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleHopCounts(t *testing.T) {
	topo := buildAssigned(t, 4)

	hs := topo.SampleHopCounts(500, nil)
	assert.Equal(t, 500, hs.Trials)

	// only the three routing cases can appear
	total := 0
	for hops, count := range hs.CountByHops {
		assert.Contains(t, []int{1, 3, 5}, hops)
		total += count
	}
	assert.Equal(t, 500, total)
	assert.GreaterOrEqual(t, hs.MeanHops, 1.0)
	assert.LessOrEqual(t, hs.MeanHops, 5.0)

	// 16 nodes spread over 4 pods, so most sampled pairs cross pods
	assert.Greater(t, hs.CountByHops[5], 0)
}

func TestSampleHopCountsDegenerateInputs(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	// no assignment yet
	hs := topo.SampleHopCounts(100, nil)
	assert.Zero(t, hs.Trials)
	assert.Empty(t, hs.CountByHops)

	// a single assigned node offers no pairs
	_, _ = topo.AssignNodes([]NodeID{7})
	hs = topo.SampleHopCounts(100, nil)
	assert.Zero(t, hs.Trials)

	// non-positive trial count
	_, _ = topo.AssignNodes(nodeRange(8))
	hs = topo.SampleHopCounts(0, nil)
	assert.Zero(t, hs.Trials)
}
