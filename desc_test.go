package fattree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformAndReadBack(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)
	_, _ = topo.AssignNodes(nodeRange(6))

	td := topo.Transform("k4-testbed")
	assert.Equal(t, "k4-testbed", td.Name)
	assert.Equal(t, 4, td.K)
	require.Len(t, td.Cores, 4)
	require.Len(t, td.Aggs, 8)
	require.Len(t, td.Edges, 8)

	// adjacency survives as names in wiring order
	assert.Equal(t, []string{"agg.0.0", "agg.0.1"}, td.Edges[0].Uplinks)
	assert.Equal(t, []string{"core.0", "core.1"}, td.Aggs[0].Uplinks)
	assert.Equal(t, []int{0, 1}, td.Edges[0].Nodes)
	assert.Equal(t, "aggregation", td.Aggs[0].Tier)

	fileName := filepath.Join(t.TempDir(), "topo.yaml")
	require.NoError(t, td.WriteToFile(fileName))

	readBack, err := ReadTopoDesc(fileName, true, []byte{})
	require.NoError(t, err)
	assert.Equal(t, td, *readBack)
}

func TestReadPerfParamsFromBytes(t *testing.T) {
	dict := []byte(`
linkcapacity: 25.0
coreunitcost: 80.0
aggunitcost: 40.0
edgeunitcost: 25.0
corepowerkw: 6.5
aggpowerkw: 3.5
edgepowerkw: 2.5
`)
	pp, err := ReadPerfParams("", true, dict)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, pp.LinkCapacity, 1e-9)
	assert.InDelta(t, 80.0, pp.CoreUnitCost, 1e-9)
	assert.InDelta(t, 2.5, pp.EdgePowerKW, 1e-9)
}

func TestPerfParamsFileRoundTrip(t *testing.T) {
	pp := DefaultPerfParams()
	fileName := filepath.Join(t.TempDir(), "perf.json")
	require.NoError(t, pp.WriteToFile(fileName))

	readBack, err := ReadPerfParams(fileName, false, []byte{})
	require.NoError(t, err)
	assert.Equal(t, pp, *readBack)
}
