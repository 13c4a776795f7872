package fattree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nodeRange is a test helper producing node handles 0..n-1
func nodeRange(n int) []NodeID {
	nodes := make([]NodeID, n)
	for idx := range nodes {
		nodes[idx] = NodeID(idx)
	}
	return nodes
}

func TestBuildTierCounts(t *testing.T) {
	for _, k := range []int{2, 4, 6, 8} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			topo, err := BuildFatTree(k)
			require.NoError(t, err)

			assert.Equal(t, (k/2)*(k/2), len(topo.CoreSwitches))
			assert.Equal(t, k*(k/2), len(topo.AggSwitches))
			assert.Equal(t, k*(k/2), len(topo.EdgeSwitches))
			assert.Equal(t, k*k*k/4, topo.Capacity())

			// every switch is registered under a unique id and name
			total := len(topo.CoreSwitches) + len(topo.AggSwitches) + len(topo.EdgeSwitches)
			assert.Equal(t, total, len(topo.SwitchByID))
			assert.Equal(t, total, len(topo.SwitchByName))
		})
	}
}

func TestBuildRejectsInvalidK(t *testing.T) {
	for _, k := range []int{-4, -1, 0, 1, 3, 7} {
		topo, err := BuildFatTree(k)
		assert.Nil(t, topo, "k=%d must not produce a topology", k)
		require.Error(t, err)

		var ipe *InvalidParameterError
		require.ErrorAs(t, err, &ipe)
		assert.Equal(t, k, ipe.K)
	}
}

func TestBuildWiringInvariants(t *testing.T) {
	for _, k := range []int{4, 8} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			topo, err := BuildFatTree(k)
			require.NoError(t, err)
			half := k / 2

			for _, aggSwtch := range topo.AggSwitches {
				require.Len(t, aggSwtch.Uplinks, half)
				require.Len(t, aggSwtch.Downlinks, half)

				// uplinks reach distinct core switches in the group given
				// by the switch's position within its pod, ascending
				pos := aggSwtch.TierIndex - aggSwtch.SwitchPod*half
				for upIdx, coreSwtch := range aggSwtch.Uplinks {
					assert.Equal(t, CoreTier, coreSwtch.SwitchTier)
					assert.Equal(t, pos*half+upIdx, coreSwtch.TierIndex)
				}

				// downlinks stay inside the pod
				for _, edgeSwtch := range aggSwtch.Downlinks {
					assert.Equal(t, EdgeTier, edgeSwtch.SwitchTier)
					assert.Equal(t, aggSwtch.SwitchPod, edgeSwtch.SwitchPod)
				}
			}

			for _, edgeSwtch := range topo.EdgeSwitches {
				require.Len(t, edgeSwtch.Uplinks, half)
				for _, aggSwtch := range edgeSwtch.Uplinks {
					assert.Equal(t, AggTier, aggSwtch.SwitchTier)
					assert.Equal(t, edgeSwtch.SwitchPod, aggSwtch.SwitchPod)
				}
			}

			// each core switch serves one aggregation switch per pod
			for _, coreSwtch := range topo.CoreSwitches {
				assert.Len(t, coreSwtch.Downlinks, k)
				assert.Equal(t, -1, coreSwtch.SwitchPod)
			}

			// pod membership derived from identity numbering agrees with
			// the pod recorded at creation
			for _, swtch := range topo.AggSwitches {
				assert.Equal(t, swtch.SwitchPod, swtch.TierIndex/half)
			}
			for _, swtch := range topo.EdgeSwitches {
				assert.Equal(t, swtch.SwitchPod, swtch.TierIndex/half)
			}
		})
	}
}

func TestBuildIsReproducible(t *testing.T) {
	topoA, err := BuildFatTree(6)
	require.NoError(t, err)
	topoB, err := BuildFatTree(6)
	require.NoError(t, err)

	require.Equal(t, len(topoA.SwitchByID), len(topoB.SwitchByID))
	for id, swtchA := range topoA.SwitchByID {
		swtchB := topoB.SwitchByID[id]
		require.NotNil(t, swtchB)
		assert.Equal(t, swtchA.SwitchName, swtchB.SwitchName)
		assert.Equal(t, len(swtchA.Uplinks), len(swtchB.Uplinks))
		assert.Equal(t, len(swtchA.Downlinks), len(swtchB.Downlinks))
		for idx := range swtchA.Uplinks {
			assert.Equal(t, swtchA.Uplinks[idx].SwitchName, swtchB.Uplinks[idx].SwitchName)
		}
	}
}

func TestAssignFillsEdgeSwitchesInOrder(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	assigned, warn := topo.AssignNodes(nodeRange(5))
	assert.Equal(t, 5, assigned)
	assert.Empty(t, warn)

	// k/2 = 2 nodes per edge switch, pods filled in order
	assert.Equal(t, []NodeID{0, 1}, topo.NodesOnSwitch(topo.EdgeSwitches[0].SwitchID))
	assert.Equal(t, []NodeID{2, 3}, topo.NodesOnSwitch(topo.EdgeSwitches[1].SwitchID))
	assert.Equal(t, []NodeID{4}, topo.NodesOnSwitch(topo.EdgeSwitches[2].SwitchID))
	assert.Empty(t, topo.NodesOnSwitch(topo.EdgeSwitches[3].SwitchID))

	swtch, present := topo.EdgeSwitchOf(NodeID(4))
	require.True(t, present)
	assert.Equal(t, "edge.1.0", swtch.SwitchName)
}

func TestAssignClampsToCapacity(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	assigned, warn := topo.AssignNodes(nodeRange(20))
	assert.Equal(t, 16, assigned)
	assert.NotEmpty(t, warn)

	// the dropped nodes have no binding
	for idx := 16; idx < 20; idx++ {
		_, present := topo.EdgeSwitchOf(NodeID(idx))
		assert.False(t, present)
	}

	// every edge switch is exactly full
	for _, edgeSwtch := range topo.EdgeSwitches {
		assert.Len(t, edgeSwtch.EdgeNodes, 2)
	}

	nm := topo.Metrics()
	assert.Equal(t, 16, nm.ConnectedNodes)
	assert.InDelta(t, 100.0, nm.Utilization, 1e-9)
}

func TestAssignEmptyInputWarns(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	assigned, warn := topo.AssignNodes(nil)
	assert.Zero(t, assigned)
	assert.NotEmpty(t, warn)
	assert.Zero(t, topo.Metrics().ConnectedNodes)
}

func TestAssignReplacesPriorAssignment(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	_, _ = topo.AssignNodes(nodeRange(8))

	replacement := []NodeID{100, 101, 102}
	assigned, warn := topo.AssignNodes(replacement)
	assert.Equal(t, 3, assigned)
	assert.Empty(t, warn)

	// the earlier binding is gone entirely
	for idx := 0; idx < 8; idx++ {
		_, present := topo.EdgeSwitchOf(NodeID(idx))
		assert.False(t, present)
	}
	assert.Equal(t, replacement, topo.AssignedNodes())
	assert.Equal(t, 3, topo.Metrics().ConnectedNodes)
}

func TestAssignUtilization(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	_, _ = topo.AssignNodes(nodeRange(8))
	assert.InDelta(t, 50.0, topo.Metrics().Utilization, 1e-9)
}
