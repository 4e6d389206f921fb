package netlist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverOf_CellDriver(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	d, err := g.DriverOf("wptr_full", "wfull_val")
	require.NoError(t, err)
	assert.False(t, d.Boundary)
	assert.Equal(t, "cmp1", d.Cell)
	assert.Equal(t, "$eq", d.CellType)
	assert.Equal(t, "Y", d.OutputPort)
	require.Len(t, d.Inputs, 2)
	assert.Equal(t, PortConn{Port: "A", Signals: []string{"wgraynext"}}, d.Inputs[0])
	assert.Equal(t, PortConn{Port: "B", Signals: []string{"wq2_rptr"}}, d.Inputs[1])
	assert.Empty(t, d.Conflicts)
}

func TestDriverOf_InputPortIsBoundary(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	d, err := g.DriverOf("wptr_full", "winc")
	require.NoError(t, err)
	assert.True(t, d.Boundary, "input ports are a valid terminal, not an error")
	assert.Equal(t, "input_port", d.BoundaryKind)
	assert.Empty(t, d.Cell)
}

func TestDriverOf_SignalNotFound(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	_, err := g.DriverOf("wptr_full", "no_such_net")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestBackwardTrace_FullFlagCone(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	tr, err := g.BackwardTrace("wptr_full", "wfull_val", 1)
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 1)
	assert.False(t, tr.Truncated)

	node := tr.Nodes[0]
	assert.Equal(t, "cmp1", node.Cell)
	assert.Equal(t, 0, node.Depth)
	assert.Equal(t, []string{"wgraynext", "wq2_rptr"}, node.InputSignals,
		"both comparator operands, in declared port order")
}

func TestBackwardTrace_DepthZeroIsImmediateDriverOnly(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	tr, err := g.BackwardTrace("wptr_full", "winc_gated", 0)
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 1)
	assert.Equal(t, "gate1", tr.Nodes[0].Cell)
	assert.True(t, tr.Truncated, "unexplored fan-in remains past the depth limit")
}

func TestBackwardTrace_MultiLevel(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	tr, err := g.BackwardTrace("wptr_full", "winc_gated", 3)
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 2)
	assert.Equal(t, "gate1", tr.Nodes[0].Cell)
	assert.Equal(t, 0, tr.Nodes[0].Depth)
	assert.Equal(t, "cmp1", tr.Nodes[1].Cell)
	assert.Equal(t, 1, tr.Nodes[1].Depth)
	assert.False(t, tr.Truncated)
}

func TestBackwardTrace_Deterministic(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	first, err := g.BackwardTrace("wptr_full", "winc_gated", 3)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := g.BackwardTrace("wptr_full", "winc_gated", 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBackwardTrace_StateElementIsCausalBoundary(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	tr, err := g.BackwardTrace("wptr_full", "wfull", 10)
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 1, "trace stops at the register by default")

	node := tr.Nodes[0]
	assert.Equal(t, "wfull_reg", node.Cell)
	assert.True(t, node.StateHolding)
	assert.Equal(t, []string{"clk", "rst_n", "wfull_val"}, node.InputSignals,
		"the register's inputs stay visible for one hop")
}

func TestBackwardTrace_MultiCycleRerootsAtDataInput(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	tr, err := g.BackwardTrace("wptr_full", "wfull", 10, WithMultiCycle())
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 2)
	assert.Equal(t, "wfull_reg", tr.Nodes[0].Cell)
	assert.Equal(t, "cmp1", tr.Nodes[1].Cell)
	assert.Equal(t, 0, tr.Nodes[1].Depth, "data input restarts as a fresh root")
}

func TestBackwardTrace_CombinationalFeedbackTerminates(t *testing.T) {
	doc := `{
	  "modules": {
	    "latchloop": {
	      "ports": {},
	      "cells": {
	        "inv1": {
	          "type": "$not",
	          "port_directions": {"A": "input", "Y": "output"},
	          "connections": {"A": [10], "Y": [11]}
	        },
	        "inv2": {
	          "type": "$not",
	          "port_directions": {"A": "input", "Y": "output"},
	          "connections": {"A": [11], "Y": [10]}
	        }
	      },
	      "netnames": {"q": {"bits": [10]}, "qb": {"bits": [11]}}
	    }
	  }
	}`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)

	tr, err := g.BackwardTrace("latchloop", "q", 100)
	require.NoError(t, err, "feedback must terminate, never loop")
	assert.True(t, tr.Truncated, "cycle-guard truncation is marked, not an error")
	require.Len(t, tr.Nodes, 2)
	assert.Equal(t, "inv2", tr.Nodes[0].Cell)
	assert.Equal(t, "inv1", tr.Nodes[1].Cell)
}

func TestBackwardTrace_MultipleDriverConflictFlagged(t *testing.T) {
	doc := `{
	  "modules": {
	    "contended": {
	      "ports": {"a": {"direction": "input", "bits": [2]}},
	      "cells": {
	        "drv_b": {
	          "type": "$or",
	          "port_directions": {"A": "input", "B": "input", "Y": "output"},
	          "connections": {"A": [2], "B": [2], "Y": [10]}
	        },
	        "drv_a": {
	          "type": "$and",
	          "port_directions": {"A": "input", "B": "input", "Y": "output"},
	          "connections": {"A": [2], "B": [2], "Y": [10]}
	        }
	      },
	      "netnames": {"a": {"bits": [2]}, "n": {"bits": [10]}}
	    }
	  }
	}`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)

	tr, err := g.BackwardTrace("contended", "n", 2)
	require.NoError(t, err)
	require.Len(t, tr.Nodes, 1)
	assert.Equal(t, []string{"drv_a", "drv_b"}, tr.Nodes[0].Conflicts,
		"both drivers surface; neither is silently picked")
	assert.Equal(t, "drv_a", tr.Nodes[0].Cell, "deterministic primary for expansion")
}

func TestFanIn_FlattensAndDedupes(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	fanIn, err := g.FanIn("wptr_full", "winc_gated", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"wfull_val", "wgraynext", "winc", "wq2_rptr"}, fanIn)
}

func TestBackwardTrace_ConcurrentCallsIndependent(t *testing.T) {
	g := mustParseNetlist(t, fifoNetlist)

	want, err := g.BackwardTrace("wptr_full", "winc_gated", 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := g.BackwardTrace("wptr_full", "winc_gated", 3)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
