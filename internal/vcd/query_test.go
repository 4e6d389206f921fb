package vcd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAt_FullFlagTimeline(t *testing.T) {
	// wfull: 0 at t=0, 1 at t=325000.
	w := mustParse(t, fifoDump)

	v, err := w.ValueAt("wfull", 300000)
	require.NoError(t, err)
	assert.Equal(t, BitVector("0"), v)

	v, err = w.ValueAt("wfull", 325000)
	require.NoError(t, err)
	assert.Equal(t, BitVector("1"), v, "exact-match-at-boundary: change at t is visible at t")

	v, err = w.ValueAt("wfull", 400000)
	require.NoError(t, err)
	assert.Equal(t, BitVector("1"), v)
}

func TestValueAt_PersistsBetweenChanges(t *testing.T) {
	w := mustParse(t, fifoDump)

	// wptr changes at 0, 100000, 325000. No change in (100000, 325000).
	v1, err := w.ValueAt("wptr", 100001)
	require.NoError(t, err)
	v2, err := w.ValueAt("wptr", 324999)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, BitVector("0001"), v1)
}

func TestValueAt_BeforeFirstChangeIsUnknown(t *testing.T) {
	dump := `$var wire 4 ! late $end
$enddefinitions $end
#500
b1111 !
`
	w := mustParse(t, dump)

	v, err := w.ValueAt("late", 100)
	require.NoError(t, err)
	assert.Equal(t, BitVector("xxxx"), v, "declared initial value is all-unknown")
	assert.True(t, v.Unknown())
}

func TestValueAt_NotFound(t *testing.T) {
	w := mustParse(t, fifoDump)

	_, err := w.ValueAt("nonexistent_signal", 100)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "unknown names are a typed absence, never a default value")

	var nf *SignalNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nonexistent_signal", nf.Name)
}

func TestTransitionsIn_Window(t *testing.T) {
	w := mustParse(t, fifoDump)

	trs, err := w.TransitionsIn("winc", 100000, 400000)
	require.NoError(t, err)
	require.Len(t, trs, 2)
	assert.Equal(t, uint64(100000), trs[0].Time)
	assert.Equal(t, BitVector("1"), trs[0].Value)
	assert.Equal(t, uint64(400000), trs[1].Time, "window is inclusive at both ends")
	assert.Equal(t, BitVector("0"), trs[1].Value)
}

func TestTransitionsIn_EmptyWindowIsValid(t *testing.T) {
	w := mustParse(t, fifoDump)

	trs, err := w.TransitionsIn("wfull", 100001, 324999)
	require.NoError(t, err)
	assert.Empty(t, trs)
}

func TestTransitionsIn_InvalidWindow(t *testing.T) {
	w := mustParse(t, fifoDump)

	_, err := w.TransitionsIn("wfull", 200, 100)
	assert.Error(t, err)
}

func TestTransitionsIn_WidthOnEveryEntry(t *testing.T) {
	w := mustParse(t, fifoDump)

	trs, err := w.TransitionsIn("wdata", 0, 500000)
	require.NoError(t, err)
	require.NotEmpty(t, trs)
	for _, tr := range trs {
		assert.Equal(t, 8, tr.Width)
		assert.Len(t, string(tr.Value), 8, "values are normalized to the declared width")
	}
}

func TestFindSignals_Glob(t *testing.T) {
	w := mustParse(t, fifoDump)

	got, err := w.FindSignals("fifo_tb.dut.w*")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "fifo_tb.dut.wdata", got[0].Path, "results are sorted by path")
}

func TestFindSignals_Substring(t *testing.T) {
	w := mustParse(t, fifoDump)

	got, err := w.FindSignals("PTR")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "wptr", got[0].Name)
}

func TestFindSignals_BadGlob(t *testing.T) {
	w := mustParse(t, fifoDump)

	_, err := w.FindSignals("[")
	assert.Error(t, err)
}

func TestWaveform_ConcurrentQueries(t *testing.T) {
	w := mustParse(t, fifoDump)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v, err := w.ValueAt("wfull", uint64(n)*10000)
			assert.NoError(t, err)
			assert.NotEmpty(t, v)
			_, err = w.TransitionsIn("wdata", 0, uint64(n)*10000)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
