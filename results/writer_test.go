package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/experiment"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/recovery"
)

func TestWriterWriteSweep(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "out"))
	require.NoError(t, err)

	res, err := experiment.Sweep{
		Sizes:  []int{12},
		Ratios: []float64{0, 0.25},
		Fanout: 3,
		Trials: 3,
		Seed:   5,
	}.Run()
	require.NoError(t, err)

	require.NoError(t, w.WriteSweep(res))

	raw, err := os.ReadFile(filepath.Join(w.Dir(), ConvergenceFile))
	require.NoError(t, err)
	var decoded experiment.Result
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded.Configs, 2)
	assert.Equal(t, res.RunID, decoded.RunID)

	ipcData, err := os.ReadFile(filepath.Join(w.Dir(), TrialsArrowFile))
	require.NoError(t, err)
	record, err := DeserializeFromIPC(ipcData)
	require.NoError(t, err)
	defer record.Release()
	assert.EqualValues(t, 6, record.NumRows(), "2 configs x 3 trials")
}

func TestWriterRecoveryOutput(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	m := recovery.NewModel(1)
	gas, err := m.GasCostAnalysis([]int{1, 2}, 3)
	require.NoError(t, err)
	latency, err := m.LatencyAnalysis(7, 2, []recovery.Behavior{recovery.BehaviorNone}, 3)
	require.NoError(t, err)
	cmp, err := m.CompareWithBaselines()
	require.NoError(t, err)

	require.NoError(t, w.WriteGasCosts(gas))
	require.NoError(t, w.WriteLatency(latency))
	require.NoError(t, w.WriteComparison(cmp))
	require.NoError(t, w.WriteSummary(Summary{
		RunID:       "test",
		Experiments: []string{"gas_costs", "latency", "baselines"},
	}))

	for _, name := range []string{GasCostsFile, LatencyFile, ComparisonFile, SummaryFile} {
		data, err := os.ReadFile(filepath.Join(w.Dir(), name))
		require.NoError(t, err, name)
		assert.True(t, json.Valid(data), "%s must hold valid JSON", name)
	}
}
