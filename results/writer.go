package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/experiment"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/recovery"
)

// File names within the output directory, matching the evaluation's layout.
const (
	ConvergenceFile = "mv_did_convergence.json"
	TrialsArrowFile = "mv_did_trials.arrow"
	GasCostsFile    = "sh_did_gas_costs.json"
	LatencyFile     = "sh_did_latency.json"
	ComparisonFile  = "baseline_comparison.json"
	SummaryFile     = "summary.json"
)

// Summary is the high-level index written alongside the result files.
type Summary struct {
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Experiments []string  `json:"experiments_completed"`
}

// Writer persists experiment output to a directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// WriteSweep persists a reconciliation sweep: the aggregated JSON plus an
// Arrow IPC file of every per-trial record for columnar analysis.
func (w *Writer) WriteSweep(res *experiment.Result) error {
	if err := w.writeJSON(ConvergenceFile, res); err != nil {
		return err
	}

	var trials []reconcile.Stats
	for _, cfg := range res.Configs {
		trials = append(trials, cfg.TrialResults...)
	}
	if len(trials) == 0 {
		return nil
	}

	record, err := NewConverter().TrialsToRecord(trials)
	if err != nil {
		return err
	}
	defer record.Release()

	data, err := SerializeToIPC(record)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.dir, TrialsArrowFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", TrialsArrowFile, err)
	}
	return nil
}

// WriteGasCosts persists the gas-cost analysis.
func (w *Writer) WriteGasCosts(res []recovery.GasCostResult) error {
	return w.writeJSON(GasCostsFile, res)
}

// WriteLatency persists the latency analysis.
func (w *Writer) WriteLatency(res []recovery.LatencyResult) error {
	return w.writeJSON(LatencyFile, res)
}

// WriteComparison persists the baseline comparison.
func (w *Writer) WriteComparison(cmp recovery.Comparison) error {
	return w.writeJSON(ComparisonFile, cmp)
}

// WriteSummary persists the run summary index.
func (w *Writer) WriteSummary(s Summary) error {
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now()
	}
	return w.writeJSON(SummaryFile, s)
}
