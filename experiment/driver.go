// Package experiment sweeps network size and Byzantine ratio over the
// reconciliation protocol, running many independent trials per configuration
// and aggregating convergence and overhead statistics.
package experiment

import (
	"errors"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

// ErrNoConfigurations means the sweep parameters produced nothing to run.
var ErrNoConfigurations = errors.New("sweep contains no sizes or ratios")

// Observer receives per-trial notifications during a sweep. Implementations
// must be safe for concurrent use; the metrics layer implements this.
type Observer interface {
	TrialStarted()
	TrialFinished(stats reconcile.Stats)
}

// Sweep describes a full experimental evaluation: the cross product of
// network sizes and Byzantine ratios, a fixed trial count per configuration,
// and a single top-level seed from which every trial seed derives.
type Sweep struct {
	// Sizes lists the network sizes to test.
	Sizes []int
	// Ratios lists the Byzantine fractions to test (e.g. 0, 0.1, 0.2, 0.3).
	// Per configuration f = floor(n * ratio); configurations violating
	// f < n/3 are skipped and emit no result record.
	Ratios []float64
	// Fanout is the per-agent fanout used for every configuration.
	Fanout int
	// Trials is the number of independent trials per configuration.
	Trials int
	// MaxRounds is the per-trial round budget (0 means the default).
	MaxRounds int
	// Subject is the DID under reconciliation ("" means the default).
	Subject string
	// Seed fixes the sweep: trial seeds are drawn from it in deterministic
	// order before any trial is dispatched, so results do not depend on
	// worker scheduling.
	Seed int64
	// Workers bounds trial parallelism (0 means GOMAXPROCS).
	Workers int

	// Observer, when set, is notified per trial.
	Observer Observer
	// Log receives sweep progress. Defaults to a no-op logger.
	Log zerolog.Logger
}

// ConfigResult aggregates one (n, ratio) configuration.
type ConfigResult struct {
	N               int     `json:"n"`
	F               int     `json:"f"`
	Ratio           float64 `json:"f_ratio"`
	Fanout          int     `json:"fanout"`
	Trials          int     `json:"trials"`
	ConvergenceRate float64 `json:"convergence_rate"`
	// AvgConvergenceRound is conditioned on converged trials and absent when
	// no trial converged within the budget.
	AvgConvergenceRound *float64          `json:"avg_convergence_round,omitempty"`
	AvgTotalMessages    float64           `json:"avg_total_messages"`
	AvgAuthorityQueries float64           `json:"avg_ledger_queries"`
	TrialResults        []reconcile.Stats `json:"trial_results"`
}

// Result is the output of a whole sweep.
type Result struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed_ns"`
	Configs   []ConfigResult `json:"results"`
}

// Run executes the sweep and returns the aggregated results.
func (s Sweep) Run() (*Result, error) {
	if len(s.Sizes) == 0 || len(s.Ratios) == 0 {
		return nil, ErrNoConfigurations
	}
	if s.Trials <= 0 {
		s.Trials = 10
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	seeds := rand.New(rand.NewSource(s.Seed))

	for _, n := range s.Sizes {
		for _, ratio := range s.Ratios {
			f := int(float64(n) * ratio)
			cfg := reconcile.Config{
				Agents:    n,
				Byzantine: f,
				Fanout:    s.Fanout,
				Subject:   s.Subject,
				MaxRounds: s.MaxRounds,
			}
			if err := cfg.Validate(); err != nil {
				s.Log.Warn().Int("n", n).Int("f", f).Float64("ratio", ratio).
					Err(err).Msg("skipping configuration")
				continue
			}

			s.Log.Info().Int("n", n).Int("f", f).Float64("ratio", ratio).
				Int("trials", s.Trials).Msg("running configuration")

			trials := s.runConfiguration(cfg, seeds, workers)
			result.Configs = append(result.Configs, aggregate(cfg, ratio, trials))
		}
	}

	result.Elapsed = time.Since(result.StartedAt)
	return result, nil
}

// runConfiguration runs s.Trials independent trials of one configuration
// across the pool. Seeds are drawn before dispatch to keep the sweep
// deterministic under parallel execution.
func (s Sweep) runConfiguration(cfg reconcile.Config, seeds *rand.Rand, workers int) []reconcile.Stats {
	pool := NewTrialPool(workers, s.Trials)

	for trial := 0; trial < s.Trials; trial++ {
		trialCfg := cfg
		trialCfg.Seed = seeds.Int63()
		if s.Observer != nil {
			s.Observer.TrialStarted()
		}
		_ = pool.Submit(TrialTask{Trial: trial, Config: trialCfg})
	}

	outcomes := make([]TrialOutcome, 0, s.Trials)
	for len(outcomes) < s.Trials {
		outcomes = append(outcomes, <-pool.Results())
	}
	pool.Shutdown()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Trial < outcomes[j].Trial })

	stats := make([]reconcile.Stats, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			// Validate already passed; a per-trial rejection cannot happen.
			s.Log.Error().Err(o.Err).Int("trial", o.Trial).Msg("trial rejected")
			continue
		}
		if s.Observer != nil {
			s.Observer.TrialFinished(o.Stats)
		}
		stats = append(stats, o.Stats)
	}
	return stats
}

// aggregate computes the per-configuration summary. Trials that never
// converged contribute to message and query means but not to the mean
// convergence round; with zero converged trials that mean is absent.
func aggregate(cfg reconcile.Config, ratio float64, trials []reconcile.Stats) ConfigResult {
	r := ConfigResult{
		N:            cfg.Agents,
		F:            cfg.Byzantine,
		Ratio:        ratio,
		Fanout:       cfg.Fanout,
		Trials:       len(trials),
		TrialResults: trials,
	}
	if len(trials) == 0 {
		return r
	}

	converged := 0
	roundSum := 0
	var msgSum, querySum float64
	for _, t := range trials {
		if t.Converged {
			converged++
			roundSum += *t.ConvergenceRound
		}
		msgSum += float64(t.TotalMessages)
		querySum += float64(t.AuthorityQueries)
	}

	r.ConvergenceRate = float64(converged) / float64(len(trials))
	r.AvgTotalMessages = msgSum / float64(len(trials))
	r.AvgAuthorityQueries = querySum / float64(len(trials))
	if converged > 0 {
		mean := float64(roundSum) / float64(converged)
		r.AvgConvergenceRound = &mean
	}
	return r
}
