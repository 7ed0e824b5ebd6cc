// Package recovery models the BFT-SH-DID self-healing recovery protocol as a
// Monte-Carlo sampler: per-phase latencies are drawn from configured
// distributions and gas costs follow a fixed per-signature contract model.
// There is no protocol loop here; the package exists to produce the gas and
// latency figures the evaluation compares against wallet-recovery baselines.
package recovery

import (
	"errors"
	"math/rand"
)

// Behavior is the adversarial pattern the Byzantine watchers follow during
// endorsement collection.
type Behavior string

const (
	// BehaviorNone means every watcher responds honestly.
	BehaviorNone Behavior = "none"
	// BehaviorDelay means Byzantine watchers sign but respond slowly.
	BehaviorDelay Behavior = "delay"
	// BehaviorRefuse means Byzantine watchers never sign; recovery fails
	// when the honest watchers alone cannot reach the quorum.
	BehaviorRefuse Behavior = "refuse"
)

// ErrWatcherBound rejects configurations without the n >= 3f+1 guarantee.
var ErrWatcherBound = errors.New("recovery requires watchers >= 3*byzantine+1")

// Range is a uniform sampling interval in seconds.
type Range struct {
	Min float64
	Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Phases holds the per-phase timing of one recovery, in seconds.
type Phases struct {
	Detection    float64 `json:"detection_time"`
	Proposal     float64 `json:"proposal_time"`
	Endorsement  float64 `json:"endorsement_time"`
	Commit       float64 `json:"commit_time"`
	Finalization float64 `json:"finalization_time"`
}

// Result is the measurement of a single recovery experiment. TotalLatency is
// zero when the recovery failed; Success is the authoritative flag.
type Result struct {
	QuorumSize   int      `json:"quorum_size"`
	Watchers     int      `json:"n_watchers"`
	Byzantine    int      `json:"f_byzantine"`
	GasUsed      int      `json:"gas_used"`
	TotalLatency float64  `json:"total_latency"`
	Phases       Phases   `json:"phases"`
	Success      bool     `json:"success"`
	Behavior     Behavior `json:"byzantine_behavior"`
}

// Model holds the gas constants and timing distributions of the recovery
// simulation, plus the run-scoped randomness source.
type Model struct {
	// Gas constants for the commitRecovery transaction.
	BaseGas         int
	SignatureGas    int // per ECDSA signature verified
	StorageWriteGas int // DID record update

	DetectionDelay   Range
	ProposalDelay    Range
	EndorseHonest    Range
	EndorseByzantine Range

	BlockTime    float64 // seconds per block
	FinalityTime float64 // average time to finality

	rng *rand.Rand
}

// NewModel creates a model with the contract and Ethereum timing defaults,
// seeded for deterministic replay.
func NewModel(seed int64) *Model {
	return &Model{
		BaseGas:          50000,
		SignatureGas:     6000,
		StorageWriteGas:  20000,
		DetectionDelay:   Range{0.1, 0.5},
		ProposalDelay:    Range{0.05, 0.2},
		EndorseHonest:    Range{0.1, 0.3},
		EndorseByzantine: Range{2.0, 10.0},
		BlockTime:        12.0,
		FinalityTime:     13 * 60,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// EstimateGas returns the gas cost of a commitRecovery carrying quorum
// signatures.
func (m *Model) EstimateGas(quorum int) int {
	return m.BaseGas + m.SignatureGas*quorum + m.StorageWriteGas
}

// endorsementTime samples the time to collect a quorum of endorsements.
// Responses arrive in parallel, so the collection time is the slowest member
// of the quorum. Returns ok=false when the quorum is unreachable.
func (m *Model) endorsementTime(watchers, byzantine, quorum int, behavior Behavior) (float64, bool) {
	honest := watchers - byzantine

	if behavior == BehaviorRefuse && honest < quorum {
		return 0, false
	}

	slowest := 0.0
	for i := 0; i < quorum; i++ {
		var t float64
		if i < honest {
			t = m.EndorseHonest.sample(m.rng)
		} else if behavior == BehaviorDelay {
			t = m.EndorseByzantine.sample(m.rng)
		} else {
			t = m.EndorseHonest.sample(m.rng)
		}
		if t > slowest {
			slowest = t
		}
	}
	return slowest, true
}

// RunRecovery runs one recovery experiment with a quorum of 2f+1.
func (m *Model) RunRecovery(watchers, byzantine int, behavior Behavior) (Result, error) {
	if watchers < 3*byzantine+1 {
		return Result{}, ErrWatcherBound
	}

	quorum := 2*byzantine + 1
	res := Result{
		QuorumSize: quorum,
		Watchers:   watchers,
		Byzantine:  byzantine,
		Behavior:   behavior,
	}

	detection := m.DetectionDelay.sample(m.rng)
	proposal := m.ProposalDelay.sample(m.rng)

	endorsement, ok := m.endorsementTime(watchers, byzantine, quorum, behavior)
	if !ok {
		return res, nil
	}

	commit := m.rng.Float64() * 2 * m.BlockTime
	finalization := m.FinalityTime + (m.rng.Float64()*120 - 60)

	res.Phases = Phases{
		Detection:    detection,
		Proposal:     proposal,
		Endorsement:  endorsement,
		Commit:       commit,
		Finalization: finalization,
	}
	res.TotalLatency = detection + proposal + endorsement + commit + finalization
	res.GasUsed = m.EstimateGas(quorum)
	res.Success = true
	return res, nil
}
