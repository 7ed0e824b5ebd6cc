// Package results persists experiment output for downstream reporting: JSON
// files mirroring the evaluation's result shapes, and Arrow record batches
// for columnar handoff to the plotting side.
package results

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// TrialSchema returns the Arrow schema for one per-trial reconciliation
// record.
//
// Fields:
//   - n_agents: int64 - Network size
//   - f_byzantine: int64 - Byzantine count
//   - fanout: int64 - Peers contacted per agent per round
//   - rounds: int64 - Rounds executed
//   - converged: bool - Whether all honest agents reached ground truth
//   - convergence_round: int64 (nullable) - First converged round, null when
//     the trial never converged
//   - total_messages: int64 - Messages emitted across the session
//   - total_authority_queries: int64 - Ledger queries across the session
//   - avg_messages_per_agent: float64
//   - avg_queries_per_agent: float64
func TrialSchema() *arrow.Schema {
	return arrow.NewSchema(
		[]arrow.Field{
			{Name: "n_agents", Type: arrow.PrimitiveTypes.Int64},
			{Name: "f_byzantine", Type: arrow.PrimitiveTypes.Int64},
			{Name: "fanout", Type: arrow.PrimitiveTypes.Int64},
			{Name: "rounds", Type: arrow.PrimitiveTypes.Int64},
			{Name: "converged", Type: arrow.FixedWidthTypes.Boolean},
			{Name: "convergence_round", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
			{Name: "total_messages", Type: arrow.PrimitiveTypes.Int64},
			{Name: "total_authority_queries", Type: arrow.PrimitiveTypes.Int64},
			{Name: "avg_messages_per_agent", Type: arrow.PrimitiveTypes.Float64},
			{Name: "avg_queries_per_agent", Type: arrow.PrimitiveTypes.Float64},
		},
		nil,
	)
}
