package results

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

// Converter handles trial-record to Arrow conversion.
type Converter struct {
	allocator memory.Allocator
	schema    *arrow.Schema
}

// NewConverter creates a Converter with the default memory allocator.
func NewConverter() *Converter {
	return &Converter{
		allocator: memory.DefaultAllocator,
		schema:    TrialSchema(),
	}
}

// TrialsToRecord converts per-trial statistics to an Arrow RecordBatch.
func (c *Converter) TrialsToRecord(trials []reconcile.Stats) (arrow.Record, error) {
	if len(trials) == 0 {
		return nil, errors.New("empty trials slice")
	}

	builder := array.NewRecordBuilder(c.allocator, c.schema)
	defer builder.Release()

	agents := builder.Field(0).(*array.Int64Builder)
	byzantine := builder.Field(1).(*array.Int64Builder)
	fanout := builder.Field(2).(*array.Int64Builder)
	rounds := builder.Field(3).(*array.Int64Builder)
	converged := builder.Field(4).(*array.BooleanBuilder)
	convergenceRound := builder.Field(5).(*array.Int64Builder)
	totalMessages := builder.Field(6).(*array.Int64Builder)
	totalQueries := builder.Field(7).(*array.Int64Builder)
	avgMessages := builder.Field(8).(*array.Float64Builder)
	avgQueries := builder.Field(9).(*array.Float64Builder)

	for _, t := range trials {
		agents.Append(int64(t.Agents))
		byzantine.Append(int64(t.Byzantine))
		fanout.Append(int64(t.Fanout))
		rounds.Append(int64(t.Rounds))
		converged.Append(t.Converged)

		if t.ConvergenceRound != nil {
			convergenceRound.Append(int64(*t.ConvergenceRound))
		} else {
			convergenceRound.AppendNull()
		}

		totalMessages.Append(int64(t.TotalMessages))
		totalQueries.Append(int64(t.AuthorityQueries))
		avgMessages.Append(t.AvgMessagesPerAgent)
		avgQueries.Append(t.AvgQueriesPerAgent)
	}

	return builder.NewRecord(), nil
}

// RecordToTrials converts an Arrow RecordBatch back to per-trial statistics.
func (c *Converter) RecordToTrials(record arrow.Record) ([]reconcile.Stats, error) {
	if record == nil || record.NumRows() == 0 {
		return nil, nil
	}
	if err := ValidateSchema(record, c.schema); err != nil {
		return nil, err
	}

	agents := record.Column(0).(*array.Int64)
	byzantine := record.Column(1).(*array.Int64)
	fanout := record.Column(2).(*array.Int64)
	rounds := record.Column(3).(*array.Int64)
	converged := record.Column(4).(*array.Boolean)
	convergenceRound := record.Column(5).(*array.Int64)
	totalMessages := record.Column(6).(*array.Int64)
	totalQueries := record.Column(7).(*array.Int64)
	avgMessages := record.Column(8).(*array.Float64)
	avgQueries := record.Column(9).(*array.Float64)

	trials := make([]reconcile.Stats, record.NumRows())
	for i := 0; i < int(record.NumRows()); i++ {
		trials[i] = reconcile.Stats{
			Agents:              int(agents.Value(i)),
			Byzantine:           int(byzantine.Value(i)),
			Fanout:              int(fanout.Value(i)),
			Rounds:              int(rounds.Value(i)),
			Converged:           converged.Value(i),
			TotalMessages:       int(totalMessages.Value(i)),
			AuthorityQueries:    int(totalQueries.Value(i)),
			AvgMessagesPerAgent: avgMessages.Value(i),
			AvgQueriesPerAgent:  avgQueries.Value(i),
			HonestAgents:        int(agents.Value(i) - byzantine.Value(i)),
			ByzantineAgents:     int(byzantine.Value(i)),
		}
		if !convergenceRound.IsNull(i) {
			round := int(convergenceRound.Value(i))
			trials[i].ConvergenceRound = &round
		}
	}

	return trials, nil
}

// ValidateSchema checks that a record matches the expected schema.
func ValidateSchema(record arrow.Record, expected *arrow.Schema) error {
	if record == nil {
		return errors.New("record is nil")
	}

	actual := record.Schema()
	if actual.NumFields() != expected.NumFields() {
		return fmt.Errorf("field count mismatch: got %d, expected %d",
			actual.NumFields(), expected.NumFields())
	}

	for i := 0; i < actual.NumFields(); i++ {
		actualField := actual.Field(i)
		expectedField := expected.Field(i)

		if actualField.Name != expectedField.Name {
			return fmt.Errorf("field %d name mismatch: got %s, expected %s",
				i, actualField.Name, expectedField.Name)
		}
		if !arrow.TypeEqual(actualField.Type, expectedField.Type) {
			return fmt.Errorf("field %s type mismatch: got %s, expected %s",
				actualField.Name, actualField.Type, expectedField.Type)
		}
	}

	return nil
}
