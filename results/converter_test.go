package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

func sampleTrials() []reconcile.Stats {
	round := 7
	return []reconcile.Stats{
		{
			Agents: 20, Byzantine: 6, Fanout: 5, Rounds: 7,
			Converged: true, ConvergenceRound: &round,
			TotalMessages: 700, AuthorityQueries: 42,
			AvgMessagesPerAgent: 35, AvgQueriesPerAgent: 2.1,
			HonestAgents: 14, ByzantineAgents: 6,
		},
		{
			Agents: 30, Byzantine: 0, Fanout: 5, Rounds: 50,
			Converged:     false,
			TotalMessages: 7500, AuthorityQueries: 12,
			AvgMessagesPerAgent: 250, AvgQueriesPerAgent: 0.4,
			HonestAgents: 30,
		},
	}
}

func TestConverterRoundTrip(t *testing.T) {
	c := NewConverter()
	trials := sampleTrials()

	record, err := c.TrialsToRecord(trials)
	require.NoError(t, err)
	defer record.Release()

	assert.EqualValues(t, 2, record.NumRows())
	require.NoError(t, ValidateSchema(record, TrialSchema()))

	back, err := c.RecordToTrials(record)
	require.NoError(t, err)
	assert.Equal(t, trials, back)
}

func TestConverterEmpty(t *testing.T) {
	_, err := NewConverter().TrialsToRecord(nil)
	assert.Error(t, err)
}

func TestConverterNullConvergenceRound(t *testing.T) {
	c := NewConverter()

	record, err := c.TrialsToRecord([]reconcile.Stats{{Agents: 10, Fanout: 3, Rounds: 50}})
	require.NoError(t, err)
	defer record.Release()

	back, err := c.RecordToTrials(record)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Nil(t, back[0].ConvergenceRound)
	assert.False(t, back[0].Converged)
}

func TestIPCRoundTrip(t *testing.T) {
	c := NewConverter()

	record, err := c.TrialsToRecord(sampleTrials())
	require.NoError(t, err)
	defer record.Release()

	data, err := SerializeToIPC(record)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	restored, err := DeserializeFromIPC(data)
	require.NoError(t, err)
	defer restored.Release()

	back, err := c.RecordToTrials(restored)
	require.NoError(t, err)
	assert.Equal(t, sampleTrials(), back)
}

func TestDeserializeGarbage(t *testing.T) {
	_, err := DeserializeFromIPC([]byte("not arrow data"))
	assert.Error(t, err)
}
