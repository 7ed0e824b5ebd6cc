package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

func TestTrialPoolRunsTrials(t *testing.T) {
	pool := NewTrialPool(4, 10)

	for i := 0; i < 10; i++ {
		err := pool.Submit(TrialTask{
			Trial:  i,
			Config: reconcile.Config{Agents: 20, Byzantine: 6, Fanout: 5, Seed: int64(i)},
		})
		require.NoError(t, err)
	}

	seen := make(map[int]bool)
	for i := 0; i < 10; i++ {
		out := <-pool.Results()
		require.NoError(t, out.Err)
		assert.False(t, seen[out.Trial], "trial %d reported twice", out.Trial)
		seen[out.Trial] = true
		assert.Equal(t, 20, out.Stats.Agents)
		assert.Positive(t, out.Stats.Rounds)
	}
	pool.Shutdown()

	stats := pool.Stats()
	assert.EqualValues(t, 10, stats.Completed)
	assert.EqualValues(t, 0, stats.Failed)
}

func TestTrialPoolRejectedConfig(t *testing.T) {
	pool := NewTrialPool(1, 1)

	require.NoError(t, pool.Submit(TrialTask{
		Trial:  0,
		Config: reconcile.Config{Agents: 10, Byzantine: 4, Fanout: 3},
	}))

	out := <-pool.Results()
	assert.ErrorIs(t, out.Err, reconcile.ErrByzantineBoundBroken)
	pool.Shutdown()

	assert.EqualValues(t, 1, pool.Stats().Failed)
}

func TestTrialPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewTrialPool(1, 1)
	pool.Shutdown()

	err := pool.Submit(TrialTask{Config: reconcile.Config{Agents: 10, Fanout: 3}})
	assert.Error(t, err)
}
