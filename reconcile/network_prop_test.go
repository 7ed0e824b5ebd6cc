package reconcile

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPropConservativeAdoption drives whole sessions with generated
// parameters and asserts the core safety invariants after every round.
func TestPropConservativeAdoption(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		agents := rapid.IntRange(4, 60).Draw(t, "agents")
		byzantine := rapid.IntRange(0, (agents-1)/3).Draw(t, "byzantine")
		fanout := rapid.IntRange(1, agents-1).Draw(t, "fanout")
		seed := rapid.Int64().Draw(t, "seed")
		rounds := rapid.IntRange(1, 8).Draw(t, "rounds")

		n, err := NewNetwork(Config{
			Agents:    agents,
			Byzantine: byzantine,
			Fanout:    fanout,
			Seed:      seed,
		})
		if err != nil {
			t.Fatalf("NewNetwork rejected a valid config: %v", err)
		}

		for r := 0; r < rounds; r++ {
			before := make(map[int]View, agents)
			for _, a := range n.Agents() {
				before[a.ID] = a.View
			}

			n.RunRound()

			for _, a := range n.Agents() {
				if a.IsByzantine() {
					if !a.View.Equal(before[a.ID]) {
						t.Fatalf("byzantine agent %d view altered", a.ID)
					}
					continue
				}
				if !a.View.Equal(before[a.ID]) && !a.View.Equal(n.Truth()) {
					t.Fatalf("honest agent %d adopted a fabricated view", a.ID)
				}
			}
		}

		stats := n.Stats()
		if want := fanout * agents * rounds; stats.TotalMessages != want {
			t.Fatalf("total messages = %d, want fanout*n*rounds = %d", stats.TotalMessages, want)
		}
	})
}

// TestPropByzantineTolerance checks the sanity bound: under f < n/3 and a
// reasonable fanout, convergence within the default budget is the norm.
func TestPropByzantineTolerance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-trial property in short mode")
	}

	for _, agents := range []int{20, 40, 80} {
		converged := 0
		trials := 20
		for trial := 0; trial < trials; trial++ {
			n, err := NewNetwork(Config{
				Agents:    agents,
				Byzantine: agents * 3 / 10,
				Fanout:    5,
				Seed:      int64(1000*agents + trial),
			})
			if err != nil {
				t.Fatalf("NewNetwork failed: %v", err)
			}
			if n.RunUntilConvergence().Converged {
				converged++
			}
		}
		if converged == 0 {
			t.Errorf("n=%d: convergence rate degraded to zero", agents)
		}
	}
}
