package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/experiment"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

func TestServerHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer().Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServerResultsBeforeSweep(t *testing.T) {
	srv := httptest.NewServer(NewServer().Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/results")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)
}

func TestServerResultsAfterSweep(t *testing.T) {
	server := NewServer()
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	res, err := experiment.Sweep{
		Sizes:    []int{12},
		Ratios:   []float64{0.25},
		Fanout:   3,
		Trials:   2,
		Seed:     1,
		Observer: server.Metrics(),
	}.Run()
	require.NoError(t, err)
	server.SetResult(res)

	resp, err := srv.Client().Get(srv.URL + "/results")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	var decoded experiment.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, res.RunID, decoded.RunID)
	require.Len(t, decoded.Configs, 1)
	assert.Len(t, decoded.Configs[0].TrialResults, 2)
}

func TestServerMetricsEndpoint(t *testing.T) {
	server := NewServer()
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	round := 3
	server.Metrics().TrialStarted()
	server.Metrics().TrialFinished(reconcile.Stats{
		Converged:        true,
		ConvergenceRound: &round,
		TotalMessages:    300,
		AuthorityQueries: 12,
	})

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.True(t, strings.Contains(text, "bftsim_trials_started_total 1"), "started counter missing")
	assert.True(t, strings.Contains(text, "bftsim_trials_converged_total 1"), "converged counter missing")
	assert.True(t, strings.Contains(text, "bftsim_authority_queries_total 12"), "query counter missing")
}
