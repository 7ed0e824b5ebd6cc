// Stress test for the reconciliation simulator: runs back-to-back trials of
// a large network across concurrent workers and reports throughput.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
)

// StressConfig holds configuration for the stress test.
type StressConfig struct {
	Agents      int
	Byzantine   int
	Fanout      int
	Concurrency int
	Duration    time.Duration
	ReportFile  string
}

// StressResult holds the results of a stress test.
type StressResult struct {
	TotalTrials   int64         `json:"total_trials"`
	Converged     int64         `json:"converged"`
	TotalRounds   int64         `json:"total_rounds"`
	TotalMessages int64         `json:"total_messages"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	TrialsPerSec  float64       `json:"trials_per_sec"`
	RoundsPerSec  float64       `json:"rounds_per_sec"`
}

func main() {
	config := parseFlags()

	fmt.Println("=== BFT-MV-DID Simulator Stress Test ===")
	fmt.Printf("Network: n=%d f=%d fanout=%d\n", config.Agents, config.Byzantine, config.Fanout)
	fmt.Printf("Concurrency: %d workers\n", config.Concurrency)
	fmt.Printf("Duration: %v\n", config.Duration)
	fmt.Println()

	result := runStress(config)
	printResults(result)

	if config.ReportFile != "" {
		saveReport(config, result)
	}
}

func parseFlags() StressConfig {
	config := StressConfig{}

	flag.IntVar(&config.Agents, "n", 100, "Total number of agents")
	flag.IntVar(&config.Byzantine, "f", 30, "Number of Byzantine agents")
	flag.IntVar(&config.Fanout, "fanout", 8, "Peers contacted per agent per round")
	flag.IntVar(&config.Concurrency, "c", 8, "Number of concurrent workers")
	flag.DurationVar(&config.Duration, "d", 30*time.Second, "Duration of test")
	flag.StringVar(&config.ReportFile, "o", "", "Output report file (JSON)")

	flag.Parse()
	return config
}

func runStress(config StressConfig) StressResult {
	var (
		trials    int64
		converged int64
		rounds    int64
		messages  int64
		seed      int64
	)

	deadline := time.Now().Add(config.Duration)
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < config.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				network, err := reconcile.NewNetwork(reconcile.Config{
					Agents:    config.Agents,
					Byzantine: config.Byzantine,
					Fanout:    config.Fanout,
					Seed:      atomic.AddInt64(&seed, 1),
				})
				if err != nil {
					log.Fatalf("invalid stress configuration: %v", err)
				}

				stats := network.RunUntilConvergence()
				atomic.AddInt64(&trials, 1)
				atomic.AddInt64(&rounds, int64(stats.Rounds))
				atomic.AddInt64(&messages, int64(stats.TotalMessages))
				if stats.Converged {
					atomic.AddInt64(&converged, 1)
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	return StressResult{
		TotalTrials:   trials,
		Converged:     converged,
		TotalRounds:   rounds,
		TotalMessages: messages,
		Elapsed:       elapsed,
		TrialsPerSec:  float64(trials) / elapsed.Seconds(),
		RoundsPerSec:  float64(rounds) / elapsed.Seconds(),
	}
}

func printResults(result StressResult) {
	fmt.Println("=== Results ===")
	fmt.Printf("Trials: %d (%d converged)\n", result.TotalTrials, result.Converged)
	fmt.Printf("Rounds simulated: %d\n", result.TotalRounds)
	fmt.Printf("Messages simulated: %d\n", result.TotalMessages)
	fmt.Printf("Elapsed: %v\n", result.Elapsed)
	fmt.Printf("Throughput: %.1f trials/sec, %.1f rounds/sec\n", result.TrialsPerSec, result.RoundsPerSec)
}

func saveReport(config StressConfig, result StressResult) {
	report := map[string]interface{}{
		"config": config,
		"result": result,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal report: %v", err)
		return
	}
	if err := os.WriteFile(config.ReportFile, data, 0o644); err != nil {
		log.Printf("Failed to write report: %v", err)
		return
	}
	fmt.Printf("Report saved to %s\n", config.ReportFile)
}
