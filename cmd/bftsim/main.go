// Command bftsim runs the BFT-MV-DID reconciliation sweep and the BFT-SH-DID
// recovery analyses, writing the evaluation's result files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/api"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/experiment"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/reconcile"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/recovery"
	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/results"
)

// Version is the current bftsim version.
const Version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "bftsim",
		Short:         "BFT DID protocol simulations",
		Long:          "Simulation harness for the BFT-MV-DID reconciliation protocol and the BFT-SH-DID recovery gas/latency model.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(&verbose),
		newSweepCmd(&verbose),
		newRecoveryCmd(&verbose),
		newServeCmd(&verbose),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(verbose *bool) *cobra.Command {
	cfg := reconcile.Config{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single reconciliation trial and print its statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			network, err := reconcile.NewNetwork(cfg)
			if err != nil {
				return err
			}

			stats := network.RunUntilConvergence()
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().IntVarP(&cfg.Agents, "agents", "n", 20, "total number of agents")
	cmd.Flags().IntVarP(&cfg.Byzantine, "byzantine", "f", 6, "number of Byzantine agents")
	cmd.Flags().IntVar(&cfg.Fanout, "fanout", 5, "peers contacted per agent per round")
	cmd.Flags().IntVar(&cfg.MaxRounds, "max-rounds", reconcile.DefaultMaxRounds, "round budget")
	cmd.Flags().StringVar(&cfg.Subject, "subject", reconcile.DefaultSubject, "DID under reconciliation")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "randomness seed")
	return cmd
}

type sweepFlags struct {
	sizes     []int
	ratios    []float64
	fanout    int
	trials    int
	maxRounds int
	seed      int64
	workers   int
	outDir    string
}

func (f *sweepFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&f.sizes, "sizes", []int{10, 20, 30, 50, 100}, "network sizes to sweep")
	cmd.Flags().Float64SliceVar(&f.ratios, "ratios", []float64{0.0, 0.1, 0.2}, "Byzantine ratios to sweep")
	cmd.Flags().IntVar(&f.fanout, "fanout", 5, "peers contacted per agent per round")
	cmd.Flags().IntVar(&f.trials, "trials", 10, "independent trials per configuration")
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", reconcile.DefaultMaxRounds, "round budget per trial")
	cmd.Flags().Int64Var(&f.seed, "seed", time.Now().UnixNano(), "sweep seed")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel trial workers (0: GOMAXPROCS)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "results", "output directory")
}

func (f *sweepFlags) sweep(log zerolog.Logger, obs experiment.Observer) experiment.Sweep {
	return experiment.Sweep{
		Sizes:     f.sizes,
		Ratios:    f.ratios,
		Fanout:    f.fanout,
		Trials:    f.trials,
		MaxRounds: f.maxRounds,
		Seed:      f.seed,
		Workers:   f.workers,
		Observer:  obs,
		Log:       log,
	}
}

func newSweepCmd(verbose *bool) *cobra.Command {
	flags := &sweepFlags{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep network size and Byzantine ratio, writing aggregated results",
		RunE: func(_ *cobra.Command, _ []string) error {
			log := newLogger(*verbose)

			res, err := flags.sweep(log, nil).Run()
			if err != nil {
				return err
			}

			writer, err := results.NewWriter(flags.outDir)
			if err != nil {
				return err
			}
			if err := writer.WriteSweep(res); err != nil {
				return err
			}
			if err := writer.WriteSummary(results.Summary{
				RunID:       res.RunID,
				Experiments: []string{"mv_did_convergence"},
			}); err != nil {
				return err
			}

			log.Info().Str("run_id", res.RunID).Int("configs", len(res.Configs)).
				Dur("elapsed", res.Elapsed).Str("dir", writer.Dir()).Msg("sweep finished")
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newRecoveryCmd(verbose *bool) *cobra.Command {
	var (
		fValues []int
		trials  int
		seed    int64
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Run the recovery gas/latency analyses and baseline comparison",
		RunE: func(_ *cobra.Command, _ []string) error {
			log := newLogger(*verbose)
			model := recovery.NewModel(seed)

			gas, err := model.GasCostAnalysis(fValues, trials)
			if err != nil {
				return err
			}
			latency, err := model.LatencyAnalysis(7, 2,
				[]recovery.Behavior{recovery.BehaviorNone, recovery.BehaviorDelay}, trials)
			if err != nil {
				return err
			}
			comparison, err := model.CompareWithBaselines()
			if err != nil {
				return err
			}

			writer, err := results.NewWriter(outDir)
			if err != nil {
				return err
			}
			if err := writer.WriteGasCosts(gas); err != nil {
				return err
			}
			if err := writer.WriteLatency(latency); err != nil {
				return err
			}
			if err := writer.WriteComparison(comparison); err != nil {
				return err
			}
			if err := writer.WriteSummary(results.Summary{
				Experiments: []string{"sh_did_gas_costs", "sh_did_latency", "baseline_comparison"},
			}); err != nil {
				return err
			}

			log.Info().Str("dir", writer.Dir()).Msg("recovery analyses finished")
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&fValues, "f-values", []int{1, 2, 3, 5, 10, 15}, "Byzantine counts for the gas analysis")
	cmd.Flags().IntVar(&trials, "trials", 20, "trials per configuration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "randomness seed")
	cmd.Flags().StringVarP(&outDir, "out", "o", "results", "output directory")
	return cmd
}

func newServeCmd(verbose *bool) *cobra.Command {
	flags := &sweepFlags{}
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a sweep while serving metrics and results over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			log := newLogger(*verbose)

			server := api.NewServer()
			if err := server.Start(address); err != nil {
				return err
			}
			log.Info().Str("address", address).Msg("serving /metrics, /healthz and /results")

			res, err := flags.sweep(log, server.Metrics()).Run()
			if err != nil {
				return err
			}
			server.SetResult(res)

			writer, err := results.NewWriter(flags.outDir)
			if err != nil {
				return err
			}
			if err := writer.WriteSweep(res); err != nil {
				return err
			}
			log.Info().Str("run_id", res.RunID).Msg("sweep finished, serving results until interrupted")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Stop(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&address, "address", ":9090", "HTTP listen address")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bftsim version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bftsim v%s\n", Version)
		},
	}
}
