package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/bench"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench <url>",
	Short: "Repeat a GET and report latency percentiles",
	Long: `Send the same GET many times, each over its own connection, and report
latency percentiles, status codes and failures grouped by error kind.

Examples:
  # 1000 requests, 20 at a time
  hitget bench http://localhost:8080/health -n 1000 -c 20

  # Paced at 50 req/s for at most a minute
  hitget bench http://localhost:8080/health -n 3000 --rate 50 --duration 1m

  # With thresholds for CI/CD
  hitget bench http://localhost:8080/health -n 500 --threshold "p95<200ms,errors<0.1%"`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

var (
	benchRequestsFlag    int
	benchConcurrencyFlag int
	benchRateFlag        float64
	benchDurationFlag    string
	benchThresholdFlag   string
	benchNoProgressFlag  bool
)

func init() {
	addClientFlags(benchCmd)

	defaults := bench.DefaultConfig()
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", defaults.Requests, "Total number of requests")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", defaults.Concurrency, "Maximum requests in flight")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Requests per second, 0 for unlimited")
	benchCmd.Flags().StringVarP(&benchDurationFlag, "duration", "d", "", "Stop after this long even if requests remain (e.g., 30s, 5m)")
	benchCmd.Flags().StringVar(&benchThresholdFlag, "threshold", "", "Pass/fail thresholds (e.g., \"p95<200ms,errors<0.1%\")")
	benchCmd.Flags().BoolVar(&benchNoProgressFlag, "no-progress", false, "Disable the progress counter")
}

func buildBenchConfig() (*bench.Config, error) {
	cfg := &bench.Config{
		Requests:    benchRequestsFlag,
		Concurrency: benchConcurrencyFlag,
		Rate:        benchRateFlag,
	}

	if benchDurationFlag != "" {
		d, err := time.ParseDuration(benchDurationFlag)
		if err != nil {
			return nil, &usageError{fmt.Errorf("invalid duration %q: %w", benchDurationFlag, err)}
		}
		cfg.Duration = d
	}

	if benchThresholdFlag != "" {
		thresholds, err := bench.ParseThresholds(benchThresholdFlag)
		if err != nil {
			return nil, &usageError{err}
		}
		cfg.Thresholds = thresholds
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err}
	}
	return cfg, nil
}

func benchCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := loadConfig()
	if err != nil {
		return err
	}
	fileConfig, err = applyClientFlags(fileConfig)
	if err != nil {
		return err
	}

	cfg, err := buildBenchConfig()
	if err != nil {
		return err
	}

	jsonOutput := fileConfig.Output == "json"
	reporter := bench.NewReporter(
		bench.WithWriter(cmd.OutOrStdout()),
		bench.WithNoColor(fileConfig.GetNoColor()),
	)

	var opts []bench.RunnerOption
	if !benchNoProgressFlag && !jsonOutput {
		total := cfg.Requests
		opts = append(opts, bench.WithProgress(func(done int64) {
			if done%10 == 0 || done == int64(total) {
				fmt.Fprintf(os.Stderr, "\r  %d/%d", done, total)
			}
		}))
	}

	client := newClient(fileConfig)
	runner := bench.NewRunner(cfg, client.Fetch, opts...)

	ctx, cancel := signalContext()
	defer cancel()

	if !jsonOutput {
		reporter.Header(version, args[0], cfg)
	}

	summary, err := runner.Run(ctx, args[0])
	if !benchNoProgressFlag && !jsonOutput {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	results := cfg.Thresholds.Evaluate(summary)
	if jsonOutput {
		if err := reporter.JSON(summary, results); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	} else {
		reporter.Summary(summary, results)
	}

	for _, r := range results {
		if !r.Passed {
			return &reportedError{fmt.Errorf("threshold %s failed: %w", r.Name, errChecksFailed)}
		}
	}
	return nil
}
