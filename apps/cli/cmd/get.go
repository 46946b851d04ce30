package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/assertions"
	"github.com/abdul-hamid-achik/hitget/packages/core/config"
	"github.com/abdul-hamid-achik/hitget/packages/history"
	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/output"
	"github.com/abdul-hamid-achik/hitget/packages/url"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Fetch an http:// URL and print the response",
	Long: `Fetch an http:// URL with a single GET over a fresh TCP connection and
print the status line, headers and body exactly as received.

Checks can be attached with --expect, --expect-status and --schema; any
failing check makes hitget exit with status 1. With --query only the selected
value is printed and checks affect the exit status alone.

Examples:
  hitget get http://example.com/
  hitget get http://localhost:8080/api/users -H "Accept: application/json"
  hitget get http://localhost:8080/api/users --query "0.name"
  hitget get http://localhost:8080/health --expect-status 200 --expect "body.status == ok"
  hitget get http://localhost:8080/api/users/1 --schema user.schema.json --record`,
	Args: cobra.ExactArgs(1),
	RunE: getCommand,
}

type clientFlagValues struct {
	timeout    string
	retries    int
	retryDelay string
	headers    []string
}

var (
	clientFlags clientFlagValues

	queryFlag        string
	expectFlags      []string
	expectStatusFlag int
	schemaFlag       string
	recordFlag       bool
)

func init() {
	addClientFlags(getCmd)

	getCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Print only the value at this JSON body path (e.g. data.items.0.id)")
	getCmd.Flags().StringArrayVar(&expectFlags, "expect", nil, "Check the response, e.g. \"header.Content-Type contains json\" (repeatable)")
	getCmd.Flags().IntVar(&expectStatusFlag, "expect-status", 0, "Expect this status code")
	getCmd.Flags().StringVar(&schemaFlag, "schema", "", "Validate the JSON body against a JSON schema file")
	getCmd.Flags().BoolVar(&recordFlag, "record", getEnvBool("HITGET_RECORD", false), "Record the fetch in the history database (env: HITGET_RECORD)")
}

// addClientFlags registers the flags shared by every command that fetches
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&clientFlags.timeout, "timeout", getEnvString("HITGET_TIMEOUT", ""), "Whole-request timeout, e.g. 30s, 500ms (env: HITGET_TIMEOUT)")
	cmd.Flags().IntVar(&clientFlags.retries, "retries", getEnvInt("HITGET_RETRIES", -1), "Extra connect attempts, -1 uses the config value (env: HITGET_RETRIES)")
	cmd.Flags().StringVar(&clientFlags.retryDelay, "retry-delay", getEnvString("HITGET_RETRY_DELAY", ""), "Delay between connect attempts, e.g. 1s (env: HITGET_RETRY_DELAY)")
	cmd.Flags().StringArrayVarP(&clientFlags.headers, "header", "H", nil, "Extra request header \"Name: value\" (repeatable)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatExchange(ex *http.Exchange, checks []*assertions.Result)
	FormatQuery(path, value string)
	FormatURL(u *url.URL)
	FormatResponse(resp *http.Response)
	FormatHistory(entries []*history.Entry)
	FormatEntry(e *history.Entry)
	FormatError(err error)
	FormatHeader(version string)
}

func newFormatter(cmd *cobra.Command, cfg *config.Config) Formatter {
	switch strings.ToLower(cfg.Output) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
	default: // "console"
		return output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithVerbose(cfg.GetVerbose()),
			output.WithNoColor(cfg.GetNoColor()),
		)
	}
}

// loadConfig loads the config file (if present) and applies the global
// flag overrides.
func loadConfig() (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, &configError{err}
	}

	overrides := &config.Config{
		Output:    outputFlag,
		HistoryDB: historyDBFlag,
	}
	if verboseFlag {
		overrides.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}

	cfg := fileConfig.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, &configError{err}
	}
	return cfg, nil
}

// applyClientFlags folds the fetch flags into cfg
func applyClientFlags(cfg *config.Config) (*config.Config, error) {
	result := *cfg

	if clientFlags.timeout != "" {
		d, err := time.ParseDuration(clientFlags.timeout)
		if err != nil || d < 0 {
			return nil, &usageError{fmt.Errorf("invalid timeout value %q (use format like 30s, 1m, 500ms)", clientFlags.timeout)}
		}
		result.Timeout = int(d.Milliseconds())
	}
	if clientFlags.retries >= 0 {
		result.Retries = clientFlags.retries
	}
	if clientFlags.retryDelay != "" {
		d, err := time.ParseDuration(clientFlags.retryDelay)
		if err != nil || d < 0 {
			return nil, &usageError{fmt.Errorf("invalid retry delay %q", clientFlags.retryDelay)}
		}
		result.RetryDelay = int(d.Milliseconds())
	}

	if len(clientFlags.headers) > 0 {
		headers := make(map[string]string, len(cfg.Headers)+len(clientFlags.headers))
		for k, v := range cfg.Headers {
			headers[k] = v
		}
		for _, h := range clientFlags.headers {
			name, value, ok := strings.Cut(h, ":")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				return nil, &usageError{fmt.Errorf("invalid header %q (expected \"Name: value\")", h)}
			}
			value = strings.TrimSpace(value)
			if err := config.ValidateHeader(name, value); err != nil {
				return nil, &usageError{err}
			}
			headers[name] = value
		}
		result.Headers = headers
	}

	return &result, nil
}

func newClient(cfg *config.Config) *http.Client {
	return http.NewClient(
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithConnectRetries(cfg.Retries, cfg.RetryDelayDuration()),
		http.WithDefaultHeaders(cfg.Headers),
	)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// recordFetch writes one fetch to the history database. Failures only warn.
func recordFetch(cfg *config.Config, rawURL string, ex *http.Exchange, fetchErr error, took time.Duration) {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open history: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Add(history.FromExchange(rawURL, ex, fetchErr, took)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record fetch: %v\n", err)
	}
}

func buildExpectations() ([]*assertions.Expectation, error) {
	var exps []*assertions.Expectation
	if expectStatusFlag != 0 {
		exps = append(exps, &assertions.Expectation{
			Subject:  "status",
			Operator: assertions.OpEquals,
			Expected: strconv.Itoa(expectStatusFlag),
		})
	}
	for _, s := range expectFlags {
		exp, err := assertions.ParseExpectation(s)
		if err != nil {
			return nil, &usageError{err}
		}
		exps = append(exps, exp)
	}
	return exps, nil
}

func getCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg, err = applyClientFlags(cfg); err != nil {
		return err
	}
	if recordFlag {
		cfg.Record = config.BoolPtr(true)
	}

	exps, err := buildExpectations()
	if err != nil {
		return err
	}

	formatter := newFormatter(cmd, cfg)
	client := newClient(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	rawURL := args[0]
	start := time.Now()
	ex, err := client.Get(ctx, rawURL)
	if cfg.GetRecord() {
		recordFetch(cfg, rawURL, ex, err, time.Since(start))
	}
	if err != nil {
		formatter.FormatError(err)
		return &reportedError{err}
	}

	evaluator := assertions.NewEvaluator(ex.Response)
	results, passed := evaluator.EvaluateAll(exps)
	if schemaFlag != "" {
		r := evaluator.MatchSchema(schemaFlag)
		results = append(results, r)
		passed = passed && r.Passed
	}

	if queryFlag != "" {
		value, ok := evaluator.QueryRaw(queryFlag)
		if !ok {
			err := fmt.Errorf("query %q matched nothing: %w", queryFlag, errChecksFailed)
			formatter.FormatError(err)
			return &reportedError{err}
		}
		formatter.FormatQuery(queryFlag, value)
	} else {
		formatter.FormatExchange(ex, results)
	}

	if !passed {
		return &reportedError{errChecksFailed}
	}
	return nil
}
