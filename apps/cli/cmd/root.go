package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	outputFlag    string
	verboseFlag   bool
	noColorFlag   bool
	historyDBFlag string
)

var rootCmd = &cobra.Command{
	Use:   "hitget",
	Short: "Plain HTTP/1.1 GET. Nothing hidden.",
	Long: `hitget fetches http:// URLs over a bare TCP connection and shows
exactly what came back: status line, headers in wire order and the body
byte for byte. It can also parse URLs and saved responses offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITGET_CONFIG", ""), "Path to config file (env: HITGET_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", getEnvString("HITGET_OUTPUT", ""), "Output format: console, json (env: HITGET_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HITGET_VERBOSE", false), "Show request and response headers (env: HITGET_VERBOSE)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITGET_NO_COLOR", false), "Disable colored output (env: HITGET_NO_COLOR)")
	rootCmd.PersistentFlags().StringVar(&historyDBFlag, "history-db", getEnvString("HITGET_HISTORY_DB", ""), "History database, e.g. sqlite://.hitget/history.db (env: HITGET_HISTORY_DB)")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
