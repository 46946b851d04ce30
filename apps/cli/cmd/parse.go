package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/url"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse URLs and raw responses without touching the network",
}

var parseURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Split an http:// URL into host, port, path and searchpart",
	Long: `Split an http:// URL into its components. The port defaults to 80;
path and searchpart are shown without their leading '/' and '?'.

Examples:
  hitget parse url http://example.com:8080/index.html?q=1
  hitget parse url http://example.com -o json`,
	Args: cobra.ExactArgs(1),
	RunE: parseURLCommand,
}

var parseResponseCmd = &cobra.Command{
	Use:   "response <file|->",
	Short: "Parse a saved raw HTTP response",
	Long: `Parse a raw HTTP response read from a file, or from stdin when the
argument is "-". The text must be UTF-8; lines may end in LF or CRLF.

Examples:
  hitget parse response saved.txt
  printf 'HTTP/1.1 204 No Content\n\n' | hitget parse response -`,
	Args: cobra.ExactArgs(1),
	RunE: parseResponseCommand,
}

func init() {
	parseCmd.AddCommand(parseURLCmd)
	parseCmd.AddCommand(parseResponseCmd)
}

func parseURLCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter := newFormatter(cmd, cfg)

	u, err := url.Parse(args[0])
	if err != nil {
		formatter.FormatError(err)
		return &reportedError{err}
	}

	formatter.FormatURL(u)
	return nil
}

func parseResponseCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter := newFormatter(cmd, cfg)

	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	resp, err := http.DecodeResponse(raw)
	if err != nil {
		formatter.FormatError(err)
		return &reportedError{err}
	}

	formatter.FormatResponse(resp)
	return nil
}

// readInput reads a whole file, or stdin for "-"
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return data, nil
}
