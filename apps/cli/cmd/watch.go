package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/core/config"
	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-fetch the URLs listed in a file whenever it changes",
	Long: `Fetch every URL listed in a file, one per line, then fetch them all again
each time the file is saved. Blank lines and lines starting with '#' are
ignored. Press Ctrl+C to stop.

Examples:
  hitget watch urls.txt
  hitget watch urls.txt --record -H "Accept: application/json"`,
	Args: cobra.ExactArgs(1),
	RunE: watchCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

func init() {
	addClientFlags(watchCmd)
	watchCmd.Flags().BoolVar(&recordFlag, "record", getEnvBool("HITGET_RECORD", false), "Record every fetch in the history database (env: HITGET_RECORD)")
}

// parseURLList returns the URLs listed in data, skipping blank lines and
// '#' comments
func parseURLList(data []byte) []string {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

func loadURLList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return parseURLList(data), nil
}

// fetchAll fetches urls in order and returns how many failed
func fetchAll(ctx context.Context, client *http.Client, formatter Formatter, cfg *config.Config, urls []string) int {
	failed := 0
	for _, rawURL := range urls {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		ex, err := client.Get(ctx, rawURL)
		if cfg.GetRecord() {
			recordFetch(cfg, rawURL, ex, err, time.Since(start))
		}
		if err != nil {
			failed++
			formatter.FormatError(fmt.Errorf("%s: %w", rawURL, err))
			continue
		}
		formatter.FormatExchange(ex, nil)
	}
	return failed
}

func watchCommand(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := signalContext()
	defer cancel()

	return watchURLList(ctx, cmd.OutOrStdout(), newFormatter(cmd, cfg), newClient(cfg), cfg, args[0])
}

// watchURLList fetches the URLs in file, then again after every change to
// it, until ctx is done.
func watchURLList(ctx context.Context, out io.Writer, formatter Formatter, client *http.Client, cfg *config.Config, file string) error {
	path, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	urls, err := loadURLList(path)
	if err != nil {
		return err
	}

	if cfg.GetVerbose() {
		formatter.FormatHeader(version)
	}

	// serializes runs triggered by the debounce timer
	var mu sync.Mutex
	run := func(urls []string) {
		mu.Lock()
		defer mu.Unlock()
		fetchAll(ctx, client, formatter, cfg, urls)
	}
	run(urls)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(out, "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", file)

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				urls, err := loadURLList(path)
				if err != nil {
					formatter.FormatError(err)
					return
				}
				fmt.Fprintf(out, "\nFile changed: %s\nRe-fetching %d URLs...\n\n", file, len(urls))
				run(urls)
				fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}
