package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitget/packages/core/config"
	"github.com/abdul-hamid-achik/hitget/packages/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded fetches",
	Long: `List fetches recorded with --record (or record: true in the config),
newest first.

Examples:
  hitget history
  hitget history --limit 50 --url localhost
  hitget history show 3f2a
  hitget history clear`,
	Args: cobra.NoArgs,
	RunE: historyListCommand,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded fetch in full",
	Long:  `Show one recorded fetch. Any unambiguous prefix of the ID is accepted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  historyShowCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded fetches",
	Args:  cobra.NoArgs,
	RunE:  historyClearCommand,
}

var (
	historyLimitFlag int
	historyURLFlag   string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "l", 20, "Maximum number of entries to list")
	historyCmd.Flags().StringVar(&historyURLFlag, "url", "", "Only list fetches whose URL contains this text")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*config.Config, *history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, &configError{err}
	}
	return cfg, store, nil
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	cfg, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(historyLimitFlag, historyURLFlag)
	if err != nil {
		return err
	}

	newFormatter(cmd, cfg).FormatHistory(entries)
	return nil
}

func historyShowCommand(cmd *cobra.Command, args []string) error {
	cfg, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(args[0])
	if err != nil {
		return err
	}

	newFormatter(cmd, cfg).FormatEntry(entry)
	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	_, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", n)
	return nil
}
