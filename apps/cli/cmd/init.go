package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitget/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter hitget config",
	Long: `Initialize hitget in the current directory.

This creates:
  - .hitget.yaml   - Configuration file with defaults
  - urls.txt       - Example URL list for 'hitget watch'

Examples:
  hitget init
  hitget init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initProject(cmd, cwd)
}

func initProject(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, ".hitget.yaml")
	urlsFile := filepath.Join(dir, "urls.txt")

	if !forceInit {
		for _, f := range []string{configFile, urlsFile} {
			if _, err := os.Stat(f); err == nil {
				return &usageError{fmt.Errorf("file already exists: %s (use --force to overwrite)", f)}
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{
		"User-Agent": "hitget/" + version,
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	urlsContent := `# One http:// URL per line. Used by 'hitget watch urls.txt'.
http://localhost:8080/
http://localhost:8080/health
`
	if err := os.WriteFile(urlsFile, []byte(urlsContent), 0644); err != nil {
		return fmt.Errorf("failed to create URL list: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", urlsFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitget initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitget get http://localhost:8080/' to fetch a page.\n")

	return nil
}
