package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/session"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the current jifmactl configuration.

Values come from .jifmactl.yaml, JIFMACTL_* environment variables and flags.

Examples:
  jifmactl config                # Show all config
  jifmactl config --path         # Show config file path
  jifmactl config --json         # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
	configCmd.Flags().Bool("json", false, "output as JSON")
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	showPath, _ := cmd.Flags().GetBool("path")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if showPath {
		if cfg.File == "" {
			printer.Info("No config file found (using defaults)")
		} else {
			printer.Info("Config file: %s", cfg.File)
		}
		return nil
	}

	if jsonOutput {
		return printer.JSON(cfg)
	}

	printConfigTable(printer)
	printer.PrintHints("config")
	return nil
}

// printConfigTable renders the effective configuration as KEY/VALUE rows
func printConfigTable(printer *output.Printer) {
	printer.Header("Current Configuration")

	sessionPath := cfg.Session.Path
	if sessionPath == "" {
		sessionPath = session.DefaultFilePath()
	}

	table := output.NewPrinterTable(printer, []string{"KEY", "VALUE"})
	table.AddRow([]string{"api.base_url", cfg.API.BaseURL})
	table.AddRow([]string{"api.timeout", cfg.API.Timeout.String()})
	table.AddRow([]string{"api.rate_limit", strconv.FormatFloat(cfg.API.RateLimit, 'g', -1, 64)})
	table.AddRow([]string{"session.backend", cfg.Session.Backend})
	table.AddRow([]string{"session.path", sessionPath})
	if cfg.Session.RedisURL != "" {
		table.AddRow([]string{"session.redis_url", cfg.Session.RedisURL})
		table.AddRow([]string{"session.redis_prefix", cfg.Session.RedisPrefix})
	}
	table.AddRow([]string{"display.timezone", cfg.Display.Timezone})
	table.AddRow([]string{"admin.message_ttl", cfg.Admin.MessageTTL.String()})
	table.AddRow([]string{"logging.level", cfg.Logging.Level})
	table.AddRow([]string{"logging.format", cfg.Logging.Format})
	table.AddRow([]string{"output.colors", fmt.Sprintf("%v", cfg.Output.Colors)})
	table.Render()
}
