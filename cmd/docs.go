package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/jifma-project/jifmactl/internal/output"
)

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate man pages or markdown reference",
	Hidden: true,
	Long: `Generate reference documentation for every jifmactl command.

Examples:
  jifmactl docs --format man --output ./man
  jifmactl docs --format markdown --output ./docs/cli`,
	Args: cobra.NoArgs,
	RunE: runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().String("format", "man", "output format: man or markdown")
	docsCmd.Flags().String("output", ".", "directory to write the files to")
}

func runDocs(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	format, _ := cmd.Flags().GetString("format")
	dir, _ := cmd.Flags().GetString("output")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	switch format {
	case "man":
		header := &doc.GenManHeader{Title: "JIFMACTL", Section: "1", Source: "jifmactl " + version}
		if err := doc.GenManTree(root, header, dir); err != nil {
			return fmt.Errorf("generating man pages: %w", err)
		}
	case "markdown", "md":
		if err := doc.GenMarkdownTree(root, dir); err != nil {
			return fmt.Errorf("generating markdown: %w", err)
		}
	default:
		return &output.CLIError{
			Summary:    fmt.Sprintf("unknown docs format %q", format),
			Suggestion: "Use --format man or --format markdown",
			ExitCode:   output.ExitUsageError,
		}
	}

	printer.Success("Wrote %s docs to %s", format, dir)
	return nil
}
