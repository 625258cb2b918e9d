package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/record"
	"github.com/jifma-project/jifmactl/internal/schedule"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show results of finished games",
	Long: `List finished games with their scores, most recent first.

Examples:
  jifmactl results                  # All results
  jifmactl results --sport futsal   # Futsal results only
  jifmactl results --json           # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().String("sport", schedule.AllSentinel, "sport name or slug, or \"all\"")
	resultsCmd.Flags().Bool("json", false, "output as JSON")
}

func runResults(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	sport, _ := cmd.Flags().GetString("sport")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	games, names, err := loadGames(cmd.Context())
	if err != nil {
		return err
	}

	finished, fellBack := schedule.Results(games, sport, schedule.Options{
		Location:   cfg.Location(),
		SportNames: names,
	})

	if jsonOutput {
		return printer.JSON(finished)
	}

	if fellBack {
		printer.Warning("No results for %q, showing all modalities", sport)
	}
	if len(finished) == 0 {
		printer.Info("No finished games yet")
		return nil
	}

	printer.Header("Results")
	table := output.NewPrinterTable(printer, []string{"DATE", "SPORT", "TEAM A", "SCORE", "TEAM B"})
	for _, g := range finished {
		table.AddRow([]string{
			formatWhen(g.GameDate, dateTimeLayout),
			record.NameOr(schedule.SportName(g, names)),
			winnerMark(printer, g, g.TeamAID, g.TeamAName),
			g.ScoreLine(),
			winnerMark(printer, g, g.TeamBID, g.TeamBName),
		})
	}
	table.Render()

	printer.PrintHints("results")
	return nil
}

// winnerMark bolds the winning side of a game
func winnerMark(printer *output.Printer, g record.Game, team record.ID, name string) string {
	name = record.NameOr(name)
	if !g.WinnerTeamID.IsZero() && g.WinnerTeamID == team {
		return printer.Bold(name)
	}
	return name
}
