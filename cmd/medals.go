package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/record"
	"github.com/jifma-project/jifmactl/internal/standings"
)

var medalsCmd = &cobra.Command{
	Use:     "medals",
	Aliases: []string{"standings"},
	Short:   "Show the medal table",
	Long: `Rank teams by gold, then silver, then bronze medals.

Examples:
  jifmactl medals                  # Podium and full table
  jifmactl medals --no-podium      # Table only
  jifmactl medals --json           # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runMedals,
}

func init() {
	rootCmd.AddCommand(medalsCmd)

	medalsCmd.Flags().Bool("no-podium", false, "skip the podium")
	medalsCmd.Flags().Bool("json", false, "output as JSON")
}

type standingJSON struct {
	Rank int `json:"rank"`
	record.MedalTally
}

func runMedals(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	noPodium, _ := cmd.Flags().GetBool("no-podium")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	records, err := fetchPublic(cmd.Context(), record.KindMedal)
	if err != nil {
		return err
	}
	ranked := standings.Project(standings.FromRecords(records))

	if jsonOutput {
		out := make([]standingJSON, len(ranked))
		for i, s := range ranked {
			out[i] = standingJSON{Rank: s.Rank, MedalTally: s.Tally}
		}
		return printer.JSON(out)
	}

	if len(ranked) == 0 {
		printer.Info("No medals awarded yet")
		return nil
	}

	if !noPodium {
		printer.Header("Podium")
		podium := output.NewPrinterTable(printer, []string{"PLACE", "TEAM", "GOLD", "SILVER", "BRONZE"})
		for _, s := range standings.Podium(ranked) {
			podium.AddRow([]string{
				printer.Medal(s.Rank),
				printer.Bold(record.NameOr(s.Tally.TeamName)),
				strconv.Itoa(s.Tally.Gold),
				strconv.Itoa(s.Tally.Silver),
				strconv.Itoa(s.Tally.Bronze),
			})
		}
		podium.Render()
	}

	printer.Header("Medal Table")
	table := output.NewPrinterTable(printer, []string{"RANK", "TEAM", "GOLD", "SILVER", "BRONZE", "TOTAL"})
	for _, s := range ranked {
		table.AddRow([]string{
			strconv.Itoa(s.Rank),
			record.NameOr(s.Tally.TeamName),
			strconv.Itoa(s.Tally.Gold),
			strconv.Itoa(s.Tally.Silver),
			strconv.Itoa(s.Tally.Bronze),
			strconv.Itoa(s.Tally.Total),
		})
	}
	table.Render()

	for _, s := range ranked {
		if !s.Tally.CountsAgree() {
			logger.Debug("medal total differs from the sum of counts",
				"team_id", s.Tally.TeamID.String(), "total", s.Tally.Total)
		}
	}

	printer.PrintHints("medals")
	return nil
}
