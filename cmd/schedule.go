package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/record"
	"github.com/jifma-project/jifmactl/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"games"},
	Short:   "Show the game schedule grouped by day",
	Long: `Show games grouped by calendar day in the display timezone, earliest first.

A sport filter that matches no game is dropped and every modality is shown.

Examples:
  jifmactl schedule                              # All games
  jifmactl schedule --sport volei_de_praia       # One modality
  jifmactl schedule --status em_andamento        # Games being played now
  jifmactl schedule --json                       # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("sport", schedule.AllSentinel, "sport name or slug, or \"all\"")
	scheduleCmd.Flags().String("status", schedule.AllSentinel, "agendado, em_andamento, finalizado or \"all\"")
	scheduleCmd.Flags().Bool("json", false, "output as JSON")

	_ = scheduleCmd.RegisterFlagCompletionFunc("status", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := []string{schedule.AllSentinel}
		for _, s := range record.Statuses() {
			out = append(out, strings.ToLower(strings.ReplaceAll(string(s), " ", "_")))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

type scheduleJSON struct {
	FellBack bool      `json:"fell_back"`
	Days     []dayJSON `json:"days"`
}

type dayJSON struct {
	Date  string        `json:"date"`
	Games []record.Game `json:"games"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	sport, _ := cmd.Flags().GetString("sport")
	status, _ := cmd.Flags().GetString("status")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	games, names, err := loadGames(cmd.Context())
	if err != nil {
		return err
	}

	sched := schedule.Project(games, schedule.Filter{Sport: sport, Status: status}, schedule.Options{
		Location:   cfg.Location(),
		SportNames: names,
	})

	if jsonOutput {
		out := scheduleJSON{FellBack: sched.FellBack, Days: make([]dayJSON, 0, len(sched.Days))}
		for _, d := range sched.Days {
			out.Days = append(out.Days, dayJSON{Date: d.Date.Format("2006-01-02"), Games: d.Games})
		}
		return printer.JSON(out)
	}

	if sched.FellBack {
		printer.Warning("No games for %q, showing all modalities", sport)
	}
	if sched.Len() == 0 {
		printer.Info("No games found with the selected filters")
		return nil
	}

	for _, day := range sched.Days {
		printer.Header(day.Date.Format(dateLayout))
		table := output.NewPrinterTable(printer, []string{"TIME", "SPORT", "MATCH", "SCORE", "LOCATION", "STATUS"})
		for _, g := range day.Games {
			table.AddRow([]string{
				formatWhen(g.GameDate, timeLayout),
				record.NameOr(schedule.SportName(g, names)),
				g.Matchup(),
				g.ScoreLine(),
				record.NameOr(g.Location),
				printer.StatusBadge(g.Status),
			})
		}
		table.Render()
	}

	printer.PrintHints("schedule")
	return nil
}

// loadGames fetches the games and, when some lack a denormalized sport name, the sports
// needed to resolve them.
func loadGames(ctx context.Context) ([]record.Game, map[record.ID]string, error) {
	records, err := fetchPublic(ctx, record.KindGame)
	if err != nil {
		return nil, nil, err
	}
	games := schedule.FromRecords(records)

	for _, g := range games {
		if g.SportName == "" && !g.SportID.IsZero() {
			sports, err := fetchPublic(ctx, record.KindSport)
			if err != nil {
				logger.Debug("sport names unavailable", "error", err)
				return games, nil, nil
			}
			return games, schedule.SportIndex(sports), nil
		}
	}
	return games, nil, nil
}
