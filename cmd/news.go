package cmd

import (
	"cmp"
	"html"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/record"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show tournament news",
	Long: `List published news, newest first.

Examples:
  jifmactl news                    # Headlines
  jifmactl news --search futsal    # Headlines mentioning futsal
  jifmactl news --full --limit 3   # Full text of the three latest articles
  jifmactl news --json             # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runNews,
}

func init() {
	rootCmd.AddCommand(newsCmd)

	newsCmd.Flags().StringP("search", "s", "", "only show articles whose title or content contains this text")
	newsCmd.Flags().IntP("limit", "n", 0, "show at most this many articles (0 for all)")
	newsCmd.Flags().Bool("full", false, "print the article text")
	newsCmd.Flags().Bool("json", false, "output as JSON")
}

func runNews(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	full, _ := cmd.Flags().GetBool("full")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	records, err := fetchPublic(cmd.Context(), record.KindNews)
	if err != nil {
		return err
	}

	items := selectNews(records, search, limit)

	if jsonOutput {
		return printer.JSON(items)
	}

	if len(items) == 0 {
		if search != "" {
			printer.Warning("No news matches %q", search)
		} else {
			printer.Info("No news published yet")
		}
		return nil
	}

	if full {
		printNewsArticles(printer, items)
	} else {
		table := output.NewPrinterTable(printer, []string{"ID", "DATE", "TITLE", "AUTHOR"})
		for _, n := range items {
			table.AddRow([]string{
				n.ID.String(),
				formatWhen(n.PublicationDate, dateLayout),
				printer.Bold(n.Title),
				record.NameOr(n.Author),
			})
		}
		table.Render()
	}

	printer.PrintHints("news")
	return nil
}

// selectNews filters by search term, sorts newest first and applies the limit
func selectNews(records []record.Record, search string, limit int) []record.NewsItem {
	items := make([]record.NewsItem, 0, len(records))
	for _, rec := range records {
		n, ok := rec.(record.NewsItem)
		if !ok || !n.Matches(search) {
			continue
		}
		items = append(items, n)
	}

	slices.SortStableFunc(items, func(a, b record.NewsItem) int {
		return cmp.Compare(b.PublicationDate.Time.Unix(), a.PublicationDate.Time.Unix())
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func printNewsArticles(printer *output.Printer, items []record.NewsItem) {
	for _, n := range items {
		printer.Header(n.Title)
		printer.Print("%s", printer.Dim(record.NameOr(n.Author)+" · "+formatWhen(n.PublicationDate, dateTimeLayout)))
		printer.Print("")
		printer.Print("%s", plainText(n.Content))
		if n.ImageURL != "" {
			printer.Print("%s", printer.Dim(n.ImageURL))
		}
	}
}

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from article content so it renders on a terminal
func plainText(content string) string {
	stripped := html.UnescapeString(textPolicy.Sanitize(content))
	lines := strings.Split(stripped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
