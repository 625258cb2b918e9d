package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jifma-project/jifmactl/internal/admin"
	"github.com/jifma-project/jifmactl/internal/fields"
	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/record"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage tournament records",
	Long: `Create, edit and delete news, games, teams, sports and medal tallies.

Write operations send the token stored by 'jifmactl login'. Every change is
followed by a reload, so listings always show what the API holds.

Record kinds: news, game, team, sport, medal (plural forms work too).`,
}

var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show record counts for every collection",
	Args:  cobra.NoArgs,
	RunE:  runAdminDashboard,
}

var adminListCmd = &cobra.Command{
	Use:               "list <kind>",
	Aliases:           []string{"ls"},
	Short:             "List the records of one kind",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeKinds,
	RunE:              runAdminList,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create <kind>",
	Short: "Create a record",
	Long: `Create a record from --set values, a YAML file or interactive prompts.

Examples:
  jifmactl admin create team --set name=Química --set city=Fortaleza
  jifmactl admin create game --from-file game.yaml
  jifmactl admin create news -i`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeKinds,
	RunE:              runAdminCreate,
}

var adminEditCmd = &cobra.Command{
	Use:   "edit <kind> <id>",
	Short: "Edit a record",
	Long: `Edit a record. Fields not given keep their current value.

Examples:
  jifmactl admin edit game 12 --set status=Finalizado --set score_a=3 --set score_b=1
  jifmactl admin edit medal 4 --set gold_medals=2`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeKinds,
	RunE:              runAdminEdit,
}

var adminDeleteCmd = &cobra.Command{
	Use:               "delete <kind> <id>",
	Aliases:           []string{"rm"},
	Short:             "Delete a record",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeKinds,
	RunE:              runAdminDelete,
}

var adminFieldsCmd = &cobra.Command{
	Use:               "fields <kind>",
	Short:             "Describe the editable fields of a kind",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeKinds,
	RunE:              runAdminFields,
}

var adminSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)
		printConfigTable(printer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminDashboardCmd, adminListCmd, adminCreateCmd, adminEditCmd,
		adminDeleteCmd, adminFieldsCmd, adminSettingsCmd)

	adminDashboardCmd.Flags().Bool("json", false, "output as JSON")
	adminListCmd.Flags().Bool("json", false, "output as JSON")

	for _, c := range []*cobra.Command{adminCreateCmd, adminEditCmd} {
		c.Flags().StringArray("set", nil, "field value as name=value (repeatable)")
		c.Flags().String("from-file", "", "YAML file mapping field names to values")
		c.Flags().BoolP("interactive", "i", false, "prompt for every field")
	}
	adminDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func completeKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, len(record.Kinds()))
	for _, k := range record.Kinds() {
		out = append(out, k.String())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func parseKindArg(s string) (record.Kind, error) {
	kind, err := record.ParseKind(s)
	if err != nil {
		return 0, &output.CLIError{
			Summary:    err.Error(),
			Suggestion: "Use one of news, game, team, sport, medal",
			ExitCode:   output.ExitUsageError,
			Cause:      err,
		}
	}
	return kind, nil
}

// newOrchestrator builds the admin console over the stored session
func newOrchestrator(ctx context.Context, printer *output.Printer) (*admin.Orchestrator, func(), error) {
	sess, done, err := openSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !sess.Authenticated() {
		printer.Warning("Not logged in; the API will reject changes until you run 'jifmactl login'")
	}

	o := admin.New(newGateway(sess), fields.NewRegistry(), admin.Config{
		MessageTTL: cfg.Admin.MessageTTL,
		Logger:     logger,
	})
	return o, done, nil
}

// selectSection loads a section. Partial failures are reported and the stale data kept.
func selectSection(ctx context.Context, printer *output.Printer, o *admin.Orchestrator, s admin.Section) error {
	err := o.SelectSection(ctx, s)
	var loadErr *admin.LoadError
	if errors.As(err, &loadErr) && len(loadErr.Failed) < len(s.Kinds()) {
		printer.Warning("%s", loadErr.Error())
		return nil
	}
	return err
}

// reportMessage prints the orchestrator's success message. Failures are reported
// through the returned error instead.
func reportMessage(printer *output.Printer, o *admin.Orchestrator) {
	msg, ok := o.Message()
	if !ok {
		return
	}
	switch msg.Kind {
	case admin.MessageSuccess:
		printer.Success("%s", msg.Text)
	case admin.MessageError:
		printer.Warning("%s", msg.Text)
	}
}

func runAdminDashboard(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	o, done, err := newOrchestrator(ctx, printer)
	if err != nil {
		return err
	}
	defer done()

	if err := selectSection(ctx, printer, o, admin.SectionDashboard); err != nil {
		return err
	}
	summary := o.Summary()

	if jsonOutput {
		counts := make(map[string]int, len(summary.Counts))
		for k, n := range summary.Counts {
			counts[k.Collection()] = n
		}
		return printer.JSON(map[string]any{
			"counts":          counts,
			"games_finished":  summary.Finished,
			"games_scheduled": summary.Scheduled,
		})
	}

	printer.Header("Dashboard")
	table := output.NewPrinterTable(printer, []string{"COLLECTION", "RECORDS"})
	for _, k := range record.Kinds() {
		table.AddRow([]string{k.Label(), strconv.Itoa(summary.Counts[k])})
	}
	table.Render()
	printer.Info("Games finished: %d, scheduled: %d", summary.Finished, summary.Scheduled)

	printer.PrintHints("admin dashboard")
	return nil
}

func runAdminList(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}

	o, done, err := newOrchestrator(ctx, printer)
	if err != nil {
		return err
	}
	defer done()

	if err := o.SelectSection(ctx, admin.SectionFor(kind)); err != nil {
		return err
	}
	records := o.Collection(kind).Records()

	if jsonOutput {
		return printer.JSON(records)
	}

	printer.Header(kind.Label())
	if len(records) == 0 {
		printer.Info("No records")
		return nil
	}
	renderRecords(printer, kind, records)
	printer.PrintHints("admin list")
	return nil
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()

	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}

	o, done, err := newOrchestrator(ctx, printer)
	if err != nil {
		return err
	}
	defer done()

	if err := prepareForm(ctx, printer, o, kind); err != nil {
		return err
	}
	if err := o.OpenModal(kind, nil); err != nil {
		return err
	}
	if err := fillForm(cmd, o, kind, false); err != nil {
		o.CloseModal()
		return err
	}
	checkReferences(printer, o, kind)

	if err := o.Submit(ctx); err != nil {
		return err
	}
	reportMessage(printer, o)
	printer.PrintHints("admin create")
	return nil
}

func runAdminEdit(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()

	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}
	id := record.ID(args[1])

	o, done, err := newOrchestrator(ctx, printer)
	if err != nil {
		return err
	}
	defer done()

	if err := prepareForm(ctx, printer, o, kind); err != nil {
		return err
	}
	rec, ok := o.Find(kind, id)
	if !ok {
		return notFound(kind, id)
	}
	if err := o.OpenModal(kind, rec); err != nil {
		return err
	}
	if err := fillForm(cmd, o, kind, true); err != nil {
		o.CloseModal()
		return err
	}
	checkReferences(printer, o, kind)

	if err := o.Submit(ctx); err != nil {
		return err
	}
	reportMessage(printer, o)
	printer.PrintHints("admin edit")
	return nil
}

func runAdminDelete(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()
	yes, _ := cmd.Flags().GetBool("yes")

	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}
	id := record.ID(args[1])

	o, done, err := newOrchestrator(ctx, printer)
	if err != nil {
		return err
	}
	defer done()

	if err := o.SelectSection(ctx, admin.SectionFor(kind)); err != nil {
		return err
	}
	rec, ok := o.Find(kind, id)
	if !ok {
		return notFound(kind, id)
	}

	confirm := admin.AlwaysConfirm
	if !yes {
		confirm = promptConfirmer(cmd, fields.DisplayName(rec))
	}

	err = o.Remove(ctx, kind, id, confirm)
	if errors.Is(err, admin.ErrDeclined) {
		printer.Info("Nothing deleted")
		return nil
	}
	if err != nil {
		return err
	}
	reportMessage(printer, o)
	printer.PrintHints("admin delete")
	return nil
}

func runAdminFields(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}

	printer.Header(kind.Label() + " fields")
	table := output.NewPrinterTable(printer, []string{"NAME", "LABEL", "INPUT", "REQUIRED", "DEFAULT", "OPTIONS"})
	for _, f := range fields.NewRegistry().Fields(kind) {
		required := ""
		if f.Required {
			required = "yes"
		}
		options := strings.Join(f.Choices, ", ")
		if f.Ref != nil {
			options = "ids from " + f.Ref.Collection()
		}
		if f.Locked {
			options = strings.TrimSpace(options + " (fixed once created)")
		}
		table.AddRow([]string{f.Name, f.Label, f.Input.String(), required, f.Default, options})
	}
	table.Render()
	printer.PrintHints("admin fields")
	return nil
}

// prepareForm loads the kind's own section, so the reload after saving refreshes it,
// and the collections its reference fields draw options from.
func prepareForm(ctx context.Context, printer *output.Printer, o *admin.Orchestrator, kind record.Kind) error {
	if err := selectSection(ctx, printer, o, admin.SectionFor(kind)); err != nil {
		return err
	}
	if err := o.LoadReferences(ctx, kind); err != nil {
		printer.Warning("Reference options unavailable: %v", err)
	}
	return nil
}

// fillForm applies values from --from-file, then --set, then interactive prompts
func fillForm(cmd *cobra.Command, o *admin.Orchestrator, kind record.Kind, editing bool) error {
	fromFile, _ := cmd.Flags().GetString("from-file")
	sets, _ := cmd.Flags().GetStringArray("set")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if fromFile != "" {
		values, err := readDraftFile(fromFile)
		if err != nil {
			return err
		}
		for name, value := range values {
			if err := o.SetField(name, value); err != nil {
				return usageError(err)
			}
		}
	}

	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return &output.CLIError{
				Summary:  fmt.Sprintf("invalid --set value %q", s),
				Detail:   "expected name=value",
				ExitCode: output.ExitUsageError,
			}
		}
		if err := o.SetField(strings.TrimSpace(name), value); err != nil {
			return usageError(err)
		}
	}

	if interactive {
		return promptForm(cmd, o, kind, editing)
	}
	return nil
}

func usageError(err error) error {
	return &output.CLIError{
		Summary:    err.Error(),
		Suggestion: "Run 'jifmactl admin fields <kind>' to see the editable fields",
		ExitCode:   output.ExitUsageError,
		Cause:      err,
	}
}

// readDraftFile reads a YAML mapping of field names to scalar values
func readDraftFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &output.CLIError{
			Summary:  fmt.Sprintf("cannot parse %s", path),
			Detail:   err.Error(),
			ExitCode: output.ExitUsageError,
			Cause:    err,
		}
	}
	values := make(map[string]string, len(raw))
	for name, v := range raw {
		switch val := v.(type) {
		case nil:
			values[name] = ""
		case string:
			values[name] = val
		default:
			values[name] = fmt.Sprint(val)
		}
	}
	return values, nil
}

// promptForm asks for every field, showing the current value and the options of
// reference fields. An empty answer keeps the current value.
func promptForm(cmd *cobra.Command, o *admin.Orchestrator, kind record.Kind, editing bool) error {
	in := bufio.NewReader(cmd.InOrStdin())
	w := cmd.ErrOrStderr()
	draft := o.Draft()

	for _, f := range fields.NewRegistry().Fields(kind) {
		if f.Locked && editing {
			continue
		}
		if f.Ref != nil || len(f.Choices) > 0 {
			opts, err := o.Options(kind, f.Name)
			if err == nil && len(opts) > 0 {
				for _, opt := range opts {
					fmt.Fprintf(w, "    %s  %s\n", opt.Value, opt.Label)
				}
			}
		}

		marker := ""
		if f.Required {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s [%s]: ", f.Label, marker, draft[f.Name])
		line, err := readLine(in)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
		if line == "" {
			continue
		}
		if err := o.SetField(f.Name, line); err != nil {
			return usageError(err)
		}
	}
	return nil
}

// checkReferences warns about reference values that match no loaded record. The API
// enforces referential integrity, so this is advisory only.
func checkReferences(printer *output.Printer, o *admin.Orchestrator, kind record.Kind) {
	draft := o.Draft()
	for _, f := range fields.NewRegistry().Fields(kind) {
		value := strings.TrimSpace(draft[f.Name])
		if f.Ref == nil || value == "" {
			continue
		}
		opts, err := o.Options(kind, f.Name)
		if err != nil || len(opts) == 0 {
			continue
		}
		found := false
		for _, opt := range opts {
			if string(opt.Value) == value {
				found = true
				break
			}
		}
		if !found {
			printer.Warning("%s %q does not match any of the %s", f.Label, value, f.Ref.Collection())
		}
	}
}

func promptConfirmer(cmd *cobra.Command, label string) admin.ConfirmFunc {
	return admin.ConfirmFunc(func(kind record.Kind, id record.ID) (bool, error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Delete %s %s (%s)? [y/N]: ", kind, id, label)
		line, err := readLine(bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

func notFound(kind record.Kind, id record.ID) error {
	return &output.CLIError{
		Summary:    fmt.Sprintf("no %s with id %s", kind, id),
		Suggestion: fmt.Sprintf("Run 'jifmactl admin list %s' to see existing records", kind),
		ExitCode:   output.ExitUsageError,
	}
}

// renderRecords prints a kind-specific table of records
func renderRecords(printer *output.Printer, kind record.Kind, records []record.Record) {
	var table *output.Table
	switch kind {
	case record.KindNews:
		table = output.NewPrinterTable(printer, []string{"ID", "DATE", "TITLE", "AUTHOR"})
	case record.KindGame:
		table = output.NewPrinterTable(printer, []string{"ID", "DATE", "SPORT", "MATCH", "SCORE", "STATUS"})
	case record.KindTeam:
		table = output.NewPrinterTable(printer, []string{"ID", "NAME", "CITY"})
	case record.KindSport:
		table = output.NewPrinterTable(printer, []string{"ID", "NAME", "TYPE"})
	case record.KindMedal:
		table = output.NewPrinterTable(printer, []string{"TEAM ID", "TEAM", "GOLD", "SILVER", "BRONZE", "TOTAL"})
	default:
		return
	}

	for _, rec := range records {
		switch r := rec.(type) {
		case record.NewsItem:
			table.AddRow([]string{r.ID.String(), formatWhen(r.PublicationDate, dateLayout), r.Title, record.NameOr(r.Author)})
		case record.Game:
			table.AddRow([]string{r.ID.String(), formatWhen(r.GameDate, dateTimeLayout), record.NameOr(r.SportName),
				r.Matchup(), r.ScoreLine(), printer.StatusBadge(r.Status)})
		case record.Team:
			table.AddRow([]string{r.ID.String(), record.NameOr(r.Name), record.NameOr(r.City)})
		case record.Sport:
			table.AddRow([]string{r.ID.String(), record.NameOr(r.Name), record.NameOr(string(r.Type))})
		case record.MedalTally:
			table.AddRow([]string{r.TeamID.String(), record.NameOr(r.TeamName), strconv.Itoa(r.Gold),
				strconv.Itoa(r.Silver), strconv.Itoa(r.Bronze), strconv.Itoa(r.Total)})
		}
	}
	table.Render()
}
