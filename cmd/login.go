package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jifma-project/jifmactl/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the admin API",
	Long: `Authenticate against the API and keep the session for later admin commands.

The password is read from --password-stdin or prompted for.

Examples:
  jifmactl login -u admin                          # Prompt for the password
  echo "$PASS" | jifmactl login -u admin --password-stdin`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	whoamiCmd.Flags().Bool("json", false, "output as JSON")
}

func runLogin(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()

	username, _ := cmd.Flags().GetString("username")
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")

	in := bufio.NewReader(cmd.InOrStdin())
	if username == "" {
		if fromStdin {
			return &output.CLIError{
				Summary:  "--password-stdin requires --username",
				ExitCode: output.ExitUsageError,
			}
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
		line, err := readLine(in)
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = line
	}

	password, err := readPassword(cmd, in, fromStdin)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if username == "" || password == "" {
		return &output.CLIError{
			Summary:  "username and password are required",
			ExitCode: output.ExitUsageError,
		}
	}

	sess, done, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := sess.Login(ctx, newGateway(nil), username, password); err != nil {
		return err
	}

	printer.Success("Logged in as %s", sess.Username())
	printer.PrintHints("login")
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo on a terminal, otherwise one line from r
func readPassword(cmd *cobra.Command, r *bufio.Reader, fromStdin bool) (string, error) {
	if !fromStdin {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			return string(b), err
		}
	}
	return readLine(r)
}

func runLogout(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	ctx := cmd.Context()

	sess, done, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	if !sess.Authenticated() {
		printer.Info("Not logged in")
		return nil
	}
	if err := sess.Logout(ctx); err != nil {
		return err
	}
	printer.Success("Logged out")
	printer.PrintHints("logout")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sess, done, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer done()

	if !sess.Authenticated() {
		if jsonOutput {
			return printer.JSON(map[string]any{"authenticated": false})
		}
		printer.Info("Not logged in")
		return nil
	}

	profile := sess.Profile()
	claims, claimsErr := sess.Claims()

	if jsonOutput {
		out := map[string]any{"authenticated": true, "user": profile}
		if claimsErr == nil {
			out["subject"] = claims.Subject
			if !claims.ExpiresAt.IsZero() {
				out["expires_at"] = claims.ExpiresAt
				out["expired"] = claims.Expired(time.Now())
			}
		}
		return printer.JSON(out)
	}

	printer.Header("Session")
	table := output.NewPrinterTable(printer, []string{"KEY", "VALUE"})
	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		table.AddRow([]string{k, fmt.Sprint(profile[k])})
	}
	table.Render()

	switch {
	case claimsErr != nil:
		logger.Debug("token is not a readable JWT", "error", claimsErr)
	case claims.ExpiresAt.IsZero():
	case claims.Expired(time.Now()):
		printer.Warning("The token expired at %s; run 'jifmactl login' again", claims.ExpiresAt.In(cfg.Location()).Format(dateTimeLayout))
	default:
		printer.Info("Token valid until %s", claims.ExpiresAt.In(cfg.Location()).Format(dateTimeLayout))
	}

	printer.PrintHints("whoami")
	return nil
}
