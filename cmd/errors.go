package cmd

import (
	"errors"
	"os"

	"github.com/jifma-project/jifmactl/internal/admin"
	"github.com/jifma-project/jifmactl/internal/fields"
	"github.com/jifma-project/jifmactl/internal/gateway"
	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/session"
)

func configError(summary string, err error) *output.CLIError {
	return &output.CLIError{
		Summary:    summary,
		Detail:     err.Error(),
		Suggestion: "Check the session section of .jifmactl.yaml",
		ExitCode:   output.ExitConfigError,
		Cause:      err,
	}
}

// toCLIError converts failures from the API, the session and form validation into
// user-facing errors with an exit code.
func toCLIError(err error) *output.CLIError {
	if err == nil {
		return nil
	}

	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var gap *fields.ValidationGap
	if errors.As(err, &gap) {
		return &output.CLIError{
			Summary:    "the form is incomplete",
			Detail:     gap.Error(),
			Suggestion: "Run 'jifmactl admin fields " + gap.Kind.String() + "' to see the expected fields",
			ExitCode:   output.ExitUsageError,
			Cause:      err,
		}
	}

	var remoteErr *gateway.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Unauthorized() {
			return &output.CLIError{
				Summary:    "the API rejected the credentials",
				Detail:     remoteErr.Error(),
				Suggestion: "Run 'jifmactl login' and try again",
				ExitCode:   output.ExitAuthError,
				Cause:      err,
			}
		}
		return &output.CLIError{
			Summary:  "the API returned an error",
			Detail:   remoteErr.Error(),
			ExitCode: output.ExitRemoteError,
			Cause:    err,
		}
	}

	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return &output.CLIError{
			Summary:    "cannot reach the API",
			Detail:     netErr.Error(),
			Suggestion: "Check api.base_url or pass --api-url",
			ExitCode:   output.ExitRemoteError,
			Cause:      err,
		}
	}

	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return &output.CLIError{
			Summary:    "not logged in",
			Suggestion: "Run 'jifmactl login'",
			ExitCode:   output.ExitAuthError,
			Cause:      err,
		}
	case errors.Is(err, admin.ErrUnknownSection):
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: "Sections are dashboard, news, games, teams, sports, medals and settings",
			ExitCode:   output.ExitUsageError,
			Cause:      err,
		}
	}

	return &output.CLIError{
		Summary:  err.Error(),
		ExitCode: output.ExitGeneral,
		Cause:    err,
	}
}

// HandleError reports err on stderr and returns the process exit code
func HandleError(err error) int {
	if err == nil {
		return output.ExitSuccess
	}
	cliErr := toCLIError(err)

	colors := false
	if cfg != nil {
		colors = cfg.Output.Colors
	}
	mode, _ := output.ParseColorMode(colorFlag)
	printer := output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: colors,
		Err:          os.Stderr,
	})
	printer.FormatError(cliErr)
	return cliErr.ExitCode
}
