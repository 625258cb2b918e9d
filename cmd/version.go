package cmd

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/record"
)

var (
	commit    = "unknown"
	buildTime = "unknown"
)

// SetBuildInfo sets the commit hash and build time
func SetBuildInfo(c, bt string) {
	commit = c
	buildTime = bt
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the build of jifmactl and the tournament API it talks to.

With --check the API is asked for its sport list, which needs no login,
and the round trip is reported.

Examples:
  jifmactl version                 # Build details and API endpoint
  jifmactl version --check         # Also check the API answers
  jifmactl version --short         # Version string only`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print version string only")
	versionCmd.Flags().Bool("check", false, "check that the API is reachable")
	versionCmd.Flags().Bool("json", false, "output as JSON")
}

type apiCheck struct {
	Reachable bool   `json:"reachable"`
	Sports    int    `json:"sports,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type versionInfo struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	Built     string    `json:"built"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	API       string    `json:"api"`
	Check     *apiCheck `json:"check,omitempty"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	short, _ := cmd.Flags().GetBool("short")
	check, _ := cmd.Flags().GetBool("check")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if short {
		printer.Print("%s", version)
		return nil
	}

	info := versionInfo{
		Version:   version,
		Commit:    commit,
		Built:     buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		API:       cfg.API.BaseURL,
	}

	var checkErr error
	if check {
		start := time.Now()
		sports, err := fetchPublic(cmd.Context(), record.KindSport)
		info.Check = &apiCheck{Reachable: err == nil, Sports: len(sports), LatencyMS: time.Since(start).Milliseconds()}
		if err != nil {
			info.Check.Error = err.Error()
			checkErr = &output.CLIError{
				Summary:    "API is not reachable at " + cfg.API.BaseURL,
				Detail:     err.Error(),
				Suggestion: "Check api.base_url with 'jifmactl config'",
				ExitCode:   output.ExitRemoteError,
				Cause:      err,
			}
		}
	}

	if jsonOutput {
		if err := printer.JSON(info); err != nil {
			return err
		}
		return checkErr
	}

	printer.Print("jifmactl version %s", info.Version)
	printer.Print("  commit:     %s", info.Commit)
	printer.Print("  built:      %s", info.Built)
	printer.Print("  go version: %s", info.GoVersion)
	printer.Print("  platform:   %s", info.Platform)
	printer.Print("  api:        %s", info.API)

	if info.Check != nil && checkErr == nil {
		printer.Success("API answered in %dms (%d sports)", info.Check.LatencyMS, info.Check.Sports)
	}
	return checkErr
}
