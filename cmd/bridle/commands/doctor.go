package commands

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaiiiiiiiii/bridle/internal/capability"
	"github.com/kaiiiiiiiii/bridle/internal/cli"
	"github.com/kaiiiiiiiii/bridle/internal/config"
	"github.com/kaiiiiiiiii/bridle/internal/doctor"
	bridleerrors "github.com/kaiiiiiiiii/bridle/internal/errors"
	"github.com/kaiiiiiiiii/bridle/internal/paths"
	"github.com/kaiiiiiiiii/bridle/internal/profile"
)

var (
	doctorJSON    bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair fixable issues, then check again")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and profile store issues",
	Long: `Run diagnostic checks on the bridle configuration, the installed
harnesses and the profile store.

The store check finds copies that were interrupted while being committed.
--fix finishes their cleanup, restoring any profile that had been moved
aside, and removes leftover staging directories.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// errDoctorWarnings and errDoctorErrors carry the doctor exit codes.
var (
	errDoctorWarnings = errors.New("doctor found warnings")
	errDoctorErrors   = errors.New("doctor found errors")
)

// doctorOutput is the JSON document of a doctor run.
type doctorOutput struct {
	*doctor.Report
	Fixes []doctor.FixResult `json:"fixes,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctorRunner()

	report := runner.Run(cmd.Context())
	var fixes []doctor.FixResult
	if doctorFix {
		fixes = runner.Fix()
		if len(fixes) > 0 {
			report = runner.Run(cmd.Context())
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case doctorJSON:
		if err := writeJSON(out, doctorOutput{Report: report, Fixes: fixes}); err != nil {
			return err
		}
	case !quiet:
		printDoctor(out, report, fixes)
	}

	if report.HasErrors() {
		return &bridleerrors.ExitError{Err: errDoctorErrors, Code: bridleerrors.ExitSystem}
	}
	if report.HasWarnings() {
		return &bridleerrors.ExitError{Err: errDoctorWarnings, Code: bridleerrors.ExitUser}
	}
	return nil
}

// doctorRunner wires every check against the loaded configuration. The
// config check still runs when loading failed.
func doctorRunner() *doctor.Runner {
	runner := doctor.NewRunner(&doctor.ConfigCheck{Path: config.Path(), LoadErr: configLoadErr})

	if infos, err := cli.Harnesses(); err == nil {
		runner.AddCheck(&doctor.HarnessCheck{Harnesses: infos})
	}

	root := paths.ProfilesDir()
	if cfg != nil {
		root = cfg.ProfilesDir
	}
	ids := capability.Default().Harnesses()
	resolver := cli.Resolver()
	var live []string
	for _, id := range ids {
		if dir := paths.LiveConfigDir(id); dir != "" {
			live = append(live, dir)
		}
	}
	runner.AddCheck(&doctor.StoreCheck{Root: root, Harnesses: ids, LiveDirs: live})
	runner.AddCheck(&doctor.ProfileCheck{
		Profiles:  profile.NewManager(root, resolver),
		Resolver:  resolver,
		Harnesses: ids,
	})
	runner.AddCheck(&doctor.PermissionCheck{Root: root})
	return runner
}

func printDoctor(w io.Writer, report *doctor.Report, fixes []doctor.FixResult) {
	for _, f := range fixes {
		mark := color.GreenString("fixed")
		if !f.Fixed {
			mark = color.RedString("failed")
		}
		fmt.Fprintf(w, "%s %s: %s\n", mark, f.Path, f.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}

	shown := false
	for _, r := range report.Results {
		if !doctorVerbose && r.Status != doctor.SeverityError && r.Status != doctor.SeverityWarning {
			continue
		}
		shown = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(r.Status), r.Category, r.Name, r.Message)
		if r.FixHint != "" && r.Status >= doctor.SeverityWarning {
			fmt.Fprintf(w, "  hint: %s\n", r.FixHint)
		}
	}
	if shown {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
