package commands

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/capability"
	"github.com/kaiiiiiiiii/bridle/internal/cli"
	"github.com/kaiiiiiiiii/bridle/internal/cli/prompt"
	"github.com/kaiiiiiiiii/bridle/internal/copier"
	bridleerrors "github.com/kaiiiiiiiii/bridle/internal/errors"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/internal/profile"
	"github.com/kaiiiiiiiii/bridle/internal/report"
	"github.com/kaiiiiiiiii/bridle/internal/selection"
)

var (
	copyInclude     []string
	copyExclude     []string
	copySelect      []string
	copyForce       bool
	copyDryRun      bool
	copyInteractive bool
	copyNoTransform bool
	copyJSON        bool
)

func init() {
	copyCmd.Flags().StringSliceVar(&copyInclude, "include", nil,
		"copy only these kinds: mcp, skills, agents, commands, settings")
	copyCmd.Flags().StringSliceVar(&copyExclude, "exclude", nil,
		"skip these kinds (ignored when --include is set)")
	copyCmd.Flags().StringArrayVar(&copySelect, "select", nil,
		"copy only matching resources, as kind:name or kind:pattern (repeatable)")
	copyCmd.Flags().BoolVarP(&copyForce, "force", "f", false,
		"merge into an existing target profile")
	copyCmd.Flags().BoolVarP(&copyDryRun, "dry-run", "n", false,
		"report what would happen without writing")
	copyCmd.Flags().BoolVarP(&copyInteractive, "interactive", "i", false,
		"pick the resources to copy interactively")
	copyCmd.Flags().BoolVar(&copyNoTransform, "no-transform", false,
		"keep resource names as they are, warning about invalid ones")
	copyCmd.Flags().BoolVar(&copyJSON, "json", false,
		"output the report as JSON")
	copyCmd.MarkFlagsMutuallyExclusive("interactive", "select")
	rootCmd.AddCommand(copyCmd)
}

var copyCmd = &cobra.Command{
	Use:   "copy <src-harness> <src-profile> <dst-harness> [dst-profile]",
	Short: "Copy a profile to another harness",
	Long: `Copy a profile from one harness to another, adapting every resource to
the target.

Resources the target cannot hold are skipped, names that break the
target's naming rule are rewritten, and anything that needed attention is
listed in the report notes. The target profile is written in one step: a
failed copy leaves it untouched.

The target profile name defaults to the source profile name. An existing
target profile is only modified with --force, which merges into it.`,
	Example: `  # Copy the claude-code "work" profile to goose
  bridle copy claude-code work goose

  # Copy only MCP servers and skills into a differently named profile
  bridle copy claude-code work opencode personal --include mcp,skills

  # Copy the github server and every skill starting with "review"
  bridle copy claude-code work gemini --select mcp:github --select 'skills:review*'

  # Preview as JSON
  bridle copy claude-code work goose --dry-run --json`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runCopy,
}

func runCopy(cmd *cobra.Command, args []string) error {
	req := copier.Request{
		Source:      report.Identity{Harness: args[0], Profile: args[1]},
		Target:      report.Identity{Harness: args[2], Profile: args[1]},
		Force:       copyForce,
		DryRun:      copyDryRun,
		NoTransform: copyNoTransform,
	}
	if len(args) == 4 {
		req.Target.Profile = args[3]
	}
	for _, name := range []string{req.Source.Profile, req.Target.Profile} {
		if err := profile.ValidateName(name); err != nil {
			return nameError(err, name)
		}
	}

	opts, err := copyOptions()
	if err != nil {
		return bridleerrors.NewUserError(err, "Kinds are mcp, skills, agents, commands and settings")
	}
	req.Options = opts

	store := profiles()
	if copyInteractive {
		picked, err := pickResources(cmd, store, req.Source, opts)
		if err != nil {
			return err
		}
		req.Options = picked
	}

	o := copier.New(cli.Resolver(), store)
	rep, err := o.Copy(cmd.Context(), req)

	format := report.FormatText
	if copyJSON {
		format = report.FormatJSON
	}
	if rerr := report.Render(cmd.OutOrStdout(), rep, report.RenderOptions{Format: format, Quiet: quiet}); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return copyError(err)
	}
	return nil
}

// copyOptions builds the kind filter and selection from flags, falling
// back to the configured exclusions.
func copyOptions() (selection.Options, error) {
	var opts selection.Options
	var err error

	if opts.Include, err = canonical.ParseKinds(copyInclude); err != nil {
		return opts, errors.Wrap(err, "--include")
	}
	if opts.Exclude, err = canonical.ParseKinds(copyExclude); err != nil {
		return opts, errors.Wrap(err, "--exclude")
	}
	if len(copyInclude) == 0 && len(copyExclude) == 0 && cfg != nil {
		opts.Exclude = cfg.ExcludedKinds()
	}
	if opts.Selection, err = selection.ParseSelection(copySelect); err != nil {
		return opts, errors.Wrap(err, "--select")
	}
	return opts, nil
}

// pickResources lets the user choose among the source resources that pass
// the kind filter. A terminal gets the fuzzy finder, anything else a
// numbered list.
func pickResources(cmd *cobra.Command, store *profile.Manager, src report.Identity, opts selection.Options) (selection.Options, error) {
	adapter, err := cli.Resolver().Get(src.Harness)
	if err != nil {
		return opts, bridleerrors.NewUserError(err, "Run 'bridle harness list' to see supported harnesses")
	}
	p, err := adapter.Extract(cmd.Context(), store.Path(src.Harness, src.Profile))
	if err != nil {
		return opts, copyError(err)
	}

	items := prompt.Items(p, opts.Kinds())
	var picker prompt.Picker
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		picker = prompt.FuzzyPicker{Header: fmt.Sprintf("Resources in %s (Tab to mark, Enter to confirm)", src)}
	} else {
		picker = prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	picked, err := picker.Pick(items)
	if err != nil {
		return opts, bridleerrors.NewUserError(err, "")
	}
	if len(picked) == 0 {
		return opts, bridleerrors.NewUserError(copier.ErrNothingToCopy, "Mark at least one resource with Tab")
	}
	return prompt.Options(picked), nil
}

// copyError maps copy failures to exit codes with a suggestion.
func copyError(err error) error {
	var fe *copier.FatalError
	if !errors.As(err, &fe) {
		if errors.Is(err, harness.ErrNotFound) {
			return bridleerrors.NewUserError(err, "Run 'bridle profile list <harness>' to see available profiles")
		}
		return bridleerrors.NewSystemError(err, "")
	}

	var suggestion string
	switch fe.Kind {
	case copier.SourceNotFound:
		if errors.Is(err, capability.ErrUnknownHarness) {
			suggestion = "Run 'bridle harness list' to see supported harnesses"
			break
		}
		suggestion = fmt.Sprintf("Run 'bridle profile list %s' to see available profiles", fe.Harness)
	case copier.TargetAlreadyExists:
		suggestion = "Re-run with --force to merge into the existing profile, or name a different target profile"
	case copier.TargetHarnessUnsupported:
		suggestion = "Run 'bridle harness list' to see supported harnesses"
	case copier.NothingToCopy:
		suggestion = "Check --include, --exclude and --select; disabled MCP servers need an exact --select entry"
	case copier.StageWriteFailed:
		suggestion = "The target profile was not modified; check permissions and free disk space"
	case copier.CommitFailed:
		suggestion = fmt.Sprintf("Inspect the %s/%s profile and its .bridle-commit marker, then re-run with --force", fe.Harness, fe.Profile)
	}

	if fe.Kind.Severity() == copier.SeverityUser {
		return bridleerrors.NewUserError(err, suggestion)
	}
	return bridleerrors.NewSystemError(err, suggestion)
}

func nameError(err error, name string) error {
	suggestion := "Profile names are lowercase letters, digits and hyphens"
	if s := profile.Suggest(name); s != "" {
		suggestion = fmt.Sprintf("Try %q", s)
	}
	return bridleerrors.NewUserError(err, suggestion)
}
