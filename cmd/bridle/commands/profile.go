package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/cli"
	"github.com/kaiiiiiiiii/bridle/internal/cli/prompt"
	"github.com/kaiiiiiiiii/bridle/internal/config"
	"github.com/kaiiiiiiiii/bridle/internal/editor"
	bridleerrors "github.com/kaiiiiiiiii/bridle/internal/errors"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/internal/logging"
	"github.com/kaiiiiiiiii/bridle/internal/profile"
)

var (
	profileJSON        bool
	profileFromCurrent bool
	profileYes         bool
	profileShowSecrets bool
)

func init() {
	profileListCmd.Flags().BoolVar(&profileJSON, "json", false, "Output in JSON format")
	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output in JSON format")
	profileShowCmd.Flags().BoolVar(&profileShowSecrets, "show-secrets", false, "Reveal masked secrets in env values and headers")
	profileCreateCmd.Flags().BoolVar(&profileFromCurrent, "from-current", false,
		"capture the harness's live configuration and mark the profile active")
	profileDeleteCmd.Flags().BoolVarP(&profileYes, "yes", "y", false, "delete without asking")

	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileCreateCmd, profileEditCmd, profileSwitchCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage harness profiles",
	Long: `Manage the profiles stored for each harness.

Profiles live under profiles_dir from the configuration file, one
directory per harness and profile.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list <harness>",
	Short: "List the profiles of a harness",
	Example: `  bridle profile list claude-code
  bridle profile list goose --json`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <harness> <name>",
	Short: "Show the resources in a profile",
	Long: `Show the resources in a profile as the harness adapter reads them.

Environment variables and headers are masked by default to protect secrets.
Use --show-secrets to reveal the full values.`,
	Args: cobra.ExactArgs(2),
	RunE: runProfileShow,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <harness> <name>",
	Short: "Create a profile",
	Example: `  # Create an empty profile
  bridle profile create opencode scratch

  # Capture the current Claude Code configuration
  bridle profile create claude-code default --from-current`,
	Args: cobra.ExactArgs(2),
	RunE: runProfileCreate,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <harness> <name>",
	Short: "Open a profile's configuration file in your editor",
	Long: `Open the main configuration file of a profile in $EDITOR, falling
back to $VISUAL, nano and vi.`,
	Args: cobra.ExactArgs(2),
	RunE: runProfileEdit,
}

var profileSwitchCmd = &cobra.Command{
	Use:   "switch <harness> <name>",
	Short: "Apply a profile to the harness's live configuration",
	Long: `Replace the harness's live configuration directory with a profile
and mark the profile active.

The live directory is first saved back into the active profile, so edits
made since it was applied are kept. Files that are not part of the new
profile are removed from the live directory.`,
	Example: `  bridle profile switch claude-code work`,
	Args:    cobra.ExactArgs(2),
	RunE:    runProfileSwitch,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <harness> <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileDelete,
}

func checkHarness(id string) error {
	if err := cli.ValidateHarness(id); err != nil {
		return bridleerrors.NewUserError(err, "Run 'bridle harness list' to see supported harnesses")
	}
	return nil
}

func checkProfile(h, name string) error {
	if err := checkHarness(h); err != nil {
		return err
	}
	if err := profile.ValidateName(name); err != nil {
		return nameError(err, name)
	}
	return nil
}

type profileListOutput struct {
	Harness  string   `json:"harness"`
	Active   string   `json:"active,omitempty"`
	Profiles []string `json:"profiles"`
}

func runProfileList(cmd *cobra.Command, args []string) error {
	h := args[0]
	if err := checkHarness(h); err != nil {
		return err
	}
	names, err := profiles().List(h)
	if err != nil {
		return bridleerrors.NewSystemError(err, "")
	}
	active := cfg.Active[h]

	out := cmd.OutOrStdout()
	if profileJSON {
		if names == nil {
			names = []string{}
		}
		return writeJSON(out, profileListOutput{Harness: h, Active: active, Profiles: names})
	}

	if len(names) == 0 {
		fmt.Fprintf(out, "No profiles for %s.\n", h)
		return nil
	}
	for _, n := range names {
		marker := " "
		if n == active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, n)
	}
	return nil
}

type serverJSON struct {
	Name      string            `json:"name"`
	Transport string            `json:"transport"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	URL       string            `json:"url,omitempty"`
	Enabled   bool              `json:"enabled"`
	Env       map[string]string `json:"env,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

type profileShowOutput struct {
	Harness  string             `json:"harness"`
	Profile  string             `json:"profile"`
	Path     string             `json:"path"`
	Active   bool               `json:"active"`
	Servers  []serverJSON       `json:"mcp"`
	Skills   []string           `json:"skills"`
	Agents   []string           `json:"agents"`
	Commands []string           `json:"commands"`
	Settings canonical.Settings `json:"settings"`
	Error    string             `json:"error,omitempty"`
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	h, name := args[0], args[1]
	if err := checkProfile(h, name); err != nil {
		return err
	}
	store := profiles()
	if !store.Exists(h, name) {
		return bridleerrors.NewUserError(
			errors.Wrapf(profile.ErrNotFound, "%s/%s", h, name),
			fmt.Sprintf("Run 'bridle profile list %s' to see available profiles", h))
	}

	show := profileShowOutput{
		Harness: h,
		Profile: name,
		Path:    store.Path(h, name),
		Active:  cfg.Active[h] == name,
	}

	adapter, err := cli.Resolver().Get(h)
	if err != nil {
		return bridleerrors.NewUserError(err, "")
	}
	p, err := adapter.Extract(cmd.Context(), show.Path)
	if err != nil {
		if errors.Is(err, harness.ErrNotFound) {
			return bridleerrors.NewUserError(err, "")
		}
		// A malformed file should not hide the rest of the report.
		logging.FromContext(cmd.Context()).Warn("reading profile", "error", err)
		show.Error = err.Error()
		p = canonical.New()
	}

	for _, s := range p.MCPServers {
		env, headers := s.Env, s.Headers
		if !profileShowSecrets {
			env, headers = logging.MaskEnv(env), logging.MaskEnv(headers)
		}
		show.Servers = append(show.Servers, serverJSON{
			Name:      s.Name,
			Transport: string(s.Transport),
			Command:   s.Command,
			Args:      s.Args,
			URL:       s.URL,
			Enabled:   s.Enabled,
			Env:       env,
			Headers:   headers,
		})
	}
	show.Skills = nonNil(p.Names(canonical.KindSkills))
	show.Agents = nonNil(p.Names(canonical.KindAgents))
	show.Commands = nonNil(p.Names(canonical.KindCommands))
	show.Settings = p.Settings
	if show.Servers == nil {
		show.Servers = []serverJSON{}
	}

	out := cmd.OutOrStdout()
	if profileJSON {
		return writeJSON(out, show)
	}
	printProfile(out, show)
	return nil
}

func printProfile(w io.Writer, s profileShowOutput) {
	title := s.Harness + "/" + s.Profile
	if s.Active {
		title += " (active)"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "  path: %s\n", s.Path)
	if s.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", s.Error)
	}

	fmt.Fprintf(w, "\nMCP servers (%d)\n", len(s.Servers))
	for _, srv := range s.Servers {
		state := ""
		if !srv.Enabled {
			state = " [disabled]"
		}
		target := srv.URL
		if srv.Command != "" {
			target = strings.TrimSpace(srv.Command + " " + strings.Join(srv.Args, " "))
		}
		fmt.Fprintf(w, "  %s (%s) %s%s\n", srv.Name, srv.Transport, target, state)
		for _, k := range harness.SortedKeys(srv.Env) {
			fmt.Fprintf(w, "    %s=%s\n", k, srv.Env[k])
		}
	}

	for _, sec := range []struct {
		title string
		names []string
	}{
		{"Skills", s.Skills},
		{"Agents", s.Agents},
		{"Commands", s.Commands},
	} {
		fmt.Fprintf(w, "\n%s (%d)\n", sec.title, len(sec.names))
		for _, n := range sec.names {
			fmt.Fprintf(w, "  %s\n", n)
		}
	}

	if !s.Settings.IsZero() {
		fmt.Fprintln(w, "\nSettings")
		if s.Settings.Model != "" {
			fmt.Fprintf(w, "  model: %s\n", s.Settings.Model)
		}
		if s.Settings.Theme != "" {
			fmt.Fprintf(w, "  theme: %s\n", s.Settings.Theme)
		}
	}
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	h, name := args[0], args[1]
	if err := checkProfile(h, name); err != nil {
		return err
	}
	store := profiles()

	var dir string
	var err error
	if profileFromCurrent {
		dir, err = store.CreateFromCurrent(cmd.Context(), h, name)
	} else {
		dir, err = store.Create(h, name)
	}
	switch {
	case errors.Is(err, profile.ErrExists):
		return bridleerrors.NewUserError(err, fmt.Sprintf("Run 'bridle profile delete %s %s' first, or pick another name", h, name))
	case errors.Is(err, profile.ErrNoLiveConfig):
		return bridleerrors.NewUserError(err, "Is the harness installed and configured?")
	case err != nil:
		return bridleerrors.NewSystemError(err, "")
	}

	if profileFromCurrent {
		cfg.SetActive(h, name)
		if err := config.Save(config.Path(), cfg); err != nil {
			return bridleerrors.NewSystemError(err, "The profile was created but could not be marked active")
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s/%s at %s\n", h, name, dir)
	return nil
}

func newEditor(cmd *cobra.Command) *editor.Editor {
	e := editor.New()
	e.Stdin, e.Stdout, e.Stderr = cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()
	return e
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	h, name := args[0], args[1]
	if err := checkProfile(h, name); err != nil {
		return err
	}
	store := profiles()
	if !store.Exists(h, name) {
		return bridleerrors.NewUserError(
			errors.Wrapf(profile.ErrNotFound, "%s/%s", h, name),
			fmt.Sprintf("Run 'bridle profile list %s' to see available profiles", h))
	}

	path := store.Path(h, name)
	adapter, err := cli.Resolver().Get(h)
	if err != nil {
		return bridleerrors.NewUserError(err, "")
	}
	if f, ok := adapter.(harness.ConfigFiler); ok {
		path = filepath.Join(path, f.ConfigFile())
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Location: %s\n", path)
	if err := newEditor(cmd).Open(cmd.Context(), path); err != nil {
		if errors.Is(err, editor.ErrNoEditor) {
			return bridleerrors.NewUserError(err, "Set $EDITOR")
		}
		return bridleerrors.NewSystemError(err, "")
	}
	return nil
}

func runProfileSwitch(cmd *cobra.Command, args []string) error {
	h, name := args[0], args[1]
	if err := checkProfile(h, name); err != nil {
		return err
	}
	store := profiles()
	if !store.Exists(h, name) {
		return bridleerrors.NewUserError(
			errors.Wrapf(profile.ErrNotFound, "%s/%s", h, name),
			fmt.Sprintf("Run 'bridle profile list %s' to see available profiles", h))
	}

	if err := store.Switch(cmd.Context(), h, cfg.Active[h], name); err != nil {
		if errors.Is(err, profile.ErrNoLiveConfig) {
			return bridleerrors.NewUserError(err, "This harness has no live configuration directory on this platform")
		}
		return bridleerrors.NewSystemError(err, "Run 'bridle doctor' to look for an interrupted switch")
	}

	cfg.SetActive(h, name)
	if err := config.Save(config.Path(), cfg); err != nil {
		return bridleerrors.NewSystemError(err, "The profile was applied but could not be marked active")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Switched %s to %s (%s)\n", h, name, store.LiveDir(h))
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	h, name := args[0], args[1]
	if err := checkProfile(h, name); err != nil {
		return err
	}
	store := profiles()
	if !store.Exists(h, name) {
		return bridleerrors.NewUserError(
			errors.Wrapf(profile.ErrNotFound, "%s/%s", h, name),
			fmt.Sprintf("Run 'bridle profile list %s' to see available profiles", h))
	}

	if !profileYes {
		ok, err := prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.ErrOrStderr()).
			Confirm(fmt.Sprintf("Delete profile %s/%s?", h, name), false)
		if err != nil {
			return bridleerrors.NewUserError(err, "Pass --yes to delete without asking")
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := store.Delete(h, name); err != nil {
		return bridleerrors.NewSystemError(err, "")
	}
	if cfg.Active[h] == name {
		delete(cfg.Active, h)
		if err := config.Save(config.Path(), cfg); err != nil {
			return bridleerrors.NewSystemError(err, "The profile was deleted but is still marked active")
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", h, name)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding JSON")
}
