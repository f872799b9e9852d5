// Package commands implements the CLI commands for bridle.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kaiiiiiiiii/bridle/cmd"
	"github.com/kaiiiiiiiii/bridle/internal/cli"
	"github.com/kaiiiiiiiii/bridle/internal/config"
	bridleerrors "github.com/kaiiiiiiiii/bridle/internal/errors"
	"github.com/kaiiiiiiiii/bridle/internal/logging"
	"github.com/kaiiiiiiiii/bridle/internal/profile"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configPath holds the value of the --config flag.
var configPath string

// cfg is the loaded configuration; configLoadErr holds any load failure
// for later reporting.
var (
	cfg           *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress per-resource output; notes and errors are still shown")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from config, else text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $XDG_CONFIG_HOME/bridle/config.toml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("bridle version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "bridle",
	Short: "Manage and convert AI assistant configuration profiles",
	Long: `bridle manages configuration profiles for AI coding assistants
(Claude Code, OpenCode, Goose and Gemini CLI).

A profile holds MCP servers, skills, agents, commands and settings for one
harness. bridle copy converts a profile from one harness to another,
adapting names and fields to what the target supports and reporting
exactly what was copied, transformed, skipped or warned about.`,
	Example: `  # Convert a Claude Code profile for Goose
  bridle copy claude-code work goose

  # Preview a conversion without writing anything
  bridle copy claude-code work opencode --dry-run

  # Show what each harness supports
  bridle harness list

  See Also: bridle profile, bridle harness`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		// doctor reports a broken configuration itself.
		switch cmd.Name() {
		case "help", "version", "doctor":
			return nil
		}
		if configLoadErr != nil {
			return bridleerrors.NewConfigError(configLoadErr)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return bridleerrors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	v := verbosity
	if v == 0 {
		if val, ok := os.LookupEnv("BRIDLE_DEBUG"); ok {
			switch val {
			case "1", "true":
				v = 2
			case "2":
				v = 3
			}
		}
	}
	level := logging.LevelFromVerbosity(v)
	if quiet {
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	format := logging.Format(logFormat)
	if format == "" && cfg != nil {
		format = logging.Format(cfg.LogFormat)
	}

	var primary slog.Handler
	switch format {
	case logging.FormatJSON:
		primary = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText, "":
		primary = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return bridleerrors.NewUserError(
			errors.Newf("invalid log format %q", logFormat),
			"Use --log-format text or --log-format json")
	}

	handlers := []slog.Handler{primary}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return bridleerrors.NewUserError(err, "failed to open log file")
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// profiles returns the profile store named by the configuration.
func profiles() *profile.Manager {
	return profile.NewManager(cfg.ProfilesDir, cli.Resolver())
}

// Main runs the root command and returns the process exit code, printing
// any error and its suggestion to stderr.
func Main(stderr io.Writer) int {
	err := rootCmd.Execute()
	if err == nil {
		return bridleerrors.ExitSuccess
	}
	printError(stderr, err)
	return bridleerrors.CodeOf(err)
}

func printError(w io.Writer, err error) {
	var exitErr *bridleerrors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
		}
		if exitErr.Suggestion != "" {
			fmt.Fprintf(w, "Suggestion: %s\n", exitErr.Suggestion)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
