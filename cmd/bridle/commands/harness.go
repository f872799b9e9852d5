package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/capability"
	"github.com/kaiiiiiiiii/bridle/internal/cli"
	bridleerrors "github.com/kaiiiiiiiii/bridle/internal/errors"
)

var harnessJSON bool

func init() {
	harnessListCmd.Flags().BoolVar(&harnessJSON, "json", false, "Output in JSON format")
	harnessShowCmd.Flags().BoolVar(&harnessJSON, "json", false, "Output in JSON format")
	harnessCmd.AddCommand(harnessListCmd, harnessShowCmd)
	rootCmd.AddCommand(harnessCmd)
}

var harnessCmd = &cobra.Command{
	Use:     "harness",
	Aliases: []string{"harnesses"},
	Short:   "Inspect supported harnesses",
}

var harnessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported harnesses and what they support",
	Args:  cobra.NoArgs,
	RunE:  runHarnessList,
}

var harnessShowCmd = &cobra.Command{
	Use:   "show <harness>",
	Short: "Show the capabilities of one harness",
	Args:  cobra.ExactArgs(1),
	RunE:  runHarnessShow,
}

type harnessJSONOutput struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	LiveDir        string            `json:"live_dir"`
	Installed      bool              `json:"installed"`
	ModelSelection bool              `json:"model_selection"`
	Kinds          map[string]string `json:"kinds"`
	Naming         map[string]string `json:"naming,omitempty"`
	Transports     map[string]string `json:"transport_remaps,omitempty"`
	AgentFields    []string          `json:"agent_fields,omitempty"`
}

func toHarnessJSON(h cli.HarnessInfo) harnessJSONOutput {
	out := harnessJSONOutput{
		ID:             h.ID,
		Name:           h.Name,
		LiveDir:        h.LiveDir,
		Installed:      h.Installed,
		ModelSelection: h.ModelSelection,
		Kinds:          make(map[string]string),
		AgentFields:    h.AgentFields,
	}
	for _, k := range canonical.Kinds() {
		out.Kinds[string(k)] = string(h.Support(k))
		if r := h.NamingRule(k); r != "" && k.Named() {
			if out.Naming == nil {
				out.Naming = make(map[string]string)
			}
			out.Naming[string(k)] = string(r)
		}
	}
	for from, to := range h.Transports {
		if out.Transports == nil {
			out.Transports = make(map[string]string)
		}
		out.Transports[string(from)] = string(to)
	}
	return out
}

func runHarnessList(cmd *cobra.Command, _ []string) error {
	infos, err := cli.Harnesses()
	if err != nil {
		return bridleerrors.NewSystemError(err, "")
	}
	out := cmd.OutOrStdout()

	if harnessJSON {
		list := make([]harnessJSONOutput, 0, len(infos))
		for _, h := range infos {
			list = append(list, toHarnessJSON(h))
		}
		return writeJSON(out, list)
	}

	bold := color.New(color.Bold).SprintFunc()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, bold("ID"), "\t", bold("NAME"), "\t", bold("INSTALLED"))
	for _, k := range canonical.Kinds() {
		fmt.Fprint(tw, "\t", bold(string(k)))
	}
	fmt.Fprintln(tw)
	for _, h := range infos {
		installed := "no"
		if h.Installed {
			installed = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s", h.ID, h.Name, installed)
		for _, k := range canonical.Kinds() {
			fmt.Fprintf(tw, "\t%s", supportMark(h.Support(k)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func runHarnessShow(cmd *cobra.Command, args []string) error {
	if err := checkHarness(args[0]); err != nil {
		return err
	}
	h, err := cli.Harness(args[0])
	if err != nil {
		return bridleerrors.NewSystemError(err, "")
	}
	out := cmd.OutOrStdout()
	if harnessJSON {
		return writeJSON(out, toHarnessJSON(h))
	}
	printHarness(out, h)
	return nil
}

func printHarness(w io.Writer, h cli.HarnessInfo) {
	fmt.Fprintf(w, "%s (%s)\n", h.Name, h.ID)
	fmt.Fprintf(w, "  config dir: %s", h.LiveDir)
	if !h.Installed {
		fmt.Fprint(w, " (not found)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  model selection: %t\n", h.ModelSelection)
	if len(h.AgentFields) > 0 {
		fmt.Fprintf(w, "  agent fields: %v\n", h.AgentFields)
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  KIND\tSUPPORT\tNAMING")
	for _, k := range canonical.Kinds() {
		naming := "-"
		if k.Named() {
			naming = string(h.NamingRule(k))
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", k, h.Support(k), naming)
	}
	_ = tw.Flush()

	if len(h.Transports) > 0 {
		fmt.Fprintln(w, "\n  transport remaps:")
		for _, t := range []canonical.Transport{
			canonical.TransportStdio, canonical.TransportSSE,
			canonical.TransportHTTP, canonical.TransportStreamableHTTP,
		} {
			if to, ok := h.Transports[t]; ok {
				fmt.Fprintf(w, "    %s -> %s\n", t, to)
			}
		}
	}
}

func supportMark(s capability.Support) string {
	switch s {
	case capability.Supported:
		return color.GreenString("yes")
	case capability.NotApplicable:
		return "n/a"
	default:
		return color.New(color.Faint).Sprint("no")
	}
}
