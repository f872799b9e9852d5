package commands

import (
	"github.com/spf13/cobra"

	bridleerrors "github.com/kaiiiiiiiii/bridle/internal/errors"
	"github.com/kaiiiiiiiii/bridle/internal/report"
)

func init() {
	reportCmd.AddCommand(reportSchemaCmd)
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with copy reports",
}

var reportSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of 'bridle copy --json' output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := report.Schema()
		if err != nil {
			return bridleerrors.NewSystemError(err, "")
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	},
}
