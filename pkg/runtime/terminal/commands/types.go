package commands

import (
	"fmt"

	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/spf13/cobra"
)

func NewTypesCmd(registry report.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported report types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, t := range registry.ListTypes() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
