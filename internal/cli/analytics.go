package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (a *App) analyticsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Read daily analytics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List analytics samples, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := a.source.ListAnalytics(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print(samples, func() *Table {
				t := &Table{Headers: []string{"DATE", "REVENUE", "ORDERS", "NEW PATIENTS"}}
				for _, s := range samples {
					t.AddRow(s.Date.String(), "$"+s.Revenue, strconv.Itoa(s.Orders), strconv.Itoa(s.NewPatients))
				}
				return t
			})
		},
	})
	return cmd
}
