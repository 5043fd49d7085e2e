package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tair/mediops/internal/console"
	"github.com/tair/mediops/internal/schema"
)

func (a *App) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the operator dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.source.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := console.LoadStats(cmd.Context(), a.source, a.now())
			if err != nil {
				return err
			}

			return a.printer().print(stats, func() *Table {
				title := "Welcome back, " + greeting(op)
				if a.source.ReadOnly() {
					title += " (demo data)"
				}
				t := &Table{Title: title, Headers: []string{"METRIC", "VALUE"}}
				t.AddRow("Total consumers", strconv.Itoa(stats.TotalConsumers))
				t.AddRow("Active consumers", strconv.Itoa(stats.ActiveConsumers))
				t.AddRow("New this month", strconv.Itoa(stats.NewThisMonth))
				t.AddRow("Low stock items (<= "+strconv.Itoa(console.LowStockThreshold)+")", strconv.Itoa(stats.LowStockItems))
				t.AddRow("Open emergencies", strconv.Itoa(stats.OpenEmergencies))
				t.AddRow("Plan", a.state.PlanName())
				return t
			})
		},
	}
}

func greeting(op schema.Operator) string {
	if op.FirstName != nil && *op.FirstName != "" {
		return *op.FirstName
	}
	return op.Username
}
