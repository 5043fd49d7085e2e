package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/mediops/internal/subscription"
)

func (a *App) subscriptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"plan"},
		Short:   "Show and switch the subscription plan",
	}

	planTable := func(plans []subscription.Plan) *Table {
		t := &Table{Headers: []string{"PLAN", "PRICE", "BENEFITS", ""}}
		for _, p := range plans {
			current := ""
			if p.Name == a.state.PlanName() {
				current = "current"
			}
			t.AddRow(p.Name, p.Price()+"/mo", strings.Join(p.Benefits, ", "), current)
		}
		return t
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the available plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans := subscription.Plans()
			return a.printer().print(plans, func() *Table { return planTable(plans) })
		},
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := subscription.Lookup(a.state.PlanName())
			if err != nil {
				return err
			}
			return a.printer().print(plan, func() *Table {
				t := planTable([]subscription.Plan{plan})
				t.Title = plan.Summary
				return t
			})
		},
	}

	switchPlan := &cobra.Command{
		Use:   "switch <plan>",
		Short: "Switch to Basic, Pro or Premium",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := subscription.Lookup(args[0])
			if err != nil {
				return a.notify("Switch plan", err)
			}
			a.state.Plan = plan.Name
			return a.notify("Switch to "+plan.Name, a.saveState())
		},
	}

	cmd.AddCommand(list, current, switchPlan)
	return cmd
}
