package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tair/mediops/internal/schema"
)

func emergencyTable(emergencies []schema.Emergency) *Table {
	t := &Table{Headers: []string{"ID", "CONSUMER", "CONTACT", "TYPE", "LOCATION", "STATUS", "REPORTED"}}
	for _, e := range emergencies {
		t.AddRow(
			strconv.FormatUint(uint64(e.ID), 10),
			e.ConsumerName,
			e.ContactInfo,
			e.EmergencyType,
			e.Location,
			e.Status,
			formatTime(e.Timestamp),
		)
	}
	return t
}

func (a *App) emergenciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emergencies",
		Aliases: []string{"emergency"},
		Short:   "Track emergency requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List emergency requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			emergencies, err := a.source.ListEmergencies(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print(emergencies, func() *Table { return emergencyTable(emergencies) })
		},
	}

	var in schema.InsertEmergency
	var description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Report an emergency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Description = optionalString(cmd.Flags(), "description", description)
			e, err := a.source.CreateEmergency(cmd.Context(), in)
			if err != nil {
				return a.notify("Report emergency", err)
			}
			return a.notify(fmt.Sprintf("Report emergency %d", e.ID), nil)
		},
	}
	create.Flags().StringVar(&in.ConsumerName, "consumer", "", "name of the consumer in need")
	create.Flags().StringVar(&in.ContactInfo, "contact", "", "contact information")
	create.Flags().StringVar(&in.Location, "location", "", "where help is needed")
	create.Flags().StringVar(&in.EmergencyType, "type", "", "kind of emergency")
	create.Flags().StringVar(&description, "description", "", "details")
	create.Flags().StringVar(&in.Status, "status", "", "initial status (default Pending)")

	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Overwrite the status of an emergency: Pending, \"In Progress\" or Resolved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = a.source.UpdateEmergencyStatus(cmd.Context(), id, args[1])
			return a.notify(fmt.Sprintf("Set emergency %d to %s", id, args[1]), err)
		},
	}

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an emergency request",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.notify(fmt.Sprintf("Delete emergency %d", id), a.source.DeleteEmergency(cmd.Context(), id))
		},
	}

	cmd.AddCommand(list, create, status, remove)
	return cmd
}
