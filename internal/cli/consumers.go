package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

// optionalString is nil unless the flag was given
func optionalString(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

func optionalDate(flags *pflag.FlagSet, name, value string) (*schema.Date, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	d, err := schema.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// changedString turns a flag into a partial-update field; an empty value
// clears the field
func changedString(flags *pflag.FlagSet, name, value string) schema.Optional[string] {
	switch {
	case !flags.Changed(name):
		return schema.Optional[string]{}
	case value == "":
		return schema.Null[string]()
	}
	return schema.Some(value)
}

func changedDate(flags *pflag.FlagSet, name, value string) (schema.Optional[schema.Date], error) {
	switch {
	case !flags.Changed(name):
		return schema.Optional[schema.Date]{}, nil
	case value == "":
		return schema.Null[schema.Date](), nil
	}
	d, err := schema.ParseDate(value)
	if err != nil {
		return schema.Optional[schema.Date]{}, err
	}
	return schema.Some(d), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func consumerTable(consumers []schema.Consumer) *Table {
	t := &Table{Headers: []string{"ID", "NAME", "EMAIL", "PHONE", "STATUS", "CREATED"}}
	for _, c := range consumers {
		t.AddRow(
			strconv.FormatUint(uint64(c.ID), 10),
			c.FirstName+" "+c.LastName,
			c.Email,
			deref(c.PhoneNumber),
			c.Status,
			formatTime(c.CreatedAt),
		)
	}
	return t
}

type consumerFlags struct {
	firstName, lastName, email, phone, address, dob, history, status string
}

func (f *consumerFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.firstName, "first-name", "", "first name")
	flags.StringVar(&f.lastName, "last-name", "", "last name")
	flags.StringVar(&f.email, "email", "", "email address")
	flags.StringVar(&f.phone, "phone", "", "phone number")
	flags.StringVar(&f.address, "address", "", "postal address")
	flags.StringVar(&f.dob, "dob", "", "date of birth, YYYY-MM-DD")
	flags.StringVar(&f.history, "history", "", "medical history")
	flags.StringVar(&f.status, "status", "", "status (default active)")
}

func (a *App) consumersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "consumers",
		Aliases: []string{"consumer", "patients"},
		Short:   "Manage consumer records",
	}

	var search, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List consumers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			consumers, err := a.source.ListConsumers(cmd.Context(), gateway.ConsumerFilter{Search: search, Status: status})
			if err != nil {
				return err
			}
			return a.printer().print(consumers, func() *Table { return consumerTable(consumers) })
		},
	}
	list.Flags().StringVar(&search, "search", "", "match first name, last name or email")
	list.Flags().StringVar(&status, "status", "", "only consumers with this status")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one consumer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.source.GetConsumer(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printer().print(c, func() *Table { return consumerTable([]schema.Consumer{c}) })
		},
	}

	var createFlags consumerFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			dob, err := optionalDate(flags, "dob", createFlags.dob)
			if err != nil {
				return a.notify("Create consumer", err)
			}
			c, err := a.source.CreateConsumer(cmd.Context(), schema.InsertConsumer{
				FirstName:      createFlags.firstName,
				LastName:       createFlags.lastName,
				Email:          createFlags.email,
				PhoneNumber:    optionalString(flags, "phone", createFlags.phone),
				Address:        optionalString(flags, "address", createFlags.address),
				DateOfBirth:    dob,
				MedicalHistory: optionalString(flags, "history", createFlags.history),
				Status:         createFlags.status,
			})
			if err != nil {
				return a.notify("Create consumer", err)
			}
			return a.notify(fmt.Sprintf("Create consumer %d", c.ID), nil)
		},
	}
	createFlags.bind(create.Flags())
	for _, name := range []string{"first-name", "last-name", "email"} {
		create.MarkFlagRequired(name)
	}

	var updateFlags consumerFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a consumer; an empty value clears an optional field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			dob, err := changedDate(flags, "dob", updateFlags.dob)
			if err != nil {
				return a.notify("Update consumer", err)
			}
			_, err = a.source.UpdateConsumer(cmd.Context(), id, schema.UpdateConsumer{
				FirstName:      changedString(flags, "first-name", updateFlags.firstName),
				LastName:       changedString(flags, "last-name", updateFlags.lastName),
				Email:          changedString(flags, "email", updateFlags.email),
				PhoneNumber:    changedString(flags, "phone", updateFlags.phone),
				Address:        changedString(flags, "address", updateFlags.address),
				DateOfBirth:    dob,
				MedicalHistory: changedString(flags, "history", updateFlags.history),
				Status:         changedString(flags, "status", updateFlags.status),
			})
			return a.notify(fmt.Sprintf("Update consumer %d", id), err)
		},
	}
	updateFlags.bind(update.Flags())

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a consumer",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.notify(fmt.Sprintf("Delete consumer %d", id), a.source.DeleteConsumer(cmd.Context(), id))
		},
	}

	cmd.AddCommand(list, get, create, update, remove)
	return cmd
}
