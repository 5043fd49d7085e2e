package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

func inventoryTable(items []schema.InventoryItem) *Table {
	t := &Table{Headers: []string{"ID", "PRODUCT", "SKU", "CATEGORY", "STOCK", "PRICE", "AVAILABILITY", "EXPIRY"}}
	for _, item := range items {
		expiry := "-"
		if item.ExpiryDate != nil {
			expiry = item.ExpiryDate.String()
		}
		t.AddRow(
			strconv.FormatUint(uint64(item.ID), 10),
			item.ProductName,
			item.SkuOrID,
			item.Category,
			strconv.Itoa(item.StockQuantity),
			"$"+item.Price,
			item.AvailabilityStatus,
			expiry,
		)
	}
	return t
}

type inventoryFlags struct {
	name, sku, category, price, supplier, availability, expiry string
	stock                                                      int
}

func (f *inventoryFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "product name")
	flags.StringVar(&f.sku, "sku", "", "SKU or internal id")
	flags.StringVar(&f.category, "category", "", "category")
	flags.IntVar(&f.stock, "stock", 0, "units in stock")
	flags.StringVar(&f.price, "price", "", "unit price, e.g. 12.50")
	flags.StringVar(&f.supplier, "supplier", "", "supplier")
	flags.StringVar(&f.availability, "availability", "", "in_stock, low_stock or out_of_stock")
	flags.StringVar(&f.expiry, "expiry", "", "expiry date, YYYY-MM-DD")
}

func (a *App) inventoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Manage stock items",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stock items, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.source.ListInventory(cmd.Context(), gateway.InventoryFilter{Search: search})
			if err != nil {
				return err
			}
			return a.printer().print(items, func() *Table { return inventoryTable(items) })
		},
	}
	list.Flags().StringVar(&search, "search", "", "match product name or SKU")

	var createFlags inventoryFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a stock item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			expiry, err := optionalDate(flags, "expiry", createFlags.expiry)
			if err != nil {
				return a.notify("Create inventory item", err)
			}
			item, err := a.source.CreateInventoryItem(cmd.Context(), schema.InsertInventory{
				ProductName:        createFlags.name,
				SkuOrID:            createFlags.sku,
				Category:           createFlags.category,
				StockQuantity:      createFlags.stock,
				Price:              createFlags.price,
				Supplier:           optionalString(flags, "supplier", createFlags.supplier),
				AvailabilityStatus: createFlags.availability,
				ExpiryDate:         expiry,
			})
			if err != nil {
				return a.notify("Create inventory item", err)
			}
			return a.notify(fmt.Sprintf("Create inventory item %d", item.ID), nil)
		},
	}
	createFlags.bind(create.Flags())

	var updateFlags inventoryFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			expiry, err := changedDate(flags, "expiry", updateFlags.expiry)
			if err != nil {
				return a.notify("Update inventory item", err)
			}
			in := schema.UpdateInventory{
				ProductName:        changedString(flags, "name", updateFlags.name),
				SkuOrID:            changedString(flags, "sku", updateFlags.sku),
				Category:           changedString(flags, "category", updateFlags.category),
				Price:              changedString(flags, "price", updateFlags.price),
				Supplier:           changedString(flags, "supplier", updateFlags.supplier),
				AvailabilityStatus: changedString(flags, "availability", updateFlags.availability),
				ExpiryDate:         expiry,
			}
			if flags.Changed("stock") {
				in.StockQuantity = schema.Some(updateFlags.stock)
			}
			_, err = a.source.UpdateInventoryItem(cmd.Context(), id, in)
			return a.notify(fmt.Sprintf("Update inventory item %d", id), err)
		},
	}
	updateFlags.bind(update.Flags())

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stock item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.notify(fmt.Sprintf("Delete inventory item %d", id), a.source.DeleteInventoryItem(cmd.Context(), id))
		},
	}

	cmd.AddCommand(list, create, update, remove)
	return cmd
}
