package gateway

import (
	"context"
	"fmt"

	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/logger"
)

// Seedable is a gateway that can report whether its tables are empty
type Seedable interface {
	Gateway
	CountConsumers(ctx context.Context) (int64, error)
	CountInventory(ctx context.Context) (int64, error)
}

func strPtr(s string) *string { return &s }

func datePtr(s string) *schema.Date {
	d := schema.MustDate(s)
	return &d
}

// SeedConsumers are inserted into an empty consumers table
var SeedConsumers = []schema.InsertConsumer{
	{
		FirstName:      "John",
		LastName:       "Doe",
		Email:          "john.doe@example.com",
		PhoneNumber:    strPtr("555-0123"),
		Address:        strPtr("123 Main St, Springfield"),
		DateOfBirth:    datePtr("1950-01-01"),
		MedicalHistory: strPtr("Hypertension, Type 2 Diabetes"),
		Status:         schema.ConsumerStatusActive,
	},
	{
		FirstName:      "Jane",
		LastName:       "Smith",
		Email:          "jane.smith@example.com",
		PhoneNumber:    strPtr("555-0124"),
		Address:        strPtr("456 Oak Ave, Springfield"),
		DateOfBirth:    datePtr("1945-05-15"),
		MedicalHistory: strPtr("Arthritis, Glaucoma"),
		Status:         schema.ConsumerStatusActive,
	},
}

// SeedInventory is inserted into an empty inventory table
var SeedInventory = []schema.InsertInventory{
	{
		ProductName:        "Amoxicillin 500mg",
		SkuOrID:            "AMX-500",
		Category:           "Antibiotics",
		StockQuantity:      150,
		Price:              "15.50",
		Supplier:           strPtr("Global Pharma"),
		AvailabilityStatus: schema.AvailabilityInStock,
		ExpiryDate:         datePtr("2026-12-31"),
	},
	{
		ProductName:        "Lisinopril 10mg",
		SkuOrID:            "LSN-010",
		Category:           "Hypertension",
		StockQuantity:      25,
		Price:              "12.00",
		Supplier:           strPtr("HealthCare Supplies"),
		AvailabilityStatus: schema.AvailabilityLowStock,
		ExpiryDate:         datePtr("2027-06-30"),
	},
}

// Seed fills the consumers and inventory tables when they are empty
func Seed(ctx context.Context, g Seedable) error {
	n, err := g.CountConsumers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed consumers: %w", err)
	}
	if n == 0 {
		for _, in := range SeedConsumers {
			if _, err := g.CreateConsumer(ctx, in); err != nil {
				return fmt.Errorf("failed to seed consumers: %w", err)
			}
		}
		logger.Info(ctx).Int("count", len(SeedConsumers)).Msg("Seeded consumers")
	}

	n, err = g.CountInventory(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed inventory: %w", err)
	}
	if n == 0 {
		for _, in := range SeedInventory {
			if _, err := g.CreateInventoryItem(ctx, in); err != nil {
				return fmt.Errorf("failed to seed inventory: %w", err)
			}
		}
		logger.Info(ctx).Int("count", len(SeedInventory)).Msg("Seeded inventory")
	}
	return nil
}
