package schema

import "time"

// Availability statuses are client-set and never derived from stock
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityLowStock   = "low_stock"
	AvailabilityOutOfStock = "out_of_stock"
)

// InventorySchema declares a stock item
var InventorySchema = Define("InventoryItem",
	IntField("id").Generated(),
	StringField("productName").Required(),
	StringField("skuOrId").Required(),
	StringField("category").Required(),
	IntField("stockQuantity").Required(),
	DecimalField("price", 10, 2).Required(),
	StringField("supplier"),
	EnumField("availabilityStatus", AvailabilityInStock, AvailabilityLowStock, AvailabilityOutOfStock).
		Default(AvailabilityInStock),
	DateField("expiryDate"),
	TimestampField("updatedAt").Generated(),
)

// InventoryItem is a stock record. Price is a decimal string.
type InventoryItem struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ProductName        string    `gorm:"not null" json:"productName"`
	SkuOrID            string    `gorm:"column:sku_or_id;not null;index" json:"skuOrId"`
	Category           string    `gorm:"not null" json:"category"`
	StockQuantity      int       `gorm:"not null" json:"stockQuantity"`
	Price              string    `gorm:"type:numeric(10,2);not null" json:"price"`
	Supplier           *string   `json:"supplier"`
	AvailabilityStatus string    `gorm:"not null;default:in_stock" json:"availabilityStatus"`
	ExpiryDate         *Date     `gorm:"type:date" json:"expiryDate"`
	UpdatedAt          time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (InventoryItem) TableName() string { return "inventory" }

type InsertInventory struct {
	ProductName        string  `json:"productName"`
	SkuOrID            string  `json:"skuOrId"`
	Category           string  `json:"category"`
	StockQuantity      int     `json:"stockQuantity"`
	Price              string  `json:"price"`
	Supplier           *string `json:"supplier"`
	AvailabilityStatus string  `json:"availabilityStatus,omitempty"`
	ExpiryDate         *Date   `json:"expiryDate"`
}

func (in InsertInventory) Item() InventoryItem {
	status := in.AvailabilityStatus
	if status == "" {
		status = AvailabilityInStock
	}
	return InventoryItem{
		ProductName:        in.ProductName,
		SkuOrID:            in.SkuOrID,
		Category:           in.Category,
		StockQuantity:      in.StockQuantity,
		Price:              in.Price,
		Supplier:           in.Supplier,
		AvailabilityStatus: status,
		ExpiryDate:         in.ExpiryDate,
	}
}

type UpdateInventory struct {
	ProductName        Optional[string] `json:"productName,omitzero"`
	SkuOrID            Optional[string] `json:"skuOrId,omitzero"`
	Category           Optional[string] `json:"category,omitzero"`
	StockQuantity      Optional[int]    `json:"stockQuantity,omitzero"`
	Price              Optional[string] `json:"price,omitzero"`
	Supplier           Optional[string] `json:"supplier,omitzero"`
	AvailabilityStatus Optional[string] `json:"availabilityStatus,omitzero"`
	ExpiryDate         Optional[Date]   `json:"expiryDate,omitzero"`
}

func (u UpdateInventory) Apply(item *InventoryItem) {
	u.ProductName.ApplyTo(&item.ProductName)
	u.SkuOrID.ApplyTo(&item.SkuOrID)
	u.Category.ApplyTo(&item.Category)
	u.StockQuantity.ApplyTo(&item.StockQuantity)
	u.Price.ApplyTo(&item.Price)
	u.Supplier.ApplyPtr(&item.Supplier)
	u.AvailabilityStatus.ApplyTo(&item.AvailabilityStatus)
	u.ExpiryDate.ApplyPtr(&item.ExpiryDate)
}
