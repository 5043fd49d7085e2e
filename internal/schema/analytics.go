package schema

// AnalyticsSchema declares a daily analytics sample. Samples are read-only.
var AnalyticsSchema = Define("AnalyticsSample",
	IntField("id").Generated(),
	DateField("date").Required(),
	DecimalField("revenue", 12, 2).Required(),
	IntField("orders").Required(),
	IntField("newPatients").Required(),
)

type AnalyticsSample struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Date        Date   `gorm:"type:date;not null;index" json:"date"`
	Revenue     string `gorm:"type:numeric(12,2);not null" json:"revenue"`
	Orders      int    `gorm:"not null" json:"orders"`
	NewPatients int    `gorm:"not null" json:"newPatients"`
}

func (AnalyticsSample) TableName() string { return "analytics" }
