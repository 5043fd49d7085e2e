package schema

import "time"

// ConsumerStatusActive is the status assigned when none is given
const ConsumerStatusActive = "active"

// ConsumerSchema declares the consumer (patient) record
var ConsumerSchema = Define("Consumer",
	IntField("id").Generated(),
	StringField("firstName").Required(),
	StringField("lastName").Required(),
	StringField("email").Required(),
	StringField("phoneNumber"),
	StringField("address"),
	DateField("dateOfBirth"),
	StringField("medicalHistory"),
	StringField("status").Default(ConsumerStatusActive),
	TimestampField("createdAt").Generated(),
	TimestampField("updatedAt").Generated(),
)

// Consumer is a patient record
type Consumer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"not null" json:"firstName"`
	LastName       string    `gorm:"not null" json:"lastName"`
	Email          string    `gorm:"not null;index" json:"email"`
	PhoneNumber    *string   `json:"phoneNumber"`
	Address        *string   `json:"address"`
	DateOfBirth    *Date     `gorm:"type:date" json:"dateOfBirth"`
	MedicalHistory *string   `gorm:"type:text" json:"medicalHistory"`
	Status         string    `gorm:"not null;default:active;index" json:"status"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (Consumer) TableName() string { return "consumers" }

// InsertConsumer is the validated create input
type InsertConsumer struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	PhoneNumber    *string `json:"phoneNumber"`
	Address        *string `json:"address"`
	DateOfBirth    *Date   `json:"dateOfBirth"`
	MedicalHistory *string `json:"medicalHistory"`
	Status         string  `json:"status,omitempty"`
}

// Consumer builds the record to persist; server fields are left zero
func (in InsertConsumer) Consumer() Consumer {
	status := in.Status
	if status == "" {
		status = ConsumerStatusActive
	}
	return Consumer{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Address:        in.Address,
		DateOfBirth:    in.DateOfBirth,
		MedicalHistory: in.MedicalHistory,
		Status:         status,
	}
}

// UpdateConsumer is the validated partial update input
type UpdateConsumer struct {
	FirstName      Optional[string] `json:"firstName,omitzero"`
	LastName       Optional[string] `json:"lastName,omitzero"`
	Email          Optional[string] `json:"email,omitzero"`
	PhoneNumber    Optional[string] `json:"phoneNumber,omitzero"`
	Address        Optional[string] `json:"address,omitzero"`
	DateOfBirth    Optional[Date]   `json:"dateOfBirth,omitzero"`
	MedicalHistory Optional[string] `json:"medicalHistory,omitzero"`
	Status         Optional[string] `json:"status,omitzero"`
}

// Apply merges the set fields onto c
func (u UpdateConsumer) Apply(c *Consumer) {
	u.FirstName.ApplyTo(&c.FirstName)
	u.LastName.ApplyTo(&c.LastName)
	u.Email.ApplyTo(&c.Email)
	u.PhoneNumber.ApplyPtr(&c.PhoneNumber)
	u.Address.ApplyPtr(&c.Address)
	u.DateOfBirth.ApplyPtr(&c.DateOfBirth)
	u.MedicalHistory.ApplyPtr(&c.MedicalHistory)
	u.Status.ApplyTo(&c.Status)
}
