package schema

import "time"

// Emergency statuses. Any status may follow any other.
const (
	EmergencyPending    = "Pending"
	EmergencyInProgress = "In Progress"
	EmergencyResolved   = "Resolved"
)

var emergencyStatuses = []string{EmergencyPending, EmergencyInProgress, EmergencyResolved}

// EmergencySchema declares an emergency request
var EmergencySchema = Define("Emergency",
	IntField("id").Generated(),
	StringField("consumerName").Required(),
	StringField("contactInfo").Required(),
	StringField("location").Required(),
	StringField("emergencyType").Required(),
	StringField("description"),
	EnumField("status", emergencyStatuses...).Default(EmergencyPending),
	TimestampField("timestamp").Generated(),
)

// EmergencyStatusSchema is the body of a status change
var EmergencyStatusSchema = Define("EmergencyStatus",
	EnumField("status", emergencyStatuses...).Required(),
)

type Emergency struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ConsumerName  string    `gorm:"not null" json:"consumerName"`
	ContactInfo   string    `gorm:"not null" json:"contactInfo"`
	Location      string    `gorm:"not null" json:"location"`
	EmergencyType string    `gorm:"not null" json:"emergencyType"`
	Description   *string   `gorm:"type:text" json:"description"`
	Status        string    `gorm:"not null;default:Pending" json:"status"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Emergency) TableName() string { return "emergencies" }

type InsertEmergency struct {
	ConsumerName  string  `json:"consumerName"`
	ContactInfo   string  `json:"contactInfo"`
	Location      string  `json:"location"`
	EmergencyType string  `json:"emergencyType"`
	Description   *string `json:"description"`
	Status        string  `json:"status,omitempty"`
}

func (in InsertEmergency) Emergency() Emergency {
	status := in.Status
	if status == "" {
		status = EmergencyPending
	}
	return Emergency{
		ConsumerName:  in.ConsumerName,
		ContactInfo:   in.ContactInfo,
		Location:      in.Location,
		EmergencyType: in.EmergencyType,
		Description:   in.Description,
		Status:        status,
	}
}

// UpdateEmergencyStatus overwrites the status with no transition check
type UpdateEmergencyStatus struct {
	Status string `json:"status"`
}
