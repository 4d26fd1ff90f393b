package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Catalog events
	EventMedicineCreated = "inventory.medicine.created"
	EventMedicineUpdated = "inventory.medicine.updated"
	EventMedicineDeleted = "inventory.medicine.deleted"

	// Stock events
	EventBatchCreated        = "inventory.batch.created"
	EventBatchUpdated        = "inventory.batch.updated"
	EventBatchDeleted        = "inventory.batch.deleted"
	EventStockAdjusted       = "inventory.stock.adjusted"
	EventConsumptionRecorded = "inventory.consumption.recorded"

	// Alert events
	EventAlertGenerated = "inventory.alert.generated"
	EventAlertUpdated   = "inventory.alert.updated"
	EventAlertResolved  = "inventory.alert.resolved"
	EventAlertDismissed = "inventory.alert.dismissed"

	// Role events
	EventRoleAssigned = "users.role.assigned"
	EventRoleRemoved  = "users.role.removed"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
	ExchangeNotifications   = "notifications.outbound"
)

// Notification routing keys (one per delivery channel)
const (
	NotifyChannelSMS      = "notify.sms"
	NotifyChannelWhatsApp = "notify.whatsapp"
	NotifyChannelEmail    = "notify.email"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// StockAdjustedEvent is published when batch quantities change
type StockAdjustedEvent struct {
	MedicineID string `json:"medicine_id"`
	BatchID    string `json:"batch_id"`
	Previous   int    `json:"previous_quantity"`
	New        int    `json:"new_quantity"`
	Reason     string `json:"reason,omitempty"`
	AdjustedBy string `json:"adjusted_by,omitempty"`
}

// ConsumptionRecordedEvent is published when a consumption record is appended
type ConsumptionRecordedEvent struct {
	MedicineID string    `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
	Date       time.Time `json:"date"`
	RecordedBy string    `json:"recorded_by,omitempty"`
}

// AlertEvent is published when an alert is created, updated, or transitions state
type AlertEvent struct {
	AlertID    string `json:"alert_id"`
	MedicineID string `json:"medicine_id"`
	AlertType  string `json:"alert_type"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
}

// NotificationRequest is the fire-and-forget payload handed to the external
// notification dispatcher.
type NotificationRequest struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// RoleChangedEvent is published when an admin assigns or removes a role
type RoleChangedEvent struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}
