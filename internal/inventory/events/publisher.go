// Package events wires the service's RabbitMQ publishers. Event payloads and
// routing live in pkg/messaging; this package owns which exchanges the
// inventory service talks to.
package events

import (
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

const source = "inventory-service"

// NewInventoryPublisher creates the publisher for domain events: catalog
// changes, stock adjustments, consumption, and alert transitions.
func NewInventoryPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*messaging.Publisher, error) {
	return messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, source, log)
}

// NewNotificationPublisher creates the publisher for the outbound
// notification dispatcher (SMS, WhatsApp, email).
func NewNotificationPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*messaging.Publisher, error) {
	return messaging.NewPublisher(rmq, messaging.ExchangeNotifications, source, log)
}
