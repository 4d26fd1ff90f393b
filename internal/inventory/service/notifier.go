package service

import (
	"context"

	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

// Notifier pushes alert notifications to external delivery channels.
// Delivery is fire-and-forget: a failed notification never fails the
// operation that produced the alert.
type Notifier interface {
	NotifyAlert(ctx context.Context, severity, message string)
}

// AMQPNotifier hands notifications to the outbound dispatcher over RabbitMQ.
// High-severity alerts go to SMS and WhatsApp in addition to email.
type AMQPNotifier struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAMQPNotifier creates a notifier backed by the notifications exchange
func NewAMQPNotifier(publisher *messaging.Publisher, log *logger.Logger) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher, logger: log}
}

// NotifyAlert publishes the notification to each channel for the severity.
// The dispatcher owns recipient resolution. Errors are logged and swallowed.
func (n *AMQPNotifier) NotifyAlert(ctx context.Context, severity, message string) {
	channels := []string{messaging.NotifyChannelEmail}
	if severity == "high" {
		channels = append(channels, messaging.NotifyChannelSMS, messaging.NotifyChannelWhatsApp)
	}

	for _, channel := range channels {
		req := messaging.NotificationRequest{
			Channel: channel,
			Message: message,
		}
		if err := n.publisher.Publish(ctx, channel, req); err != nil {
			n.logger.Error().Err(err).
				Str("channel", channel).
				Msg("failed to publish notification")
		}
	}
}

// NopNotifier discards notifications. Used when RabbitMQ is not configured
// and in tests.
type NopNotifier struct{}

// NotifyAlert does nothing
func (NopNotifier) NotifyAlert(context.Context, string, string) {}
