package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/forecast"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

// medicineStore is the catalog slice the alert engine reads. Satisfied by
// repository.MedicineRepository.
type medicineStore interface {
	GetByID(ctx context.Context, id string) (*repository.Medicine, error)
	GetAll(ctx context.Context) ([]*repository.Medicine, error)
}

// stockStore aggregates batch quantities. Satisfied by
// repository.BatchRepository.
type stockStore interface {
	TotalStock(ctx context.Context, medicineID string, now time.Time) (int, error)
	HasExpiredStock(ctx context.Context, medicineID string, now time.Time) (bool, error)
	NearestExpiry(ctx context.Context, medicineID string) (*time.Time, error)
}

// alertStore persists alerts. Satisfied by repository.AlertRepository.
type alertStore interface {
	Upsert(ctx context.Context, a *repository.Alert) error
	GetByID(ctx context.Context, id string) (*repository.Alert, error)
	List(ctx context.Context, filter repository.AlertFilter) ([]*repository.Alert, error)
	MarkRead(ctx context.Context, id string) error
	Resolve(ctx context.Context, id string) (*repository.Alert, error)
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int64, error)
}

// eventPublisher is satisfied by messaging.Publisher.
type eventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// AlertEngine evaluates stock conditions into alerts and owns the alert
// lifecycle. Evaluation only ever raises or refreshes alerts; a cleared
// condition never resolves one, that stays a deliberate human action.
type AlertEngine struct {
	medicines medicineStore
	stock     stockStore
	alerts    alertStore
	guard     guard
	publisher eventPublisher
	notifier  Notifier
	cfg       config.AlertsConfig
	logger    *logger.Logger
}

// NewAlertEngine creates a new alert engine
func NewAlertEngine(
	medicines medicineStore,
	stock stockStore,
	alerts alertStore,
	roles roleStore,
	publisher eventPublisher,
	notifier Notifier,
	cfg config.AlertsConfig,
	log *logger.Logger,
) *AlertEngine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AlertEngine{
		medicines: medicines,
		stock:     stock,
		alerts:    alerts,
		guard:     guard{roles: roles},
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
		logger:    log,
	}
}

// EvaluateMedicine re-evaluates one medicine's alert conditions. Called after
// every stock mutation and by the scheduler for each medicine.
func (e *AlertEngine) EvaluateMedicine(ctx context.Context, medicineID string) error {
	m, err := e.medicines.GetByID(ctx, medicineID)
	if err != nil {
		return err
	}
	return e.evaluate(ctx, m)
}

// EvaluateAll re-evaluates every medicine with a bounded worker pool.
// Per-medicine failures are logged and do not stop the pass.
func (e *AlertEngine) EvaluateAll(ctx context.Context) error {
	medicines, err := e.medicines.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("evaluate all: list medicines: %w", err)
	}

	workers := e.cfg.EvalWorkers
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, m := range medicines {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(m *repository.Medicine) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := e.evaluate(ctx, m); err != nil {
				e.logger.Error().Err(err).
					Str("medicine_id", m.ID).
					Msg("alert evaluation failed")
			}
		}(m)
	}

	wg.Wait()
	return nil
}

// evaluate derives the alert conditions for one medicine and upserts one
// alert per triggered condition. Concurrent passes are safe: the upsert is a
// single conditional write keyed on (medicine, type, unresolved).
func (e *AlertEngine) evaluate(ctx context.Context, m *repository.Medicine) error {
	now := time.Now().UTC()

	qty, err := e.stock.TotalStock(ctx, m.ID, now)
	if err != nil {
		return fmt.Errorf("evaluate %s: total stock: %w", m.ID, err)
	}

	// Stock level conditions. The classifier is consulted without the expiry
	// input here; expiry raises its own alert type below.
	switch forecast.ClassifyStatus(qty, m.ReorderLevel, false, e.cfg.CriticalFraction) {
	case forecast.StatusCritical:
		message := fmt.Sprintf("%s is critically low (%d on hand, reorder level %d)", m.Name, qty, m.ReorderLevel)
		if qty == 0 {
			message = fmt.Sprintf("%s is out of stock", m.Name)
		}
		e.raise(ctx, m, repository.AlertTypeStockout, repository.SeverityHigh, message)
	case forecast.StatusLow:
		e.raise(ctx, m, repository.AlertTypeLowStock, repository.SeverityMedium,
			fmt.Sprintf("%s is below its reorder level (%d on hand, reorder level %d)", m.Name, qty, m.ReorderLevel))
	}

	// Overstock
	if m.ReorderLevel > 0 && float64(qty) > e.cfg.OverstockFactor*float64(m.ReorderLevel) {
		e.raise(ctx, m, repository.AlertTypeOverstock, repository.SeverityLow,
			fmt.Sprintf("%s is overstocked (%d on hand, reorder level %d)", m.Name, qty, m.ReorderLevel))
	}

	// Expiry
	expiry, err := e.stock.NearestExpiry(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("evaluate %s: nearest expiry: %w", m.ID, err)
	}
	if expiry != nil {
		days := int(expiry.Sub(now).Hours() / 24)
		switch {
		case days < 0:
			e.raise(ctx, m, repository.AlertTypeExpiryWarning, repository.SeverityHigh,
				fmt.Sprintf("%s has expired stock on hand (batch expired %s)", m.Name, expiry.Format("2006-01-02")))
		case days <= e.cfg.ExpiryUrgentDays:
			e.raise(ctx, m, repository.AlertTypeExpiryWarning, repository.SeverityHigh,
				fmt.Sprintf("%s has a batch expiring in %d days", m.Name, days))
		case days <= e.cfg.ExpiryWarningDays:
			e.raise(ctx, m, repository.AlertTypeExpiryWarning, repository.SeverityMedium,
				fmt.Sprintf("%s has a batch expiring in %d days", m.Name, days))
		}
	}

	return nil
}

// raise upserts one alert. A fresh alert is announced on the event bus and
// pushed to notification channels; a refreshed one is only updated in place,
// keeping its read state.
func (e *AlertEngine) raise(ctx context.Context, m *repository.Medicine, alertType, severity, message string) {
	alert := &repository.Alert{
		MedicineID: m.ID,
		AlertType:  alertType,
		Severity:   severity,
		Message:    message,
	}

	if err := e.alerts.Upsert(ctx, alert); err != nil {
		e.logger.Error().Err(err).
			Str("medicine_id", m.ID).
			Str("alert_type", alertType).
			Msg("failed to upsert alert")
		return
	}

	if !alert.Inserted {
		return
	}

	e.publishAlertEvent(ctx, messaging.EventAlertGenerated, alert)
	e.notifier.NotifyAlert(ctx, severity, message)
}

// ListAlerts lists alerts matching the filter
func (e *AlertEngine) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]*repository.Alert, error) {
	if _, err := e.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	return e.alerts.List(ctx, filter)
}

// GetAlert gets a single alert
func (e *AlertEngine) GetAlert(ctx context.Context, id string) (*repository.Alert, error) {
	if _, err := e.guard.require(ctx, access.ActionView); err != nil {
		return nil, err
	}
	return e.alerts.GetByID(ctx, id)
}

// CountUnread counts unread open alerts for the dashboard badge
func (e *AlertEngine) CountUnread(ctx context.Context) (int64, error) {
	if _, err := e.guard.require(ctx, access.ActionView); err != nil {
		return 0, err
	}
	return e.alerts.CountUnread(ctx)
}

// MarkRead marks an alert read. Reading is part of viewing, so every role
// that can see alerts can mark them read. Already-read alerts are a no-op.
func (e *AlertEngine) MarkRead(ctx context.Context, id string) error {
	if _, err := e.guard.require(ctx, access.ActionView); err != nil {
		return err
	}
	return e.alerts.MarkRead(ctx, id)
}

// ResolveAlert marks an alert resolved. Resolving an already-resolved alert
// succeeds without changing the original resolution time.
func (e *AlertEngine) ResolveAlert(ctx context.Context, id string) (*repository.Alert, error) {
	act, err := e.guard.require(ctx, access.ActionManageAlerts)
	if err != nil {
		return nil, err
	}

	alert, err := e.alerts.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("alert_id", id).
		Str("resolved_by", act.ID).
		Msg("alert resolved")
	e.publishAlertEvent(ctx, messaging.EventAlertResolved, alert)

	return alert, nil
}

// DismissAlert permanently deletes an alert. Dismissal is not resolution: the
// record is gone, and the next evaluation pass may flag the condition again.
func (e *AlertEngine) DismissAlert(ctx context.Context, id string) error {
	act, err := e.guard.require(ctx, access.ActionManageAlerts)
	if err != nil {
		return err
	}

	alert, err := e.alerts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := e.alerts.Delete(ctx, id); err != nil {
		return err
	}

	e.logger.Info().
		Str("alert_id", id).
		Str("dismissed_by", act.ID).
		Msg("alert dismissed")
	e.publishAlertEvent(ctx, messaging.EventAlertDismissed, alert)

	return nil
}

func (e *AlertEngine) publishAlertEvent(ctx context.Context, eventType string, alert *repository.Alert) {
	if e.publisher == nil {
		return
	}

	event := messaging.AlertEvent{
		AlertID:    alert.ID,
		MedicineID: alert.MedicineID,
		AlertType:  alert.AlertType,
		Severity:   alert.Severity,
		Message:    alert.Message,
	}
	if err := e.publisher.Publish(ctx, eventType, event); err != nil {
		e.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("alert_id", alert.ID).
			Msg("failed to publish alert event")
	}
}
