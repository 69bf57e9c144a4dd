package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"golbucks/internal/model"
)

// Notification is what the dispatcher delivers to an account. Body is
// already rendered; the delivery channel (push, in-app) is up to the
// dispatcher implementation.
type Notification struct {
	AccountID string
	Topic     string
	Body      string
}

type Dispatcher interface {
	Notify(ctx context.Context, n Notification) error
}

// LogDispatcher is the default delivery sink: it records the
// notification and nothing else. Real push delivery lives outside this
// service and replaces it at wiring time.
type LogDispatcher struct{}

func (LogDispatcher) Notify(ctx context.Context, n Notification) error {
	slog.Info("notification", "account_id", n.AccountID, "topic", n.Topic, "body", n.Body)
	return nil
}

// NotificationWorker consumes engine events from NATS and hands them to
// the dispatcher. Events arrive only after the producing transaction
// committed; a delivery failure is logged and dropped, never bounced
// back into the engine.
type NotificationWorker struct {
	nc         *nats.Conn
	dispatcher Dispatcher
}

func NewNotificationWorker(nc *nats.Conn, dispatcher Dispatcher) *NotificationWorker {
	return &NotificationWorker{nc: nc, dispatcher: dispatcher}
}

// Run subscribes to all engine topics and blocks until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) error {
	// QueueSubscribe: with several service replicas each event is
	// handled by exactly one worker in the group.
	sub, err := w.nc.QueueSubscribe("golbucks.>", "notifier_group", func(m *nats.Msg) {
		if err := w.handleMessage(ctx, m.Subject, m.Data); err != nil {
			slog.Error("worker: failed to dispatch notification", "topic", m.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("worker: failed to subscribe to NATS: %w", err)
	}

	slog.Info("Notification worker is running")

	<-ctx.Done()

	slog.Info("Worker received shutdown signal, draining subscription...")
	return sub.Drain()
}

func (w *NotificationWorker) handleMessage(ctx context.Context, topic string, data []byte) error {
	n, ok, err := render(topic, data)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return w.dispatcher.Notify(ctx, n)
}

// render turns a bus event into a user-facing notification. Topics not
// listed here (raw ledger entries) are consumed silently.
func render(topic string, data []byte) (Notification, bool, error) {
	switch topic {
	case model.TopicRewardClaimed:
		var ev model.RewardClaimedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Notification{}, false, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		body := fmt.Sprintf("Daily reward claimed: +%d Golbucks (streak %d)", ev.Amount, ev.Streak)
		if ev.Bonus {
			body = fmt.Sprintf("Streak bonus! +%d Golbucks for %d days in a row", ev.Amount, ev.Streak)
		}
		return Notification{AccountID: ev.AccountID, Topic: topic, Body: body}, true, nil

	case model.TopicEventRegistered:
		var ev model.RegistrationEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Notification{}, false, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		return Notification{
			AccountID: ev.AccountID,
			Topic:     topic,
			Body:      fmt.Sprintf("Registration confirmed, access code %s", ev.AccessCode),
		}, true, nil

	case model.TopicEventCancelled:
		var ev model.RegistrationEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Notification{}, false, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		return Notification{
			AccountID: ev.AccountID,
			Topic:     topic,
			Body:      "Your event registration was cancelled",
		}, true, nil

	case model.TopicContributed:
		var ev model.ContributionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Notification{}, false, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		return Notification{
			AccountID: ev.ContributorID,
			Topic:     topic,
			Body:      fmt.Sprintf("Contribution of %d accepted, thank you", ev.Amount),
		}, true, nil

	case model.TopicCampaignFunded:
		var ev model.ContributionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return Notification{}, false, fmt.Errorf("unmarshal %s: %w", topic, err)
		}
		return Notification{
			AccountID: ev.ContributorID,
			Topic:     topic,
			Body:      "The campaign you supported reached its target",
		}, true, nil
	}

	return Notification{}, false, nil
}

// Start implements the infrastructure.Server interface.
func (w *NotificationWorker) Start(ctx context.Context) error {
	return w.Run(ctx)
}

// Stop implements the infrastructure.Server interface (no-op, shutdown is via ctx).
func (w *NotificationWorker) Stop(ctx context.Context) error {
	return nil
}
