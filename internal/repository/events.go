package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"golbucks/internal/model"
)

// EventStore persists events (the capacity aggregate) and registrations.
type EventStore struct {
	co *Coordinator
}

func NewEventStore(co *Coordinator) *EventStore {
	return &EventStore{co: co}
}

func (s *EventStore) Lock(ctx context.Context, eventID string) (*model.Event, error) {
	event := &model.Event{ID: eventID}
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT title, event_date, capacity, registered_count, reward_points, active
		 FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&event.Title, &event.EventDate, &event.Capacity, &event.RegisteredCount, &event.RewardPoints, &event.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("lock event %s: %w", eventID, err))
	}
	return event, nil
}

func (s *EventStore) ActiveRegistration(ctx context.Context, accountID, eventID string) (*model.Registration, error) {
	reg := &model.Registration{AccountID: accountID, EventID: eventID}
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT id, status, access_code, created_at
		 FROM registrations
		 WHERE account_id = $1 AND event_id = $2 AND status = $3`,
		accountID, eventID, model.RegistrationActive,
	).Scan(&reg.ID, &reg.Status, &reg.AccessCode, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("find registration %s/%s: %w", accountID, eventID, err))
	}
	return reg, nil
}

func (s *EventStore) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	_, err := s.co.db(ctx).Exec(ctx,
		`INSERT INTO registrations (id, account_id, event_id, status, access_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.AccountID, reg.EventID, reg.Status, reg.AccessCode, reg.CreatedAt,
	)
	if err != nil {
		return classify(fmt.Errorf("insert registration %s: %w", reg.ID, err))
	}
	return nil
}

func (s *EventStore) UpdateRegistrationStatus(ctx context.Context, registrationID string, status model.RegistrationStatus) error {
	tag, err := s.co.db(ctx).Exec(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1`,
		registrationID, status,
	)
	if err != nil {
		return classify(fmt.Errorf("update registration %s: %w", registrationID, err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRegistrationNotFound
	}
	return nil
}

func (s *EventStore) SetRegisteredCount(ctx context.Context, eventID string, count int) error {
	tag, err := s.co.db(ctx).Exec(ctx,
		`UPDATE events SET registered_count = $2 WHERE id = $1`,
		eventID, count,
	)
	if err != nil {
		return classify(fmt.Errorf("update registered count for %s: %w", eventID, err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventNotFound
	}
	return nil
}
