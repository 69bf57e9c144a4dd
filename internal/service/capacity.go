package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"golbucks/internal/model"
)

// Allocator implements CapacityAllocator. All checks and the counter
// increment happen against the event row held under an exclusive lock,
// so two racing registrations for the last seat serialize: one wins,
// the other re-reads the incremented count and fails.
type Allocator struct {
	co     Coordinator
	events EventStore
	ledger BalanceLedger
	bus    MessageBus
	now    func() time.Time
	newID  func() string
}

func NewAllocator(co Coordinator, events EventStore, ledger BalanceLedger, bus MessageBus) *Allocator {
	return &Allocator{
		co:     co,
		events: events,
		ledger: ledger,
		bus:    bus,
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
	}
}

func (a *Allocator) Register(ctx context.Context, accountID, eventID string) (*model.RegisterResult, error) {
	var result model.RegisterResult

	err := a.co.Atomic(ctx, func(ctx context.Context) error {
		event, err := a.events.Lock(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.Active {
			return model.ErrEventInactive
		}
		if event.EventDate.Before(a.now()) {
			return model.ErrEventExpired
		}

		existing, err := a.events.ActiveRegistration(ctx, accountID, eventID)
		if err != nil {
			return err
		}
		if existing != nil {
			return model.ErrDuplicateRegistration
		}

		if event.Capacity != nil && event.RegisteredCount >= *event.Capacity {
			return model.ErrCapacityExceeded
		}

		reg := model.Registration{
			ID:         a.newID(),
			AccountID:  accountID,
			EventID:    eventID,
			Status:     model.RegistrationActive,
			AccessCode: a.newID(),
			CreatedAt:  a.now(),
		}
		if err := a.events.InsertRegistration(ctx, &reg); err != nil {
			return err
		}
		if err := a.events.SetRegisteredCount(ctx, eventID, event.RegisteredCount+1); err != nil {
			return err
		}

		result = model.RegisterResult{Registration: reg}
		if event.RewardPoints > 0 {
			newBalance, err := a.ledger.Credit(ctx, accountID, event.RewardPoints, model.ReasonEventReward, map[string]string{
				"event_id": eventID,
			})
			if err != nil {
				return err
			}
			result.Rewarded = true
			result.NewBalance = newBalance
		}

		a.co.AfterCommit(ctx, func() {
			publishJSON(a.bus, model.TopicEventRegistered, model.RegistrationEvent{
				AccountID:  accountID,
				EventID:    eventID,
				AccessCode: reg.AccessCode,
				Rewarded:   result.Rewarded,
			})
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel releases the caller's seat. Any reward credited on
// registration is deliberately kept; refunding is a separate policy.
func (a *Allocator) Cancel(ctx context.Context, accountID, eventID string) error {
	return a.co.Atomic(ctx, func(ctx context.Context) error {
		event, err := a.events.Lock(ctx, eventID)
		if err != nil {
			return err
		}

		reg, err := a.events.ActiveRegistration(ctx, accountID, eventID)
		if err != nil {
			return err
		}
		if reg == nil {
			return model.ErrRegistrationNotFound
		}
		if !event.EventDate.After(a.now()) {
			return model.ErrPastEvent
		}

		if err := a.events.UpdateRegistrationStatus(ctx, reg.ID, model.RegistrationCancelled); err != nil {
			return err
		}

		count := event.RegisteredCount - 1
		if count < 0 {
			count = 0
		}
		if err := a.events.SetRegisteredCount(ctx, eventID, count); err != nil {
			return err
		}

		a.co.AfterCommit(ctx, func() {
			publishJSON(a.bus, model.TopicEventCancelled, model.RegistrationEvent{
				AccountID: accountID,
				EventID:   eventID,
			})
		})
		return nil
	})
}
