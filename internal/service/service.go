package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"golbucks/internal/model"
)

// BalanceLedger moves points between the void and accounts. Every other
// engine mutates balances exclusively through it, inside its own unit
// of work, so that invariant "balance == sum of entry deltas" holds.
type BalanceLedger interface {
	Credit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]string) (int64, error)
	Debit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]string) (int64, error)
	Balance(ctx context.Context, accountID string) (int64, error)
	Entries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error)
}

type RewardStreakEngine interface {
	Status(ctx context.Context, accountID string) (*model.StreakStatus, error)
	Claim(ctx context.Context, accountID string) (*model.ClaimResult, error)
}

type CapacityAllocator interface {
	Register(ctx context.Context, accountID, eventID string) (*model.RegisterResult, error)
	Cancel(ctx context.Context, accountID, eventID string) error
}

type ContributionPool interface {
	Contribute(ctx context.Context, campaignID, contributorID string, amount int64, method model.PaymentMethod) (*model.ContributeResult, error)
}

// Coordinator is the unit-of-work boundary. Atomic runs fn inside a
// single transaction; a nested Atomic call joins the transaction
// already carried by ctx instead of opening a second one. AfterCommit
// defers fn until the outermost transaction commits (and drops it on
// abort); outside a transaction it runs fn immediately.
type Coordinator interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, fn func())
}

// Per-aggregate stores. Methods named *ForUpdate or Lock acquire an
// exclusive row lock and must be called inside Coordinator.Atomic.
type AccountStore interface {
	BalanceForUpdate(ctx context.Context, accountID string) (int64, error)
	SetBalance(ctx context.Context, accountID string, balance int64) error
	Balance(ctx context.Context, accountID string) (int64, error)
	AppendEntry(ctx context.Context, entry *model.LedgerEntry) error
	Entries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error)
}

type StreakStore interface {
	// Lock returns the account's streak row under an exclusive lock,
	// creating a zeroed row first if none exists.
	Lock(ctx context.Context, accountID string) (*model.RewardStreak, error)
	// Find is the lock-free read; returns (nil, nil) when the account
	// has never claimed.
	Find(ctx context.Context, accountID string) (*model.RewardStreak, error)
	Update(ctx context.Context, streak *model.RewardStreak) error
}

type EventStore interface {
	Lock(ctx context.Context, eventID string) (*model.Event, error)
	ActiveRegistration(ctx context.Context, accountID, eventID string) (*model.Registration, error)
	InsertRegistration(ctx context.Context, reg *model.Registration) error
	UpdateRegistrationStatus(ctx context.Context, registrationID string, status model.RegistrationStatus) error
	SetRegisteredCount(ctx context.Context, eventID string, count int) error
}

type CampaignStore interface {
	Lock(ctx context.Context, campaignID string) (*model.Campaign, error)
	HasContribution(ctx context.Context, campaignID, contributorID string) (bool, error)
	InsertContribution(ctx context.Context, c *model.Contribution) error
	Update(ctx context.Context, campaign *model.Campaign) error
}

// BalanceCache is the read-side balance cache. Misses are not errors:
// Get reports found=false and the caller warms the cache from the store.
type BalanceCache interface {
	Get(ctx context.Context, accountID string) (balance int64, found bool, err error)
	Set(ctx context.Context, accountID string, balance int64) error
}

type MessageBus interface {
	Publish(topic string, data []byte) error
}

// publishJSON sends an event on the bus. Delivery is best-effort by
// design: the transaction has already committed, so failures are
// logged and swallowed.
func publishJSON(bus MessageBus, topic string, event any) {
	if bus == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "topic", topic, "error", err)
		return
	}
	if err := bus.Publish(topic, data); err != nil {
		slog.Error("failed to publish event", "topic", topic, "error", err)
	}
}
