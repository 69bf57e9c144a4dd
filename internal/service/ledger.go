package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golbucks/internal/model"
)

// Ledger implements BalanceLedger on top of an AccountStore. Each
// mutation locks the account row, applies the delta and appends the
// ledger entry as one unit of work; when called from inside another
// engine's unit of work it joins that transaction.
type Ledger struct {
	co       Coordinator
	accounts AccountStore
	cache    BalanceCache
	bus      MessageBus
	now      func() time.Time
}

func NewLedger(co Coordinator, accounts AccountStore, cache BalanceCache, bus MessageBus) *Ledger {
	return &Ledger{
		co:       co,
		accounts: accounts,
		cache:    cache,
		bus:      bus,
		now:      time.Now,
	}
}

func (l *Ledger) Credit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]string) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	return l.apply(ctx, accountID, amount, reason, metadata)
}

func (l *Ledger) Debit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]string) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	return l.apply(ctx, accountID, -amount, reason, metadata)
}

func (l *Ledger) apply(ctx context.Context, accountID string, delta int64, reason string, metadata map[string]string) (int64, error) {
	var newBalance int64
	err := l.co.Atomic(ctx, func(ctx context.Context) error {
		balance, err := l.accounts.BalanceForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if balance+delta < 0 {
			return fmt.Errorf("debit %d from balance %d: %w", -delta, balance, model.ErrInsufficientFunds)
		}
		newBalance = balance + delta

		if err := l.accounts.SetBalance(ctx, accountID, newBalance); err != nil {
			return err
		}

		entry := &model.LedgerEntry{
			AccountID:        accountID,
			Delta:            delta,
			ResultingBalance: newBalance,
			ReasonCode:       reason,
			Metadata:         metadata,
			CreatedAt:        l.now(),
		}
		if err := l.accounts.AppendEntry(ctx, entry); err != nil {
			return err
		}

		l.co.AfterCommit(ctx, func() {
			l.refreshCache(accountID, entry.ResultingBalance)
			publishJSON(l.bus, model.TopicLedgerEntry, model.LedgerEntryEvent{
				AccountID:        entry.AccountID,
				Delta:            entry.Delta,
				ResultingBalance: entry.ResultingBalance,
				ReasonCode:       entry.ReasonCode,
				CreatedAt:        entry.CreatedAt,
			})
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Balance serves reads through the cache, warming it from the store on
// a miss. The value may lag a concurrent mutation; every mutation path
// re-reads the balance under lock, so staleness here is harmless.
func (l *Ledger) Balance(ctx context.Context, accountID string) (int64, error) {
	if l.cache != nil {
		if balance, found, err := l.cache.Get(ctx, accountID); err == nil && found {
			return balance, nil
		} else if err != nil {
			slog.Warn("balance cache read failed", "account_id", accountID, "error", err)
		}
	}

	balance, err := l.accounts.Balance(ctx, accountID)
	if err != nil {
		return 0, err
	}
	l.refreshCache(accountID, balance)
	return balance, nil
}

func (l *Ledger) Entries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error) {
	return l.accounts.Entries(ctx, accountID, limit)
}

func (l *Ledger) refreshCache(accountID string, balance int64) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(context.Background(), accountID, balance); err != nil {
		slog.Warn("balance cache refresh failed", "account_id", accountID, "error", err)
	}
}
