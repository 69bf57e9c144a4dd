package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"golbucks/internal/model"
)

// AccountStore persists account balances and the append-only ledger.
type AccountStore struct {
	co *Coordinator
}

func NewAccountStore(co *Coordinator) *AccountStore {
	return &AccountStore{co: co}
}

func (s *AccountStore) BalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	var balance int64
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		accountID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrAccountNotFound
	}
	if err != nil {
		return 0, classify(fmt.Errorf("lock account %s: %w", accountID, err))
	}
	return balance, nil
}

func (s *AccountStore) SetBalance(ctx context.Context, accountID string, balance int64) error {
	tag, err := s.co.db(ctx).Exec(ctx,
		`UPDATE accounts SET balance = $2 WHERE id = $1`,
		accountID, balance,
	)
	if err != nil {
		return classify(fmt.Errorf("update balance for %s: %w", accountID, err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *AccountStore) Balance(ctx context.Context, accountID string) (int64, error) {
	var balance int64
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT balance FROM accounts WHERE id = $1`,
		accountID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrAccountNotFound
	}
	if err != nil {
		return 0, classify(fmt.Errorf("read balance for %s: %w", accountID, err))
	}
	return balance, nil
}

func (s *AccountStore) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal entry metadata: %w", err)
	}

	err = s.co.db(ctx).QueryRow(ctx,
		`INSERT INTO ledger_entries (account_id, delta, resulting_balance, reason_code, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entry.AccountID, entry.Delta, entry.ResultingBalance, entry.ReasonCode, metadata, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return classify(fmt.Errorf("append ledger entry for %s: %w", entry.AccountID, err))
	}
	return nil
}

func (s *AccountStore) Entries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error) {
	rows, err := s.co.db(ctx).Query(ctx,
		`SELECT id, account_id, delta, resulting_balance, reason_code, metadata, created_at
		 FROM ledger_entries
		 WHERE account_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("list ledger entries for %s: %w", accountID, err))
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var entry model.LedgerEntry
		var metadata []byte
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Delta, &entry.ResultingBalance,
			&entry.ReasonCode, &metadata, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal entry metadata: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
