package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BalanceCache keeps account balances in Redis for the read path. The
// engine is the only balance writer, so entries are kept without TTL
// and refreshed after every committed mutation.
type BalanceCache struct {
	rdb *redis.Client
}

func NewBalanceCache(rdb *redis.Client) *BalanceCache {
	return &BalanceCache{rdb: rdb}
}

func balanceKey(accountID string) string {
	return fmt.Sprintf("golbucks:balance:%s", accountID)
}

func (c *BalanceCache) Get(ctx context.Context, accountID string) (int64, bool, error) {
	balance, err := c.rdb.Get(ctx, balanceKey(accountID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache get %s: %w", accountID, err)
	}
	return balance, true, nil
}

func (c *BalanceCache) Set(ctx context.Context, accountID string, balance int64) error {
	if err := c.rdb.Set(ctx, balanceKey(accountID), balance, 0).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", accountID, err)
	}
	return nil
}
