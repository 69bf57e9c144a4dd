package infrastructure

import (
	"context"

	"golbucks/internal/config"
	"golbucks/internal/repository"
	"golbucks/internal/service"
	transportHTTP "golbucks/internal/transport/http"
	transportNATS "golbucks/internal/transport/nats"
	"golbucks/internal/worker"
)

// Bootstrap initialises all dependencies from config and wires up the
// application. Returns the App, a cleanup function, or an error.
func Bootstrap(ctx context.Context) (*App, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	db, err := connectPostgres(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}

	rdb, err := connectRedis(cfg.RedisAddr())
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var cleanupFns []func()
	cleanupFns = append(cleanupFns, func() {
		db.Close()
		_ = rdb.Close()
	})

	nc, err := connectNats(cfg.NatsAddr())
	if err != nil {
		return nil, runCleanup(cleanupFns), err
	}
	cleanupFns = append(cleanupFns, nc.Close)

	// ── Engine wiring ──────────────────────────────────────────────────────────
	co := repository.NewCoordinator(db, cfg.LockTimeout())
	bus := transportNATS.NewBus(nc)
	cache := repository.NewBalanceCache(rdb)

	ledger := service.NewLedger(co, repository.NewAccountStore(co), cache, bus)
	rewards := service.NewStreakEngine(co, repository.NewStreakStore(co), ledger, bus, cfg.Reward())
	events := service.NewAllocator(co, repository.NewEventStore(co), ledger, bus)
	bills := service.NewPool(co, repository.NewCampaignStore(co), ledger, bus)

	var servers []Server
	if addr, apiErr := cfg.ApiAddr(); apiErr == nil {
		handler := transportHTTP.NewHandler(ledger, rewards, events, bills)
		servers = append(servers, transportHTTP.NewServer(addr, handler))
	}
	if cfg.WorkerOn() {
		servers = append(servers, worker.NewNotificationWorker(nc, worker.LogDispatcher{}))
	}

	return NewApp(servers), runCleanup(cleanupFns), nil
}

// runCleanup returns a single function that calls all cleanup functions in reverse order.
func runCleanup(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
