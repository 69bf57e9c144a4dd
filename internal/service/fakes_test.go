package service

import (
	"context"
	"sync"

	"golbucks/internal/model"
)

// fakeCoordinator serializes whole units of work with one mutex, which
// models the row-lock behavior of the real store closely enough for the
// concurrency tests: two operations on the same aggregate never
// interleave.
type fakeCoordinator struct {
	mu sync.Mutex
}

type fakeTxKey struct{}

type fakeTxState struct {
	after []func()
}

func (c *fakeCoordinator) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(fakeTxKey{}).(*fakeTxState); ok {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := &fakeTxState{}
	if err := fn(context.WithValue(ctx, fakeTxKey{}, st)); err != nil {
		return err
	}
	for _, hook := range st.after {
		hook()
	}
	return nil
}

func (c *fakeCoordinator) AfterCommit(ctx context.Context, fn func()) {
	if st, ok := ctx.Value(fakeTxKey{}).(*fakeTxState); ok {
		st.after = append(st.after, fn)
		return
	}
	fn()
}

type memAccounts struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  []model.LedgerEntry
	nextID   int64
}

func newMemAccounts(balances map[string]int64) *memAccounts {
	if balances == nil {
		balances = map[string]int64{}
	}
	return &memAccounts{balances: balances}
}

func (s *memAccounts) BalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[accountID]
	if !ok {
		return 0, model.ErrAccountNotFound
	}
	return balance, nil
}

func (s *memAccounts) SetBalance(ctx context.Context, accountID string, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[accountID]; !ok {
		return model.ErrAccountNotFound
	}
	s.balances[accountID] = balance
	return nil
}

func (s *memAccounts) Balance(ctx context.Context, accountID string) (int64, error) {
	return s.BalanceForUpdate(ctx, accountID)
}

func (s *memAccounts) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memAccounts) Entries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerEntry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].AccountID == accountID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

// deltaSum recomputes a balance from the ledger history, for checking
// the conservation invariant.
func (s *memAccounts) deltaSum(accountID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, e := range s.entries {
		if e.AccountID == accountID {
			sum += e.Delta
		}
	}
	return sum
}

func (s *memAccounts) entryCount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.AccountID == accountID {
			n++
		}
	}
	return n
}

type memStreaks struct {
	mu   sync.Mutex
	rows map[string]model.RewardStreak
}

func newMemStreaks() *memStreaks {
	return &memStreaks{rows: map[string]model.RewardStreak{}}
}

func (s *memStreaks) Lock(ctx context.Context, accountID string) (*model.RewardStreak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[accountID]
	if !ok {
		row = model.RewardStreak{AccountID: accountID}
		s.rows[accountID] = row
	}
	return &row, nil
}

func (s *memStreaks) Find(ctx context.Context, accountID string) (*model.RewardStreak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[accountID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *memStreaks) Update(ctx context.Context, streak *model.RewardStreak) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[streak.AccountID] = *streak
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	events map[string]model.Event
	regs   []model.Registration
}

func newMemEvents(events ...model.Event) *memEvents {
	s := &memEvents{events: map[string]model.Event{}}
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	return s
}

func (s *memEvents) Lock(ctx context.Context, eventID string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return &ev, nil
}

func (s *memEvents) ActiveRegistration(ctx context.Context, accountID, eventID string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.regs {
		if reg.AccountID == accountID && reg.EventID == eventID && reg.Status == model.RegistrationActive {
			r := reg
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memEvents) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs = append(s.regs, *reg)
	return nil
}

func (s *memEvents) UpdateRegistrationStatus(ctx context.Context, registrationID string, status model.RegistrationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.regs {
		if s.regs[i].ID == registrationID {
			s.regs[i].Status = status
			return nil
		}
	}
	return model.ErrRegistrationNotFound
}

func (s *memEvents) SetRegisteredCount(ctx context.Context, eventID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return model.ErrEventNotFound
	}
	ev.RegisteredCount = count
	s.events[eventID] = ev
	return nil
}

func (s *memEvents) registeredCount(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[eventID].RegisteredCount
}

type memCampaigns struct {
	mu        sync.Mutex
	campaigns map[string]model.Campaign
	contribs  []model.Contribution
}

func newMemCampaigns(campaigns ...model.Campaign) *memCampaigns {
	s := &memCampaigns{campaigns: map[string]model.Campaign{}}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func (s *memCampaigns) Lock(ctx context.Context, campaignID string) (*model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, model.ErrCampaignNotFound
	}
	return &c, nil
}

func (s *memCampaigns) HasContribution(ctx context.Context, campaignID, contributorID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contribs {
		if c.CampaignID == campaignID && c.ContributorID == contributorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCampaigns) InsertContribution(ctx context.Context, c *model.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contribs = append(s.contribs, *c)
	return nil
}

func (s *memCampaigns) Update(ctx context.Context, campaign *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaign.ID]; !ok {
		return model.ErrCampaignNotFound
	}
	s.campaigns[campaign.ID] = *campaign
	return nil
}

func (s *memCampaigns) get(campaignID string) model.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaigns[campaignID]
}

type memCache struct {
	mu sync.Mutex
	m  map[string]int64
}

func newMemCache() *memCache {
	return &memCache{m: map[string]int64{}}
}

func (c *memCache) Get(ctx context.Context, accountID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	balance, ok := c.m[accountID]
	return balance, ok, nil
}

func (c *memCache) Set(ctx context.Context, accountID string, balance int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[accountID] = balance
	return nil
}

type busMessage struct {
	topic string
	data  []byte
}

type memBus struct {
	mu   sync.Mutex
	msgs []busMessage
}

func (b *memBus) Publish(topic string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, busMessage{topic: topic, data: data})
	return nil
}

func (b *memBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.msgs {
		if m.topic == topic {
			n++
		}
	}
	return n
}
