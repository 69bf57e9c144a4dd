package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golbucks/internal/model"
	"golbucks/internal/service"
)

type stubService struct {
	claimErr      error
	claimCalls    int
	registerErr   error
	contributeErr error
	balance       int64
	balanceErr    error
}

func (s *stubService) Credit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]string) (int64, error) {
	return 0, nil
}
func (s *stubService) Debit(ctx context.Context, accountID string, amount int64, reason string, metadata map[string]string) (int64, error) {
	return 0, nil
}
func (s *stubService) Balance(ctx context.Context, accountID string) (int64, error) {
	return s.balance, s.balanceErr
}
func (s *stubService) Entries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error) {
	return nil, nil
}
func (s *stubService) Status(ctx context.Context, accountID string) (*model.StreakStatus, error) {
	return &model.StreakStatus{CanClaim: true}, nil
}
func (s *stubService) Claim(ctx context.Context, accountID string) (*model.ClaimResult, error) {
	s.claimCalls++
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	return &model.ClaimResult{Streak: 1, Amount: 10, NewBalance: 10}, nil
}
func (s *stubService) Register(ctx context.Context, accountID, eventID string) (*model.RegisterResult, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.RegisterResult{
		Registration: model.Registration{EventID: eventID, AccountID: accountID, Status: model.RegistrationActive},
	}, nil
}
func (s *stubService) Cancel(ctx context.Context, accountID, eventID string) error {
	return s.registerErr
}
func (s *stubService) Contribute(ctx context.Context, campaignID, contributorID string, amount int64, method model.PaymentMethod) (*model.ContributeResult, error) {
	if s.contributeErr != nil {
		return nil, s.contributeErr
	}
	return &model.ContributeResult{CampaignStatus: model.CampaignPending}, nil
}

var _ service.BalanceLedger = (*stubService)(nil)
var _ service.RewardStreakEngine = (*stubService)(nil)
var _ service.CapacityAllocator = (*stubService)(nil)
var _ service.ContributionPool = (*stubService)(nil)

func newTestMux(s *stubService) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(s, s, s, s).Register(mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestClaimDaily(t *testing.T) {
	stub := &stubService{}
	mux := newTestMux(stub)

	rec := doJSON(mux, http.MethodPost, "/rewards/daily", `{"account_id":"acc1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result model.ClaimResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Amount != 10 {
		t.Errorf("amount = %d, want 10", result.Amount)
	}
}

func TestClaimDailyMissingAccount(t *testing.T) {
	rec := doJSON(newTestMux(&stubService{}), http.MethodPost, "/rewards/daily", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrAlreadyClaimed, http.StatusConflict},
		{model.ErrAccountNotFound, http.StatusNotFound},
		{model.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{model.ErrEventExpired, http.StatusGone},
		{model.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", model.ErrCapacityExceeded), http.StatusConflict},
	}
	for _, tt := range tests {
		stub := &stubService{claimErr: tt.err}
		rec := doJSON(newTestMux(stub), http.MethodPost, "/rewards/daily", `{"account_id":"acc1"}`)
		if rec.Code != tt.want {
			t.Errorf("claim with %v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestTransientErrorsAreRetried(t *testing.T) {
	stub := &stubService{claimErr: fmt.Errorf("lock wait: %w", model.ErrTransient)}
	rec := doJSON(newTestMux(stub), http.MethodPost, "/rewards/daily", `{"account_id":"acc1"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 after retries exhausted", rec.Code)
	}
	if stub.claimCalls != 4 {
		t.Errorf("claim attempts = %d, want 4 (initial + 3 retries)", stub.claimCalls)
	}
}

func TestTerminalErrorsAreNotRetried(t *testing.T) {
	stub := &stubService{claimErr: model.ErrAlreadyClaimed}
	doJSON(newTestMux(stub), http.MethodPost, "/rewards/daily", `{"account_id":"acc1"}`)

	if stub.claimCalls != 1 {
		t.Errorf("claim attempts = %d, want 1", stub.claimCalls)
	}
}

func TestRegisterEventPath(t *testing.T) {
	rec := doJSON(newTestMux(&stubService{}), http.MethodPost, "/events/ev42/register", `{"account_id":"acc1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var result model.RegisterResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Registration.EventID != "ev42" {
		t.Errorf("event id = %s, want ev42 (from path)", result.Registration.EventID)
	}
}

func TestContributeRejectsUnknownPaymentMethod(t *testing.T) {
	rec := doJSON(newTestMux(&stubService{}), http.MethodPost, "/bill-supports/c1/support",
		`{"account_id":"acc1","amount":10,"payment_method":"cash"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetBalance(t *testing.T) {
	stub := &stubService{balance: 55}
	rec := doJSON(newTestMux(stub), http.MethodGet, "/balance?account_id=acc1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Balance int64 `json:"balance"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Balance != 55 {
		t.Errorf("balance = %d, want 55", body.Balance)
	}

	rec = doJSON(newTestMux(stub), http.MethodGet, "/balance", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status without account_id = %d, want 400", rec.Code)
	}
}
