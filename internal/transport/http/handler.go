package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"golbucks/internal/model"
	"golbucks/internal/service"
)

// Handler exposes the reward engine over REST. It only parses request
// shapes; every business rule lives in the engine. The authenticated
// account id is taken at face value (identity is handled upstream).
type Handler struct {
	ledger  service.BalanceLedger
	rewards service.RewardStreakEngine
	events  service.CapacityAllocator
	bills   service.ContributionPool
}

func NewHandler(ledger service.BalanceLedger, rewards service.RewardStreakEngine, events service.CapacityAllocator, bills service.ContributionPool) *Handler {
	return &Handler{ledger: ledger, rewards: rewards, events: events, bills: bills}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /balance", h.GetBalance)
	mux.HandleFunc("GET /ledger", h.GetLedger)
	mux.HandleFunc("GET /rewards/status", h.RewardStatus)
	mux.HandleFunc("POST /rewards/daily", h.ClaimDaily)
	mux.HandleFunc("POST /events/{id}/register", h.RegisterEvent)
	mux.HandleFunc("POST /events/{id}/cancel", h.CancelEvent)
	mux.HandleFunc("POST /bill-supports/{id}/support", h.Contribute)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		h.respondError(w, http.StatusBadRequest, "missing_account_id")
		return
	}
	balance, err := h.ledger.Balance(r.Context(), accountID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"account_id": accountID, "balance": balance})
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		h.respondError(w, http.StatusBadRequest, "missing_account_id")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.respondError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}
	entries, err := h.ledger.Entries(r.Context(), accountID, limit)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) RewardStatus(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		h.respondError(w, http.StatusBadRequest, "missing_account_id")
		return
	}
	status, err := h.rewards.Status(r.Context(), accountID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, status)
}

func (h *Handler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var result *model.ClaimResult
	err := h.withRetry(r.Context(), func(ctx context.Context) error {
		var err error
		result, err = h.rewards.Claim(ctx, req.AccountID)
		return err
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) RegisterEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var result *model.RegisterResult
	err := h.withRetry(r.Context(), func(ctx context.Context) error {
		var err error
		result, err = h.events.Register(ctx, req.AccountID, eventID)
		return err
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	err := h.withRetry(r.Context(), func(ctx context.Context) error {
		return h.events.Cancel(ctx, req.AccountID, eventID)
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	var req struct {
		AccountID     string `json:"account_id"`
		Amount        int64  `json:"amount"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	method := model.PaymentMethod(req.PaymentMethod)
	if method != model.PaymentInternal && method != model.PaymentExternal {
		h.respondError(w, http.StatusBadRequest, "invalid_payment_method")
		return
	}

	var result *model.ContributeResult
	err := h.withRetry(r.Context(), func(ctx context.Context) error {
		var err error
		result, err = h.bills.Contribute(ctx, campaignID, req.AccountID, req.Amount, method)
		return err
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// withRetry re-runs fn on transient store failures (lock timeouts) with
// exponential backoff. Business-rule failures are terminal and pass
// through on the first attempt.
func (h *Handler) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, model.ErrTransient) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrEventNotFound),
		errors.Is(err, model.ErrCampaignNotFound),
		errors.Is(err, model.ErrRegistrationNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyClaimed),
		errors.Is(err, model.ErrDuplicateRegistration),
		errors.Is(err, model.ErrCapacityExceeded),
		errors.Is(err, model.ErrDuplicateContribution),
		errors.Is(err, model.ErrSelfContribution),
		errors.Is(err, model.ErrExceedsRemaining),
		errors.Is(err, model.ErrNotAcceptingContributions),
		errors.Is(err, model.ErrEventInactive):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrEventExpired),
		errors.Is(err, model.ErrPastEvent):
		return http.StatusGone
	case errors.Is(err, model.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	h.respondError(w, statusFor(err), err.Error())
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
