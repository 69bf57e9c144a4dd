package model

import "errors"

// Domain errors. All of these are terminal: the enclosing unit of work
// aborts, nothing is committed, and retrying yields the same result.
// ErrTransient is the one exception — it signals lock contention or a
// store timeout and the caller may retry with backoff.
var (
	ErrInvalidAmount = errors.New("amount must be positive")

	ErrAccountNotFound  = errors.New("account not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrCampaignNotFound = errors.New("campaign not found")

	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrAlreadyClaimed        = errors.New("daily reward already claimed today")
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrCapacityExceeded      = errors.New("event capacity exceeded")
	ErrRegistrationNotFound  = errors.New("no active registration for this event")

	ErrEventInactive = errors.New("event is not open for registration")
	ErrEventExpired  = errors.New("event date has passed")
	ErrPastEvent     = errors.New("cannot cancel a registration for a past event")

	ErrNotAcceptingContributions = errors.New("campaign is not accepting contributions")
	ErrSelfContribution          = errors.New("cannot contribute to your own campaign")
	ErrDuplicateContribution     = errors.New("already contributed to this campaign")
	ErrExceedsRemaining          = errors.New("amount exceeds remaining campaign target")

	ErrTransient = errors.New("transient storage failure")
)
