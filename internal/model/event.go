package model

import "time"

type RegistrationStatus string

const (
	RegistrationActive    RegistrationStatus = "registered"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationAttended  RegistrationStatus = "attended"
	RegistrationNoShow    RegistrationStatus = "no_show"
)

// Event carries the capacity-controlled registration state of one event.
// Capacity nil means unlimited. RegisteredCount only counts active
// registrations; cancellations decrement it.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	EventDate       time.Time `json:"event_date"`
	Capacity        *int      `json:"capacity,omitempty"`
	RegisteredCount int       `json:"registered_count"`
	RewardPoints    int64     `json:"reward_points"`
	Active          bool      `json:"active"`
}

type Registration struct {
	ID         string             `json:"id"`
	AccountID  string             `json:"account_id"`
	EventID    string             `json:"event_id"`
	Status     RegistrationStatus `json:"status"`
	AccessCode string             `json:"access_code"`
	CreatedAt  time.Time          `json:"created_at"`
}

type RegisterResult struct {
	Registration Registration `json:"registration"`
	Rewarded     bool         `json:"rewarded"`
	NewBalance   int64        `json:"new_balance,omitempty"`
}
