package model

import "time"

// PriceAlert is a one-shot watch on a fixed route and date. Unlike a
// ScheduledTask it has no recurrence; it fires at most once and expires at the
// flight's departure date.
type PriceAlert struct {
	ID            int        `db:"id" json:"id"`
	Origin        string     `db:"origin" json:"origin"`
	Destination   string     `db:"destination" json:"destination"`
	DepartureDate string     `db:"departure_date" json:"departure_date"`
	ReturnDate    *string    `db:"return_date" json:"return_date,omitempty"`
	TargetPrice   float64    `db:"target_price" json:"target_price"`
	CurrentPrice  *float64   `db:"current_price" json:"current_price,omitempty"`
	Currency      string     `db:"currency" json:"currency"`
	Triggered     bool       `db:"triggered" json:"triggered"`
	Active        bool       `db:"active" json:"active"`
	NotifiedAt    *time.Time `db:"notified_at" json:"notified_at,omitempty"`
	ExpiresAt     time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// AlertCheckResult is the per-alert outcome of one evaluation cycle.
type AlertCheckResult struct {
	AlertID      int      `json:"alert_id"`
	Checked      bool     `json:"checked"`
	Triggered    bool     `json:"triggered"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	Error        string   `json:"error,omitempty"`
}
