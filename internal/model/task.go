package model

import "time"

// ScheduledTask is a recurring saved search. The executor is the only writer of
// the run-tracking fields (last_run, next_run, last_price, lowest_price).
type ScheduledTask struct {
	ID            int        `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Origin        string     `db:"origin" json:"origin"`
	Destination   string     `db:"destination" json:"destination"`
	DepartureDate string     `db:"departure_date" json:"departure_date"`
	ReturnDate    *string    `db:"return_date" json:"return_date,omitempty"`
	Passengers    int        `db:"passengers" json:"passengers"`
	CabinClass    string     `db:"cabin_class" json:"cabin_class"`
	CronExpr      string     `db:"cron_expr" json:"cron_expr"`
	PriceTarget   *float64   `db:"price_target" json:"price_target,omitempty"`
	Active        bool       `db:"active" json:"active"`
	LastRun       *time.Time `db:"last_run" json:"last_run,omitempty"`
	NextRun       time.Time  `db:"next_run" json:"next_run"`
	LastPrice     *float64   `db:"last_price" json:"last_price,omitempty"`
	LowestPrice   *float64   `db:"lowest_price" json:"lowest_price,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PriceHistoryPoint is one observation for a task. Append-only.
type PriceHistoryPoint struct {
	ID         int       `db:"id" json:"id"`
	TaskID     int       `db:"task_id" json:"task_id"`
	Price      float64   `db:"price" json:"price"`
	Currency   string    `db:"currency" json:"currency"`
	Airlines   string    `db:"airlines" json:"airlines"`
	Stops      int       `db:"stops" json:"stops"`
	Duration   string    `db:"duration" json:"duration"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// TaskExecutionResult is produced by one executor run. It is never persisted;
// it only drives the history insert, the task update and the notification.
type TaskExecutionResult struct {
	TaskID             int          `json:"task_id"`
	TaskName           string       `json:"task_name"`
	Success            bool         `json:"success"`
	NoFlightsFound     bool         `json:"no_flights_found,omitempty"`
	CurrentPrice       *float64     `json:"current_price,omitempty"`
	PreviousPrice      *float64     `json:"previous_price,omitempty"`
	PriceChange        float64      `json:"price_change"`
	PriceChangePercent float64      `json:"price_change_percent"`
	IsNewLow           bool         `json:"is_new_low"`
	HitTarget          bool         `json:"hit_target"`
	Offer              *FlightOffer `json:"offer,omitempty"`
	Error              string       `json:"error,omitempty"`
	ErrorCode          string       `json:"error_code,omitempty"`
}
