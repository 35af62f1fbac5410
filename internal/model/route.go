package model

import "time"

// Route types produced by the optimizer.
const (
	RouteTypeDirect   = "direct"
	RouteTypeStopover = "stopover"
)

// RouteSegment is one searched hop of a candidate itinerary.
type RouteSegment struct {
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	Date         string        `json:"date"`
	BestOffer    *FlightOffer  `json:"best_offer,omitempty"`
	Alternatives []FlightOffer `json:"alternatives,omitempty"`
}

// MultiCityRoute is a candidate itinerary: a single-segment direct route or a
// two-segment routing through a stopover hub. Never persisted.
type MultiCityRoute struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	StopoverHub    *StopoverHub   `json:"stopover_hub,omitempty"`
	Segments       []RouteSegment `json:"segments"`
	TotalPrice     float64        `json:"total_price"`
	Currency       string         `json:"currency"`
	Savings        *float64       `json:"savings,omitempty"`
	SavingsPercent *float64       `json:"savings_percent,omitempty"`
	TotalDuration  string         `json:"total_duration"`
	Layover        string         `json:"layover,omitempty"`
	Score          float64        `json:"score"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// RouteComparisonStats is the bookkeeping attached to one comparison.
type RouteComparisonStats struct {
	HubsSearched int           `json:"hubs_searched"`
	SearchCalls  int           `json:"search_calls"`
	Elapsed      time.Duration `json:"elapsed"`
}

// RouteComparison is the full result of one optimizer run.
type RouteComparison struct {
	DirectRoute    *MultiCityRoute      `json:"direct_route,omitempty"`
	StopoverRoutes []MultiCityRoute     `json:"stopover_routes"`
	BestRoute      *MultiCityRoute      `json:"best_route,omitempty"`
	Stats          RouteComparisonStats `json:"stats"`
}
