package packets

import (
	"github.com/farewatch/farewatch/internal/model"
	"github.com/farewatch/farewatch/internal/scheduler"
)

// TriggerResponse is the batch trigger's operational contract: external
// monitoring reads these counts.
type TriggerResponse struct {
	Tasks  scheduler.RunSummary      `json:"tasks"`
	Alerts scheduler.AlertRunSummary `json:"alerts"`
}

type TaskListResponse struct {
	Tasks []model.ScheduledTask `json:"tasks"`
}

type HistoryResponse struct {
	TaskID  int                       `json:"task_id"`
	History []model.PriceHistoryPoint `json:"history"`
}

type AlertListResponse struct {
	Alerts []model.PriceAlert `json:"alerts"`
}

// SearchResponse echoes the resolved dates so callers of relative expressions
// see what was actually searched.
type SearchResponse struct {
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	DepartureDate string              `json:"departure_date"`
	ReturnDate    string              `json:"return_date,omitempty"`
	Offers        []model.FlightOffer `json:"offers"`
	Carriers      map[string]string   `json:"carriers,omitempty"`
}

type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}
