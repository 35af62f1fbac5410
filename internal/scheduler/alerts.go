package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/db"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/model"
	"github.com/farewatch/farewatch/internal/notify"
)

// AlertEvaluator re-checks one-shot price alerts. Unlike scheduled tasks,
// alerts have no recurrence: they trigger at most once and expire at the
// flight's departure date.
type AlertEvaluator struct {
	store      db.Store
	client     flights.Client
	dispatcher notify.Dispatcher
	clk        clock.Clock
	delay      DelayPolicy
}

// NewAlertEvaluator wires an evaluator with the same collaborator set as the
// executor.
func NewAlertEvaluator(store db.Store, client flights.Client, dispatcher notify.Dispatcher, clk clock.Clock, delay DelayPolicy) *AlertEvaluator {
	if clk == nil {
		clk = clock.System()
	}
	if delay == nil {
		delay = DefaultDelay
	}
	return &AlertEvaluator{store: store, client: client, dispatcher: dispatcher, clk: clk, delay: delay}
}

// AlertRunSummary is the batch outcome for the trigger endpoint.
type AlertRunSummary struct {
	Checked   int                      `json:"checked"`
	Triggered int                      `json:"triggered"`
	Deleted   int                      `json:"deleted"`
	Results   []model.AlertCheckResult `json:"results"`
}

// CheckAll prices every live alert, triggers the ones at or below target, and
// then unconditionally garbage-collects expired alerts. One alert's failure
// never stops the rest.
func (a *AlertEvaluator) CheckAll(ctx context.Context) (AlertRunSummary, error) {
	now := a.clk.Now()
	alerts, err := a.store.ListCheckableAlerts(now)
	if err != nil {
		return AlertRunSummary{}, fmt.Errorf("list alerts: %w", err)
	}

	summary := AlertRunSummary{Results: make([]model.AlertCheckResult, 0, len(alerts))}
	for i, alert := range alerts {
		if i > 0 {
			a.delay.Wait(ctx)
		}
		result := a.checkOne(ctx, alert)
		summary.Results = append(summary.Results, result)
		if result.Checked {
			summary.Checked++
		}
		if result.Triggered {
			summary.Triggered++
		}
		if ctx.Err() != nil {
			break
		}
	}

	// Expiry cleanup runs every cycle regardless of what happened above,
	// removing triggered and untriggered alerts alike.
	deleted, err := a.store.DeleteExpiredAlerts(now)
	if err != nil {
		log.Error().Err(err).Msg("expired alert cleanup failed")
	} else if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("removed expired alerts")
	}
	summary.Deleted = deleted
	return summary, nil
}

func (a *AlertEvaluator) checkOne(ctx context.Context, alert model.PriceAlert) model.AlertCheckResult {
	result := model.AlertCheckResult{AlertID: alert.ID}

	var returnDate string
	if alert.ReturnDate != nil {
		returnDate = *alert.ReturnDate
	}
	searchResult, err := a.client.Search(ctx, flights.SearchRequest{
		Origin:        alert.Origin,
		Destination:   alert.Destination,
		DepartureDate: alert.DepartureDate,
		ReturnDate:    returnDate,
		Adults:        1,
		MaxResults:    1,
	})
	if err != nil && !flights.IsBenign(err) {
		log.Error().Err(err).Int("alert_id", alert.ID).Msg("alert search failed")
		result.Error = err.Error()
		return result
	}

	offer, found := model.FlightOffer{}, false
	if err == nil {
		offer, found = searchResult.Cheapest()
	}
	if !found {
		result.Checked = true
		return result
	}

	current := offer.TotalPrice
	result.Checked = true
	result.CurrentPrice = &current

	// The latest observation is stored whether or not it triggers.
	if err := a.store.UpdateAlertPrice(alert.ID, current, offer.Currency); err != nil {
		result.Error = err.Error()
		return result
	}

	if current > alert.TargetPrice {
		return result
	}

	now := a.clk.Now()
	// Latch before dispatch: the trigger state commits even if every
	// delivery channel fails.
	if err := a.store.MarkAlertTriggered(alert.ID, now); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Triggered = true

	if a.dispatcher != nil {
		target := alert.TargetPrice
		payload := notify.Alert{
			Origin:        alert.Origin,
			Destination:   alert.Destination,
			DepartureDate: alert.DepartureDate,
			Reason:        notify.ReasonTargetHit,
			CurrentPrice:  current,
			TargetPrice:   &target,
			Currency:      offer.Currency,
			TriggeredAt:   now,
		}
		for _, cr := range a.dispatcher.Send(payload) {
			if cr.Err != nil {
				continue
			}
			alertID := alert.ID
			if err := a.store.RecordNotification(nil, &alertID, cr.Channel, notify.ReasonTargetHit, payload.Subject(), now); err != nil {
				log.Error().Err(err).Int("alert_id", alert.ID).Msg("failed to record alert notification")
			}
		}
	}
	return result
}
