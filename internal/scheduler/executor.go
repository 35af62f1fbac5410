package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/cronexpr"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/db"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/model"
	"github.com/farewatch/farewatch/internal/notify"
)

// Execution failure modes with machine-readable codes.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskInactive      = errors.New("task is inactive")
	ErrPastDepartureDate = errors.New("departure date is in the past")
)

// A drop of at least this magnitude qualifies for a notification on its own.
const notifyDropPercent = 5.0

const offersPerExecution = 5

// Executor runs scheduled tasks: it resolves dates, searches, classifies the
// price movement, persists history and advances the schedule. All
// collaborators are injected.
type Executor struct {
	store      db.Store
	client     flights.Client
	dispatcher notify.Dispatcher
	clk        clock.Clock
	delay      DelayPolicy
}

// NewExecutor wires an executor. A nil dispatcher disables notifications; a
// nil delay uses the production one-second pause.
func NewExecutor(store db.Store, client flights.Client, dispatcher notify.Dispatcher, clk clock.Clock, delay DelayPolicy) *Executor {
	if clk == nil {
		clk = clock.System()
	}
	if delay == nil {
		delay = DefaultDelay
	}
	return &Executor{store: store, client: client, dispatcher: dispatcher, clk: clk, delay: delay}
}

// ExecuteOne runs a single task through the full cycle. Inactive tasks do not
// advance their schedule; a stale departure date advances the schedule but
// reports failure, so a relative-date task self-corrects on its next cycle
// while an absolute-date one keeps failing harmlessly until edited.
func (e *Executor) ExecuteOne(ctx context.Context, taskID int) model.TaskExecutionResult {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return failure(taskID, "", ErrTaskNotFound, "TASK_NOT_FOUND")
		}
		return failure(taskID, "", fmt.Errorf("load task: %w", err), "STORE_ERROR")
	}
	if !task.Active {
		return failure(task.ID, task.Name, ErrTaskInactive, "TASK_INACTIVE")
	}

	now := e.clk.Now()

	// Relative expressions resolve against "now", not task creation time:
	// a "+30d" task always searches 30 days out from whenever it runs.
	departure, err := dates.Resolve(task.DepartureDate, now)
	if err != nil {
		return failure(task.ID, task.Name, err, "INVALID_DATE_EXPRESSION")
	}
	var returnDate string
	if task.ReturnDate != nil && *task.ReturnDate != "" {
		ret, err := dates.Resolve(*task.ReturnDate, now)
		if err != nil {
			return failure(task.ID, task.Name, err, "INVALID_DATE_EXPRESSION")
		}
		returnDate = ret.Format(dates.Layout)
	}

	if departure.Before(startOfDay(now)) {
		e.advanceSchedule(task, now, nil, nil)
		return failure(task.ID, task.Name, ErrPastDepartureDate, "PAST_DEPARTURE_DATE")
	}

	result, err := e.client.Search(ctx, flights.SearchRequest{
		Origin:        task.Origin,
		Destination:   task.Destination,
		DepartureDate: departure.Format(dates.Layout),
		ReturnDate:    returnDate,
		Adults:        task.Passengers,
		CabinClass:    task.CabinClass,
		MaxResults:    offersPerExecution,
	})
	if err != nil && !flights.IsBenign(err) {
		// Retryable-later failure: schedule state stays untouched so the
		// task remains due and is retried on the next trigger.
		log.Error().Err(err).Int("task_id", task.ID).Str("task", task.Name).
			Msg("task search failed")
		return failure(task.ID, task.Name, err, flights.ErrorCode(err))
	}

	offer, found := model.FlightOffer{}, false
	if err == nil {
		offer, found = result.Cheapest()
	}
	if !found {
		// An empty result is a benign cycle, not an error: the schedule
		// advances and the task reports success with a marker.
		e.advanceSchedule(task, now, nil, nil)
		log.Info().Int("task_id", task.ID).Str("task", task.Name).
			Msg("no flights found this cycle")
		return model.TaskExecutionResult{
			TaskID:         task.ID,
			TaskName:       task.Name,
			Success:        true,
			NoFlightsFound: true,
		}
	}

	current := offer.TotalPrice
	execResult := e.classify(task, offer)

	// Persist the observation before advancing the schedule: a crash in
	// between leaves the task due for retry, never silently skipped.
	_, err = e.store.CreatePriceHistory(model.PriceHistoryPoint{
		TaskID:     task.ID,
		Price:      current,
		Currency:   offer.Currency,
		Airlines:   strings.Join(sortedAirlines(offer), ","),
		Stops:      offer.TotalStops(),
		Duration:   flights.FormatDuration(offer.TotalDuration()),
		RecordedAt: now,
	})
	if err != nil {
		return failure(task.ID, task.Name, fmt.Errorf("persist price history: %w", err), "STORE_ERROR")
	}

	lowest := current
	if !execResult.IsNewLow && task.LowestPrice != nil {
		lowest = *task.LowestPrice
	}
	e.advanceSchedule(task, now, &current, &lowest)

	e.maybeNotify(task, execResult, now)
	return execResult
}

// classify derives the price-movement fields for this cycle's observation.
func (e *Executor) classify(task model.ScheduledTask, offer model.FlightOffer) model.TaskExecutionResult {
	current := offer.TotalPrice
	result := model.TaskExecutionResult{
		TaskID:       task.ID,
		TaskName:     task.Name,
		Success:      true,
		CurrentPrice: &current,
		Offer:        &offer,
	}

	if task.LastPrice != nil {
		prev := *task.LastPrice
		result.PreviousPrice = &prev
		result.PriceChange = current - prev
		if prev != 0 {
			result.PriceChangePercent = (current - prev) / prev * 100
		}
	}

	// The first-ever observation is automatically the lowest.
	result.IsNewLow = task.LowestPrice == nil || current < *task.LowestPrice
	result.HitTarget = task.PriceTarget != nil && current <= *task.PriceTarget
	return result
}

// advanceSchedule stamps lastRun and computes nextRun from the cron
// expression. Price fields are only touched when provided.
func (e *Executor) advanceSchedule(task model.ScheduledTask, now time.Time, lastPrice, lowestPrice *float64) {
	next := cronexpr.Next(task.CronExpr, now)
	if err := e.store.UpdateTaskRun(task.ID, now, next, lastPrice, lowestPrice); err != nil {
		log.Error().Err(err).Int("task_id", task.ID).Msg("failed to advance task schedule")
	}
}

// maybeNotify applies the qualification policy: target hit always notifies,
// then a new low, then a drop of 5% or more. Anything else stays silent to
// avoid notification fatigue. Dispatch failures are logged, never propagated.
func (e *Executor) maybeNotify(task model.ScheduledTask, result model.TaskExecutionResult, now time.Time) {
	if e.dispatcher == nil || result.CurrentPrice == nil {
		return
	}

	var reason string
	switch {
	case result.HitTarget:
		reason = notify.ReasonTargetHit
	case result.IsNewLow:
		reason = notify.ReasonNewLow
	case result.PreviousPrice != nil && result.PriceChangePercent <= -notifyDropPercent:
		reason = notify.ReasonPriceDrop
	default:
		return
	}

	alert := notify.Alert{
		TaskID:        task.ID,
		TaskName:      task.Name,
		Origin:        task.Origin,
		Destination:   task.Destination,
		DepartureDate: task.DepartureDate,
		Reason:        reason,
		CurrentPrice:  *result.CurrentPrice,
		PreviousPrice: result.PreviousPrice,
		PriceChange:   result.PriceChange,
		ChangePercent: result.PriceChangePercent,
		TargetPrice:   task.PriceTarget,
		Currency:      currencyOf(result),
		TriggeredAt:   now,
	}

	for _, cr := range e.dispatcher.Send(alert) {
		if cr.Err != nil {
			continue
		}
		taskID := task.ID
		if err := e.store.RecordNotification(&taskID, nil, cr.Channel, reason, alert.Subject(), now); err != nil {
			log.Error().Err(err).Int("task_id", task.ID).Msg("failed to record notification")
		}
	}
}

// RunDue executes every due task sequentially with the configured inter-task
// delay. Per-task failures are collected, not propagated; only a gateway
// configuration failure aborts the rest of the batch, since every remaining
// call would fail the same way.
func (e *Executor) RunDue(ctx context.Context) ([]model.TaskExecutionResult, error) {
	now := e.clk.Now()
	due, err := e.store.ListDueTasks(now)
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}

	log.Info().Int("due", len(due)).Msg("running due tasks")

	results := make([]model.TaskExecutionResult, 0, len(due))
	for i, task := range due {
		if i > 0 {
			e.delay.Wait(ctx)
		}
		result := e.ExecuteOne(ctx, task.ID)
		results = append(results, result)
		if result.ErrorCode == "NOT_CONFIGURED" {
			return results, flights.ErrNotConfigured
		}
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}
	return results, nil
}

// RunSummary aggregates a batch for the trigger endpoint and external
// monitoring.
type RunSummary struct {
	Total      int                         `json:"total"`
	Successful int                         `json:"successful"`
	Failed     int                         `json:"failed"`
	PriceDrops int                         `json:"price_drops"`
	NewLows    int                         `json:"new_lows"`
	TargetsHit int                         `json:"targets_hit"`
	Results    []model.TaskExecutionResult `json:"results"`
}

// Summarize folds per-task results into the batch summary shape.
func Summarize(results []model.TaskExecutionResult) RunSummary {
	s := RunSummary{Total: len(results), Results: results}
	for _, r := range results {
		if !r.Success {
			s.Failed++
			continue
		}
		s.Successful++
		if r.HitTarget {
			s.TargetsHit++
		}
		if r.IsNewLow {
			s.NewLows++
		}
		if r.PreviousPrice != nil && r.PriceChange < 0 {
			s.PriceDrops++
		}
	}
	return s
}

func failure(taskID int, name string, err error, code string) model.TaskExecutionResult {
	return model.TaskExecutionResult{
		TaskID:    taskID,
		TaskName:  name,
		Success:   false,
		Error:     err.Error(),
		ErrorCode: code,
	}
}

// startOfDay is computed in UTC because dates.Resolve produces UTC-midnight
// dates; a local-zone day boundary would reject same-day departures on any
// clock west of UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortedAirlines(offer model.FlightOffer) []string {
	out := append([]string(nil), offer.Airlines...)
	sort.Strings(out)
	return out
}

func currencyOf(result model.TaskExecutionResult) string {
	if result.Offer != nil && result.Offer.Currency != "" {
		return result.Offer.Currency
	}
	return "USD"
}
