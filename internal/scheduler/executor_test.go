package scheduler

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/model"
	"github.com/farewatch/farewatch/internal/notify"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// memStore is an in-memory db.Store for executor and alert tests.
type memStore struct {
	tasks         map[int]model.ScheduledTask
	history       []model.PriceHistoryPoint
	alerts        map[int]model.PriceAlert
	notifications []string
	nextID        int
}

func newMemStore() *memStore {
	return &memStore{
		tasks:  map[int]model.ScheduledTask{},
		alerts: map[int]model.PriceAlert{},
		nextID: 1,
	}
}

func (m *memStore) CreateTask(t model.ScheduledTask) (model.ScheduledTask, error) {
	t.ID = m.nextID
	m.nextID++
	m.tasks[t.ID] = t
	return t, nil
}

func (m *memStore) GetTask(id int) (model.ScheduledTask, error) {
	t, ok := m.tasks[id]
	if !ok {
		return model.ScheduledTask{}, sql.ErrNoRows
	}
	return t, nil
}

func (m *memStore) ListTasks() ([]model.ScheduledTask, error) {
	out := make([]model.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListDueTasks(now time.Time) ([]model.ScheduledTask, error) {
	all, _ := m.ListTasks()
	out := make([]model.ScheduledTask, 0)
	for _, t := range all {
		if t.Active && !t.NextRun.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) UpdateTask(t model.ScheduledTask) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *memStore) UpdateTaskRun(id int, lastRun, nextRun time.Time, lastPrice, lowestPrice *float64) error {
	t := m.tasks[id]
	t.LastRun = &lastRun
	t.NextRun = nextRun
	if lastPrice != nil {
		t.LastPrice = lastPrice
	}
	if lowestPrice != nil {
		t.LowestPrice = lowestPrice
	}
	m.tasks[id] = t
	return nil
}

func (m *memStore) SetTaskActive(id int, active bool) error {
	t := m.tasks[id]
	t.Active = active
	m.tasks[id] = t
	return nil
}

func (m *memStore) DeleteTask(id int) error {
	delete(m.tasks, id)
	return nil
}

func (m *memStore) CreatePriceHistory(p model.PriceHistoryPoint) (model.PriceHistoryPoint, error) {
	p.ID = m.nextID
	m.nextID++
	m.history = append(m.history, p)
	return p, nil
}

func (m *memStore) ListPriceHistory(taskID int, limit int) ([]model.PriceHistoryPoint, error) {
	out := make([]model.PriceHistoryPoint, 0)
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].TaskID == taskID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateAlert(a model.PriceAlert) (model.PriceAlert, error) {
	a.ID = m.nextID
	m.nextID++
	a.Active = true
	m.alerts[a.ID] = a
	return a, nil
}

func (m *memStore) GetAlert(id int) (model.PriceAlert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return model.PriceAlert{}, sql.ErrNoRows
	}
	return a, nil
}

func (m *memStore) ListAlerts() ([]model.PriceAlert, error) {
	out := make([]model.PriceAlert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListCheckableAlerts(now time.Time) ([]model.PriceAlert, error) {
	all, _ := m.ListAlerts()
	out := make([]model.PriceAlert, 0)
	for _, a := range all {
		if a.Active && !a.Triggered && a.ExpiresAt.After(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) UpdateAlertPrice(id int, price float64, currency string) error {
	a := m.alerts[id]
	a.CurrentPrice = &price
	a.Currency = currency
	m.alerts[id] = a
	return nil
}

func (m *memStore) MarkAlertTriggered(id int, notifiedAt time.Time) error {
	a := m.alerts[id]
	a.Triggered = true
	a.NotifiedAt = &notifiedAt
	m.alerts[id] = a
	return nil
}

func (m *memStore) DeleteAlert(id int) error {
	delete(m.alerts, id)
	return nil
}

func (m *memStore) DeleteExpiredAlerts(now time.Time) (int, error) {
	n := 0
	for id, a := range m.alerts {
		if !a.ExpiresAt.After(now) {
			delete(m.alerts, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) RecordNotification(taskID *int, alertID *int, channel, reason, summary string, sentAt time.Time) error {
	m.notifications = append(m.notifications, channel+":"+reason)
	return nil
}

// priceGateway returns a single offer at a fixed price, or an error.
type priceGateway struct {
	price   float64
	err     error
	calls   int
	lastReq flights.SearchRequest
}

func (g *priceGateway) Search(_ context.Context, req flights.SearchRequest) (*flights.SearchResult, error) {
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	if g.price <= 0 {
		return &flights.SearchResult{}, nil
	}
	dep := testNow.Add(30 * 24 * time.Hour)
	return &flights.SearchResult{Offers: []model.FlightOffer{{
		ID:         "offer-1",
		TotalPrice: g.price,
		Currency:   "USD",
		Airlines:   []string{"LH", "LX"},
		Legs: []model.FlightLeg{{
			Origin:      req.Origin,
			Destination: req.Destination,
			Departure:   dep,
			Arrival:     dep.Add(13 * time.Hour),
			Stops:       1,
		}},
	}}}, nil
}

// recordingDispatcher captures alerts instead of delivering them.
type recordingDispatcher struct {
	sent []notify.Alert
	fail bool
}

func (d *recordingDispatcher) Send(alert notify.Alert) []notify.ChannelResult {
	d.sent = append(d.sent, alert)
	if d.fail {
		return []notify.ChannelResult{{Channel: notify.ChannelEmail, Delivered: false, Err: assert.AnError}}
	}
	return []notify.ChannelResult{{Channel: notify.ChannelEmail, Delivered: true}}
}

func baseTask() model.ScheduledTask {
	return model.ScheduledTask{
		Name:          "EZE to MAD monthly",
		Origin:        "EZE",
		Destination:   "MAD",
		DepartureDate: "+30d",
		Passengers:    1,
		CabinClass:    "ECONOMY",
		CronExpr:      "0 9 * * *",
		Active:        true,
		NextRun:       testNow.Add(-time.Minute),
	}
}

func newTestExecutor(store *memStore, gw flights.Client, d notify.Dispatcher) *Executor {
	return NewExecutor(store, gw, d, clock.Fixed{T: testNow}, NoDelay{})
}

func TestExecuteOneFirstObservationIsNewLow(t *testing.T) {
	store := newMemStore()
	task, _ := store.CreateTask(baseTask())
	gw := &priceGateway{price: 450}
	dispatcher := &recordingDispatcher{}

	result := newTestExecutor(store, gw, dispatcher).ExecuteOne(context.Background(), task.ID)

	require.True(t, result.Success)
	assert.Nil(t, result.PreviousPrice)
	assert.True(t, result.IsNewLow)
	assert.False(t, result.HitTarget)
	assert.Equal(t, 0.0, result.PriceChange)

	updated, _ := store.GetTask(task.ID)
	require.NotNil(t, updated.LowestPrice)
	assert.Equal(t, 450.0, *updated.LowestPrice)
	require.NotNil(t, updated.LastPrice)
	assert.Equal(t, 450.0, *updated.LastPrice)

	// first observation is a new low, which notifies
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, notify.ReasonNewLow, dispatcher.sent[0].Reason)
}

func TestExecuteOneNewLowAndTargetHit(t *testing.T) {
	store := newMemStore()
	tk := baseTask()
	last, lowest, target := 500.0, 500.0, 490.0
	tk.LastPrice = &last
	tk.LowestPrice = &lowest
	tk.PriceTarget = &target
	task, _ := store.CreateTask(tk)

	dispatcher := &recordingDispatcher{}
	result := newTestExecutor(store, &priceGateway{price: 480}, dispatcher).
		ExecuteOne(context.Background(), task.ID)

	require.True(t, result.Success)
	assert.True(t, result.IsNewLow)
	assert.True(t, result.HitTarget)

	// target-hit outranks new-low in the message
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, notify.ReasonTargetHit, dispatcher.sent[0].Reason)
}

func TestExecuteOneMinorDropStaysSilent(t *testing.T) {
	store := newMemStore()
	tk := baseTask()
	last, lowest := 500.0, 450.0
	tk.LastPrice = &last
	tk.LowestPrice = &lowest
	task, _ := store.CreateTask(tk)

	dispatcher := &recordingDispatcher{}
	result := newTestExecutor(store, &priceGateway{price: 490}, dispatcher).
		ExecuteOne(context.Background(), task.ID)

	require.True(t, result.Success)
	assert.False(t, result.IsNewLow)
	assert.False(t, result.HitTarget)
	assert.InDelta(t, -2, result.PriceChangePercent, 0.001)

	// a 2% drop is below the 5% notification bar
	assert.Empty(t, dispatcher.sent)
}

func TestExecuteOneBigDropNotifies(t *testing.T) {
	store := newMemStore()
	tk := baseTask()
	last, lowest := 500.0, 400.0
	tk.LastPrice = &last
	tk.LowestPrice = &lowest
	task, _ := store.CreateTask(tk)

	dispatcher := &recordingDispatcher{}
	result := newTestExecutor(store, &priceGateway{price: 450}, dispatcher).
		ExecuteOne(context.Background(), task.ID)

	require.True(t, result.Success)
	assert.False(t, result.IsNewLow) // 450 is not below the stored 400
	assert.InDelta(t, -10, result.PriceChangePercent, 0.001)
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, notify.ReasonPriceDrop, dispatcher.sent[0].Reason)
}

func TestExecuteOneRecordsHistory(t *testing.T) {
	store := newMemStore()
	task, _ := store.CreateTask(baseTask())

	newTestExecutor(store, &priceGateway{price: 450}, nil).
		ExecuteOne(context.Background(), task.ID)

	require.Len(t, store.history, 1)
	point := store.history[0]
	assert.Equal(t, task.ID, point.TaskID)
	assert.Equal(t, 450.0, point.Price)
	assert.Equal(t, "USD", point.Currency)
	assert.Equal(t, "LH,LX", point.Airlines)
	assert.Equal(t, 1, point.Stops)
	assert.Equal(t, "13h 0m", point.Duration)
	assert.Equal(t, testNow, point.RecordedAt)
}

func TestExecuteOneNoFlightsIsBenign(t *testing.T) {
	store := newMemStore()
	task, _ := store.CreateTask(baseTask())

	result := newTestExecutor(store, &priceGateway{price: 0}, nil).
		ExecuteOne(context.Background(), task.ID)

	assert.True(t, result.Success)
	assert.True(t, result.NoFlightsFound)
	assert.Empty(t, store.history)

	// the schedule still advances
	updated, _ := store.GetTask(task.ID)
	require.NotNil(t, updated.LastRun)
	assert.True(t, updated.NextRun.After(testNow))
}

func TestExecuteOneNotFound(t *testing.T) {
	store := newMemStore()
	result := newTestExecutor(store, &priceGateway{price: 450}, nil).
		ExecuteOne(context.Background(), 42)
	assert.False(t, result.Success)
	assert.Equal(t, "TASK_NOT_FOUND", result.ErrorCode)
}

func TestExecuteOneInactiveDoesNotAdvanceSchedule(t *testing.T) {
	store := newMemStore()
	tk := baseTask()
	tk.Active = false
	task, _ := store.CreateTask(tk)

	result := newTestExecutor(store, &priceGateway{price: 450}, nil).
		ExecuteOne(context.Background(), task.ID)

	assert.False(t, result.Success)
	assert.Equal(t, "TASK_INACTIVE", result.ErrorCode)

	updated, _ := store.GetTask(task.ID)
	assert.Nil(t, updated.LastRun)
	assert.Equal(t, task.NextRun, updated.NextRun)
}

func TestExecuteOnePastDepartureDateAdvancesSchedule(t *testing.T) {
	store := newMemStore()
	tk := baseTask()
	tk.DepartureDate = "2020-01-01"
	task, _ := store.CreateTask(tk)

	gw := &priceGateway{price: 450}
	result := newTestExecutor(store, gw, nil).ExecuteOne(context.Background(), task.ID)

	assert.False(t, result.Success)
	assert.Equal(t, "PAST_DEPARTURE_DATE", result.ErrorCode)
	assert.Equal(t, 0, gw.calls, "stale task must not burn a search call")

	// the task stays active and its schedule moves on
	updated, _ := store.GetTask(task.ID)
	assert.True(t, updated.Active)
	require.NotNil(t, updated.LastRun)
	assert.True(t, updated.NextRun.After(testNow))
}

func TestExecuteOneSameDayDepartureOnWesternClock(t *testing.T) {
	store := newMemStore()
	tk := baseTask()
	tk.DepartureDate = "2025-06-01"
	task, _ := store.CreateTask(tk)

	// 10:00 in New York on departure day; the UTC calendar day is the same,
	// so the task must search, not fail as past.
	local := time.Date(2025, 6, 1, 10, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	gw := &priceGateway{price: 450}
	executor := NewExecutor(store, gw, nil, clock.Fixed{T: local}, NoDelay{})

	result := executor.ExecuteOne(context.Background(), task.ID)

	require.True(t, result.Success, "same-day departure rejected: %s", result.ErrorCode)
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, "2025-06-01", gw.lastReq.DepartureDate)
}

func TestExecuteOneSearchFailureLeavesScheduleUntouched(t *testing.T) {
	store := newMemStore()
	task, _ := store.CreateTask(baseTask())

	result := newTestExecutor(store, &priceGateway{err: flights.ErrRateLimited}, nil).
		ExecuteOne(context.Background(), task.ID)

	assert.False(t, result.Success)
	assert.Equal(t, "RATE_LIMITED", result.ErrorCode)

	// the task remains due, so the next trigger retries it
	updated, _ := store.GetTask(task.ID)
	assert.Nil(t, updated.LastRun)
	assert.Equal(t, task.NextRun, updated.NextRun)
	assert.Empty(t, store.history)
}

func TestExecuteOneDispatchFailureDoesNotFailExecution(t *testing.T) {
	store := newMemStore()
	task, _ := store.CreateTask(baseTask())

	dispatcher := &recordingDispatcher{fail: true}
	result := newTestExecutor(store, &priceGateway{price: 450}, dispatcher).
		ExecuteOne(context.Background(), task.ID)

	assert.True(t, result.Success)
	assert.Len(t, store.history, 1)
	// failed deliveries are not recorded in the audit log
	assert.Empty(t, store.notifications)
}

func TestLowestPriceIsMonotone(t *testing.T) {
	store := newMemStore()
	task, _ := store.CreateTask(baseTask())
	gw := &priceGateway{}
	executor := newTestExecutor(store, gw, nil)

	prices := []float64{500, 480, 520, 470, 600, 470}
	for _, p := range prices {
		gw.price = p
		// keep the task due for the next round
		current, _ := store.GetTask(task.ID)
		current.NextRun = testNow.Add(-time.Minute)
		store.tasks[task.ID] = current

		result := executor.ExecuteOne(context.Background(), task.ID)
		require.True(t, result.Success)

		updated, _ := store.GetTask(task.ID)
		require.NotNil(t, updated.LowestPrice)
		assert.LessOrEqual(t, *updated.LowestPrice, p)
	}

	final, _ := store.GetTask(task.ID)
	assert.Equal(t, 470.0, *final.LowestPrice)
	assert.Equal(t, 470.0, *final.LastPrice)
	assert.Len(t, store.history, len(prices))
}

func TestRunDueExecutesOnlyDueActiveTasks(t *testing.T) {
	store := newMemStore()
	due, _ := store.CreateTask(baseTask())

	notDue := baseTask()
	notDue.NextRun = testNow.Add(time.Hour)
	store.CreateTask(notDue)

	inactive := baseTask()
	inactive.Active = false
	store.CreateTask(inactive)

	results, err := newTestExecutor(store, &priceGateway{price: 450}, nil).
		RunDue(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, due.ID, results[0].TaskID)
}

func TestRunDueContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	bad := baseTask()
	bad.DepartureDate = "2020-01-01"
	store.CreateTask(bad)
	good, _ := store.CreateTask(baseTask())

	results, err := newTestExecutor(store, &priceGateway{price: 450}, nil).
		RunDue(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Equal(t, good.ID, results[1].TaskID)
}

func TestRunDueAbortsOnGatewayNotConfigured(t *testing.T) {
	store := newMemStore()
	store.CreateTask(baseTask())
	store.CreateTask(baseTask())

	gw := &priceGateway{err: flights.ErrNotConfigured}
	results, err := newTestExecutor(store, gw, nil).RunDue(context.Background())

	assert.ErrorIs(t, err, flights.ErrNotConfigured)
	assert.Len(t, results, 1, "remaining tasks are skipped, they would fail identically")
}

func TestSummarize(t *testing.T) {
	prev := 500.0
	p450, p480 := 450.0, 480.0
	results := []model.TaskExecutionResult{
		{Success: true, CurrentPrice: &p450, PreviousPrice: &prev, PriceChange: -50, IsNewLow: true},
		{Success: true, CurrentPrice: &p480, PreviousPrice: &prev, PriceChange: -20, HitTarget: true},
		{Success: true, NoFlightsFound: true},
		{Success: false, ErrorCode: "RATE_LIMITED"},
	}

	s := Summarize(results)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Successful)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.PriceDrops)
	assert.Equal(t, 1, s.NewLows)
	assert.Equal(t, 1, s.TargetsHit)
}
