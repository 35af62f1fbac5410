package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/model"
	"github.com/farewatch/farewatch/internal/scheduler"
)

var cronNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// stubStore serves one due task and one checkable alert.
type stubStore struct {
	task  model.ScheduledTask
	alert model.PriceAlert
}

func (s *stubStore) CreateTask(t model.ScheduledTask) (model.ScheduledTask, error) { return t, nil }
func (s *stubStore) GetTask(id int) (model.ScheduledTask, error)                   { return s.task, nil }
func (s *stubStore) ListTasks() ([]model.ScheduledTask, error) {
	return []model.ScheduledTask{s.task}, nil
}
func (s *stubStore) ListDueTasks(time.Time) ([]model.ScheduledTask, error) {
	return []model.ScheduledTask{s.task}, nil
}
func (s *stubStore) UpdateTask(model.ScheduledTask) error { return nil }
func (s *stubStore) UpdateTaskRun(int, time.Time, time.Time, *float64, *float64) error {
	return nil
}
func (s *stubStore) SetTaskActive(int, bool) error { return nil }
func (s *stubStore) DeleteTask(int) error          { return nil }
func (s *stubStore) CreatePriceHistory(p model.PriceHistoryPoint) (model.PriceHistoryPoint, error) {
	return p, nil
}
func (s *stubStore) ListPriceHistory(int, int) ([]model.PriceHistoryPoint, error) { return nil, nil }
func (s *stubStore) CreateAlert(a model.PriceAlert) (model.PriceAlert, error)     { return a, nil }
func (s *stubStore) GetAlert(int) (model.PriceAlert, error)                       { return s.alert, nil }
func (s *stubStore) ListAlerts() ([]model.PriceAlert, error) {
	return []model.PriceAlert{s.alert}, nil
}
func (s *stubStore) ListCheckableAlerts(time.Time) ([]model.PriceAlert, error) {
	return []model.PriceAlert{s.alert}, nil
}
func (s *stubStore) UpdateAlertPrice(int, float64, string) error       { return nil }
func (s *stubStore) MarkAlertTriggered(int, time.Time) error           { return nil }
func (s *stubStore) DeleteAlert(int) error                             { return nil }
func (s *stubStore) DeleteExpiredAlerts(time.Time) (int, error)        { return 0, nil }
func (s *stubStore) RecordNotification(*int, *int, string, string, string, time.Time) error {
	return nil
}

type countingGateway struct {
	err   error
	calls int
}

func (g *countingGateway) Search(context.Context, flights.SearchRequest) (*flights.SearchResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &flights.SearchResult{}, nil
}

func postRunBatch(t *testing.T, store *stubStore, gw flights.Client) (packets.TriggerResponse, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/run", strings.NewReader("{}"))

	clk := clock.Fixed{T: cronNow}
	executor := scheduler.NewExecutor(store, gw, nil, clk, scheduler.NoDelay{})
	alerts := scheduler.NewAlertEvaluator(store, gw, nil, clk, scheduler.NoDelay{})

	payload, apiErr := NewCronController(executor, alerts).runBatch(ctx)
	if apiErr != nil {
		return packets.TriggerResponse{}, apiErr.Code
	}
	response, ok := payload.(packets.TriggerResponse)
	require.True(t, ok)
	return response, http.StatusOK
}

func dueStore() *stubStore {
	return &stubStore{
		task: model.ScheduledTask{
			ID: 1, Name: "due task", Origin: "EZE", Destination: "MAD",
			DepartureDate: "+30d", Passengers: 1, CabinClass: "ECONOMY",
			CronExpr: "0 9 * * *", Active: true, NextRun: cronNow.Add(-time.Minute),
		},
		alert: model.PriceAlert{
			ID: 7, Origin: "EZE", Destination: "MAD", DepartureDate: "2025-07-15",
			TargetPrice: 500, Active: true, ExpiresAt: cronNow.Add(24 * time.Hour),
		},
	}
}

func TestRunBatchChecksAlertsAfterTasks(t *testing.T) {
	gw := &countingGateway{}
	response, status := postRunBatch(t, dueStore(), gw)
	require.Equal(t, http.StatusOK, status)

	// one task search plus one alert search
	assert.Equal(t, 2, gw.calls)
	assert.Equal(t, 1, response.Tasks.Total)
	assert.Equal(t, 1, response.Alerts.Checked)
}

func TestRunBatchSkipsAlertsWhenGatewayUnconfigured(t *testing.T) {
	gw := &countingGateway{err: flights.ErrNotConfigured}
	response, status := postRunBatch(t, dueStore(), gw)
	require.Equal(t, http.StatusOK, status)

	// the aborted task batch is reported, and the alert pass never hits the
	// gateway it already knows is down
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, 1, response.Tasks.Failed)
	assert.Zero(t, response.Alerts.Checked)
	assert.Empty(t, response.Alerts.Results)
}
