package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farewatch/farewatch/internal/model"
)

// Store exposes all persistence operations behind one interface so the
// scheduler and HTTP layer take an injected store and tests can substitute an
// in-memory fake.
type Store interface {
	// scheduled tasks
	CreateTask(t model.ScheduledTask) (model.ScheduledTask, error)
	GetTask(id int) (model.ScheduledTask, error)
	ListTasks() ([]model.ScheduledTask, error)
	ListDueTasks(now time.Time) ([]model.ScheduledTask, error)
	UpdateTask(t model.ScheduledTask) error
	UpdateTaskRun(id int, lastRun, nextRun time.Time, lastPrice, lowestPrice *float64) error
	SetTaskActive(id int, active bool) error
	DeleteTask(id int) error

	// price history
	CreatePriceHistory(p model.PriceHistoryPoint) (model.PriceHistoryPoint, error)
	ListPriceHistory(taskID int, limit int) ([]model.PriceHistoryPoint, error)

	// price alerts
	CreateAlert(a model.PriceAlert) (model.PriceAlert, error)
	GetAlert(id int) (model.PriceAlert, error)
	ListAlerts() ([]model.PriceAlert, error)
	ListCheckableAlerts(now time.Time) ([]model.PriceAlert, error)
	UpdateAlertPrice(id int, price float64, currency string) error
	MarkAlertTriggered(id int, notifiedAt time.Time) error
	DeleteAlert(id int) error
	DeleteExpiredAlerts(now time.Time) (int, error)

	// notification audit log
	RecordNotification(taskID *int, alertID *int, channel, reason, summary string, sentAt time.Time) error
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

// NewStore wraps a live connection in the Store interface.
func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
