package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/model"
)

const taskColumns = `
	id, name, origin, destination, departure_date, return_date,
	passengers, cabin_class, cron_expr, price_target, active,
	last_run, next_run, last_price, lowest_price, created_at, updated_at`

func (s *pgStore) CreateTask(t model.ScheduledTask) (model.ScheduledTask, error) {
	var out model.ScheduledTask
	const q = `
	INSERT INTO tasks
	  (name, origin, destination, departure_date, return_date,
	   passengers, cabin_class, cron_expr, price_target, active, next_run,
	   created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
	RETURNING` + taskColumns + `;`
	err := s.db.Get(&out, q,
		t.Name, t.Origin, t.Destination, t.DepartureDate, t.ReturnDate,
		t.Passengers, t.CabinClass, t.CronExpr, t.PriceTarget, t.Active, t.NextRun)
	if err != nil {
		log.Error().Err(err).Msg("CreateTask failed")
		return model.ScheduledTask{}, err
	}
	return out, nil
}

func (s *pgStore) GetTask(id int) (model.ScheduledTask, error) {
	var t model.ScheduledTask
	err := s.db.Get(&t, `SELECT`+taskColumns+` FROM tasks WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("task_id", id).Msg("GetTask failed")
	}
	return t, err
}

func (s *pgStore) ListTasks() ([]model.ScheduledTask, error) {
	var out []model.ScheduledTask
	err := s.db.Select(&out, `SELECT`+taskColumns+` FROM tasks ORDER BY id;`)
	if err != nil {
		log.Error().Err(err).Msg("ListTasks failed")
		return nil, err
	}
	return out, nil
}

// ListDueTasks returns active tasks whose next run is at or before now.
func (s *pgStore) ListDueTasks(now time.Time) ([]model.ScheduledTask, error) {
	var out []model.ScheduledTask
	const q = `
	SELECT` + taskColumns + `
	  FROM tasks
	 WHERE active = true AND next_run <= $1
	 ORDER BY next_run;`
	err := s.db.Select(&out, q, now)
	if err != nil {
		log.Error().Err(err).Msg("ListDueTasks failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateTask(t model.ScheduledTask) error {
	const q = `
	UPDATE tasks SET
	  name = $2, origin = $3, destination = $4, departure_date = $5,
	  return_date = $6, passengers = $7, cabin_class = $8, cron_expr = $9,
	  price_target = $10, active = $11, next_run = $12, updated_at = now()
	WHERE id = $1;`
	_, err := s.db.Exec(q,
		t.ID, t.Name, t.Origin, t.Destination, t.DepartureDate, t.ReturnDate,
		t.Passengers, t.CabinClass, t.CronExpr, t.PriceTarget, t.Active, t.NextRun)
	if err != nil {
		log.Error().Err(err).Int("task_id", t.ID).Msg("UpdateTask failed")
	}
	return err
}

// UpdateTaskRun advances the run-tracking fields in a single statement so a
// task is either fully advanced or not at all.
func (s *pgStore) UpdateTaskRun(id int, lastRun, nextRun time.Time, lastPrice, lowestPrice *float64) error {
	const q = `
	UPDATE tasks SET
	  last_run = $2, next_run = $3,
	  last_price = COALESCE($4, last_price),
	  lowest_price = COALESCE($5, lowest_price),
	  updated_at = now()
	WHERE id = $1;`
	_, err := s.db.Exec(q, id, lastRun, nextRun, lastPrice, lowestPrice)
	if err != nil {
		log.Error().Err(err).Int("task_id", id).Msg("UpdateTaskRun failed")
	}
	return err
}

func (s *pgStore) SetTaskActive(id int, active bool) error {
	_, err := s.db.Exec(`UPDATE tasks SET active = $2, updated_at = now() WHERE id = $1;`, id, active)
	if err != nil {
		log.Error().Err(err).Int("task_id", id).Msg("SetTaskActive failed")
	}
	return err
}

// DeleteTask removes the task; its price history goes with it via the
// ON DELETE CASCADE on price_history.
func (s *pgStore) DeleteTask(id int) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("task_id", id).Msg("DeleteTask failed")
	}
	return err
}
