package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/model"
)

const alertColumns = `
	id, origin, destination, departure_date, return_date, target_price,
	current_price, currency, triggered, active, notified_at, expires_at, created_at`

func (s *pgStore) CreateAlert(a model.PriceAlert) (model.PriceAlert, error) {
	var out model.PriceAlert
	const q = `
	INSERT INTO alerts
	  (origin, destination, departure_date, return_date, target_price,
	   currency, triggered, active, expires_at, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,false,true,$7,now())
	RETURNING` + alertColumns + `;`
	err := s.db.Get(&out, q,
		a.Origin, a.Destination, a.DepartureDate, a.ReturnDate,
		a.TargetPrice, a.Currency, a.ExpiresAt)
	if err != nil {
		log.Error().Err(err).Msg("CreateAlert failed")
		return model.PriceAlert{}, err
	}
	return out, nil
}

func (s *pgStore) GetAlert(id int) (model.PriceAlert, error) {
	var a model.PriceAlert
	err := s.db.Get(&a, `SELECT`+alertColumns+` FROM alerts WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("alert_id", id).Msg("GetAlert failed")
	}
	return a, err
}

func (s *pgStore) ListAlerts() ([]model.PriceAlert, error) {
	var out []model.PriceAlert
	err := s.db.Select(&out, `SELECT`+alertColumns+` FROM alerts ORDER BY id;`)
	if err != nil {
		log.Error().Err(err).Msg("ListAlerts failed")
		return nil, err
	}
	return out, nil
}

// ListCheckableAlerts returns alerts still worth pricing: active, never
// triggered, not yet expired.
func (s *pgStore) ListCheckableAlerts(now time.Time) ([]model.PriceAlert, error) {
	var out []model.PriceAlert
	const q = `
	SELECT` + alertColumns + `
	  FROM alerts
	 WHERE active = true AND triggered = false AND expires_at > $1
	 ORDER BY id;`
	err := s.db.Select(&out, q, now)
	if err != nil {
		log.Error().Err(err).Msg("ListCheckableAlerts failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateAlertPrice(id int, price float64, currency string) error {
	_, err := s.db.Exec(`UPDATE alerts SET current_price = $2, currency = $3 WHERE id = $1;`, id, price, currency)
	if err != nil {
		log.Error().Err(err).Int("alert_id", id).Msg("UpdateAlertPrice failed")
	}
	return err
}

// MarkAlertTriggered flips the one-shot latch. A triggered alert is never
// re-evaluated.
func (s *pgStore) MarkAlertTriggered(id int, notifiedAt time.Time) error {
	_, err := s.db.Exec(`UPDATE alerts SET triggered = true, notified_at = $2 WHERE id = $1;`, id, notifiedAt)
	if err != nil {
		log.Error().Err(err).Int("alert_id", id).Msg("MarkAlertTriggered failed")
	}
	return err
}

func (s *pgStore) DeleteAlert(id int) error {
	_, err := s.db.Exec(`DELETE FROM alerts WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("alert_id", id).Msg("DeleteAlert failed")
	}
	return err
}

// DeleteExpiredAlerts removes every alert past its expiry, triggered or not.
func (s *pgStore) DeleteExpiredAlerts(now time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM alerts WHERE expires_at <= $1;`, now)
	if err != nil {
		log.Error().Err(err).Msg("DeleteExpiredAlerts failed")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
