package db

import (
	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/model"
)

func (s *pgStore) CreatePriceHistory(p model.PriceHistoryPoint) (model.PriceHistoryPoint, error) {
	var out model.PriceHistoryPoint
	const q = `
	INSERT INTO price_history (task_id, price, currency, airlines, stops, duration, recorded_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	RETURNING id, task_id, price, currency, airlines, stops, duration, recorded_at;`
	err := s.db.Get(&out, q, p.TaskID, p.Price, p.Currency, p.Airlines, p.Stops, p.Duration, p.RecordedAt)
	if err != nil {
		log.Error().Err(err).Int("task_id", p.TaskID).Msg("CreatePriceHistory failed")
		return model.PriceHistoryPoint{}, err
	}
	return out, nil
}

// ListPriceHistory returns observations newest first, which is the display
// order.
func (s *pgStore) ListPriceHistory(taskID int, limit int) ([]model.PriceHistoryPoint, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []model.PriceHistoryPoint
	const q = `
	SELECT id, task_id, price, currency, airlines, stops, duration, recorded_at
	  FROM price_history
	 WHERE task_id = $1
	 ORDER BY recorded_at DESC
	 LIMIT $2;`
	err := s.db.Select(&out, q, taskID, limit)
	if err != nil {
		log.Error().Err(err).Int("task_id", taskID).Msg("ListPriceHistory failed")
		return nil, err
	}
	return out, nil
}
