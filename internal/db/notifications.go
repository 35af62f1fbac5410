package db

import (
	"time"

	"github.com/rs/zerolog/log"
)

// RecordNotification appends to the audit log of dispatched notifications.
// Audit failures are logged and swallowed upstream; losing an audit row never
// blocks a delivery.
func (s *pgStore) RecordNotification(taskID *int, alertID *int, channel, reason, summary string, sentAt time.Time) error {
	const q = `
	INSERT INTO notifications (task_id, alert_id, channel, reason, summary, sent_at)
	VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := s.db.Exec(q, taskID, alertID, channel, reason, summary, sentAt)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("RecordNotification failed")
	}
	return err
}
