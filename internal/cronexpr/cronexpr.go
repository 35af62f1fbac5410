package cronexpr

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// FallbackInterval is how far Next pushes a task whose cron expression no
// longer parses. The task keeps cycling daily instead of wedging the batch.
const FallbackInterval = 24 * time.Hour

// standard 5-field cron: minute hour day-of-month month day-of-week.
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// IsValid reports whether expr parses as a 5-field cron expression.
func IsValid(expr string) bool {
	_, err := parser.Parse(expr)
	return err == nil
}

// Next returns the earliest instant strictly after from that matches expr.
// A malformed expression falls back to from+24h so one corrupt task cannot
// halt the whole batch; the fallback is logged, never silent.
func Next(expr string, from time.Time) time.Time {
	sched, err := parser.Parse(expr)
	if err != nil {
		log.Warn().Err(err).Str("cron", expr).
			Msg("unparseable cron expression, falling back to 24h interval")
		return from.Add(FallbackInterval)
	}
	return sched.Next(from)
}
