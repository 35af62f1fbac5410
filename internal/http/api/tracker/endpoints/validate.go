package endpoints

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/farewatch/farewatch/internal/cronexpr"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/http/api"
)

var iataCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Input validation runs before any external call so bad requests never burn a
// provider quota. Each rejection carries a machine-readable code.

func validateRoute(origin, destination string) *api.APIError {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	if !iataCode.MatchString(origin) || !iataCode.MatchString(destination) {
		return api.Errf(http.StatusBadRequest, "INVALID_AIRPORT_CODE",
			"origin and destination must be 3-letter IATA codes")
	}
	if origin == destination {
		return api.Errf(http.StatusBadRequest, "SAME_ORIGIN_DESTINATION",
			"origin and destination must differ")
	}
	return nil
}

func validateDateExpr(expr string) *api.APIError {
	if !dates.IsValid(expr) {
		return api.Errf(http.StatusBadRequest, "INVALID_DATE_EXPRESSION",
			"date must be YYYY-MM-DD or a relative offset like +30d")
	}
	return nil
}

func validateCron(expr string) *api.APIError {
	if !cronexpr.IsValid(expr) {
		return api.Errf(http.StatusBadRequest, "INVALID_CRON",
			"cron expression must be 5 fields (minute hour day month weekday)")
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
