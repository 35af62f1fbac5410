package flights

import "errors"

// Gateway error taxonomy. Callers branch on these with errors.Is; everything
// the provider can throw at us is folded into one of these before it leaves
// this package.
var (
	ErrInvalidAirportCode = errors.New("invalid airport code")
	ErrPastDate           = errors.New("departure date is in the past")
	ErrNoResults          = errors.New("no flights found")
	ErrRateLimited        = errors.New("rate limited by flight provider")
	ErrAuthFailed         = errors.New("flight provider authentication failed")
	ErrServiceUnavailable = errors.New("flight provider unavailable")
	ErrNetwork            = errors.New("network error reaching flight provider")
	ErrNotConfigured      = errors.New("flight provider credentials not configured")
)

// IsBenign reports whether err is an empty-result outcome rather than a real
// failure. The scheduler treats these as informational, not errors.
func IsBenign(err error) bool {
	return errors.Is(err, ErrNoResults)
}

// IsFatal reports whether err makes every subsequent gateway call pointless,
// which aborts a whole batch instead of a single unit of work.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// ErrorCode maps a gateway error to a machine-readable code for API
// responses.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAirportCode):
		return "INVALID_AIRPORT_CODE"
	case errors.Is(err, ErrPastDate):
		return "PAST_DATE"
	case errors.Is(err, ErrNoResults):
		return "NO_RESULTS"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrAuthFailed):
		return "AUTH_FAILED"
	case errors.Is(err, ErrServiceUnavailable):
		return "SERVICE_UNAVAILABLE"
	case errors.Is(err, ErrNetwork):
		return "NETWORK_ERROR"
	case errors.Is(err, ErrNotConfigured):
		return "NOT_CONFIGURED"
	default:
		return "UNKNOWN"
	}
}
