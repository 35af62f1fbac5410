package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Layout is the wire format for all dates in this service.
const Layout = "2006-01-02"

var relativeExpr = regexp.MustCompile(`^\+(\d+)([dwm])$`)

// Resolve turns a date expression into a concrete date. Absolute YYYY-MM-DD
// values pass through; relative offsets (+30d, +2w, +1m) resolve against now.
// Relative expressions resolving at execution time is what makes a recurring
// task track a rolling window instead of a fixed date.
func Resolve(expr string, now time.Time) (time.Time, error) {
	if m := relativeExpr.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date %q: %w", expr, err)
		}
		base := now.Truncate(24 * time.Hour)
		switch m[2] {
		case "d":
			return base.AddDate(0, 0, n), nil
		case "w":
			return base.AddDate(0, 0, 7*n), nil
		case "m":
			return base.AddDate(0, n, 0), nil
		}
	}

	t, err := time.Parse(Layout, expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date expression %q", expr)
	}
	return t, nil
}

// IsValid reports whether expr is an absolute date or a relative offset.
func IsValid(expr string) bool {
	_, err := Resolve(expr, time.Now())
	return err == nil
}
