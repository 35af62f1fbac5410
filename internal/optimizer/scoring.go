package optimizer

import "time"

// ScoringConfig names every constant in the desirability heuristic so the
// policy can be tuned and table-tested without touching control flow.
type ScoringConfig struct {
	// Price component: full marks at or below PriceBase, minus
	// PricePointsPerStep for every PriceStep above it.
	PriceBase          float64
	PriceStep          float64
	PricePointsPerStep float64

	// Duration component: full marks at or below DurationBase, minus
	// DurationPointsPerHour per additional hour.
	DurationBase          time.Duration
	DurationPointsPerHour float64

	// Component weights in the final blend.
	PriceWeight    float64
	DurationWeight float64

	// Layover penalties for stopover routes. The 2-4h band is the sweet
	// spot and carries no penalty.
	ShortLayoverMax     time.Duration
	ShortLayoverPenalty float64
	MidLayoverMin       time.Duration
	MidLayoverMax       time.Duration
	MidLayoverPenalty   float64
	LongLayoverMin      time.Duration
	LongLayoverPenalty  float64
}

// DefaultScoring is the tuned production policy.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		PriceBase:          300,
		PriceStep:          100,
		PricePointsPerStep: 5,

		DurationBase:          6 * time.Hour,
		DurationPointsPerHour: 4,

		PriceWeight:    0.5,
		DurationWeight: 0.3,

		ShortLayoverMax:     2 * time.Hour,
		ShortLayoverPenalty: 20,
		MidLayoverMin:       4 * time.Hour,
		MidLayoverMax:       8 * time.Hour,
		MidLayoverPenalty:   5,
		LongLayoverMin:      8 * time.Hour,
		LongLayoverPenalty:  15,
	}
}

// Score computes the 0-100 desirability of a route. layover is nil for direct
// routes. Pure function of its inputs.
func (c ScoringConfig) Score(price float64, duration time.Duration, layover *time.Duration) float64 {
	priceComponent := 100.0
	if price > c.PriceBase {
		priceComponent -= (price - c.PriceBase) / c.PriceStep * c.PricePointsPerStep
	}
	priceComponent = clamp(priceComponent, 0, 100)

	durationComponent := 100.0
	if duration > c.DurationBase {
		extraHours := (duration - c.DurationBase).Hours()
		durationComponent -= extraHours * c.DurationPointsPerHour
	}
	durationComponent = clamp(durationComponent, 0, 100)

	score := c.PriceWeight*priceComponent + c.DurationWeight*durationComponent
	if layover != nil {
		score -= c.layoverPenalty(*layover)
	}
	return clamp(score, 0, 100)
}

func (c ScoringConfig) layoverPenalty(layover time.Duration) float64 {
	switch {
	case layover < c.ShortLayoverMax:
		return c.ShortLayoverPenalty
	case layover > c.LongLayoverMin:
		return c.LongLayoverPenalty
	case layover >= c.MidLayoverMin && layover <= c.MidLayoverMax:
		return c.MidLayoverPenalty
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
