package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/hubs"
	"github.com/farewatch/farewatch/internal/model"
)

const (
	// DefaultMaxHubs bounds the per-comparison fan-out against the
	// provider's rate limits.
	DefaultMaxHubs = 5

	// A stopover replaces an existing direct route only when it saves at
	// least this percentage. Marginal savings are not worth the added
	// connection risk.
	savingsThresholdPercent = 10

	tightConnectionMax = 2 * time.Hour
	overnightLayover   = 24 * time.Hour

	offersPerLeg = 3
)

// CompareRequest describes one route comparison.
type CompareRequest struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Passengers    int
	CabinClass    string
	MaxHubs       int
}

// Optimizer explores stopover routings against the direct fare.
type Optimizer struct {
	client  flights.Client
	scoring ScoringConfig
}

// New builds an optimizer around a gateway client with the default scoring
// policy.
func New(client flights.Client) *Optimizer {
	return &Optimizer{client: client, scoring: DefaultScoring()}
}

// NewWithScoring builds an optimizer with a custom scoring policy.
func NewWithScoring(client flights.Client, scoring ScoringConfig) *Optimizer {
	return &Optimizer{client: client, scoring: scoring}
}

// Compare runs the direct search plus a two-leg search through each candidate
// hub and ranks everything by desirability. Individual hub failures are
// skipped; only a configuration-level gateway failure aborts the comparison.
// Hubs are searched one at a time to keep concurrent provider load at one
// request in flight.
func (o *Optimizer) Compare(ctx context.Context, req CompareRequest) (*model.RouteComparison, error) {
	started := time.Now()

	maxHubs := req.MaxHubs
	if maxHubs <= 0 {
		maxHubs = DefaultMaxHubs
	}
	candidates := hubs.FindSuitable(req.Origin, req.Destination, maxHubs)

	comparison := &model.RouteComparison{
		StopoverRoutes: make([]model.MultiCityRoute, 0, len(candidates)),
	}
	stats := &comparison.Stats

	direct, err := o.searchDirect(ctx, req, stats)
	if err != nil {
		if flights.IsFatal(err) {
			return nil, fmt.Errorf("flight gateway unavailable: %w", err)
		}
		log.Warn().Err(err).
			Str("origin", req.Origin).Str("destination", req.Destination).
			Msg("direct search failed, comparing stopovers only")
	}
	comparison.DirectRoute = direct

	for _, hub := range candidates {
		stats.HubsSearched++
		route, err := o.searchViaHub(ctx, req, hub, direct, stats)
		if err != nil {
			if flights.IsFatal(err) {
				return nil, fmt.Errorf("flight gateway unavailable: %w", err)
			}
			log.Warn().Err(err).Str("hub", hub.Code).Msg("skipping hub")
			continue
		}
		if route == nil {
			continue
		}
		comparison.StopoverRoutes = append(comparison.StopoverRoutes, *route)
	}

	sort.SliceStable(comparison.StopoverRoutes, func(i, j int) bool {
		return comparison.StopoverRoutes[i].Score > comparison.StopoverRoutes[j].Score
	})

	comparison.BestRoute = selectBest(direct, comparison.StopoverRoutes)
	stats.Elapsed = time.Since(started)
	return comparison, nil
}

func (o *Optimizer) searchDirect(ctx context.Context, req CompareRequest, stats *model.RouteComparisonStats) (*model.MultiCityRoute, error) {
	stats.SearchCalls++
	result, err := o.client.Search(ctx, flights.SearchRequest{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Passengers,
		CabinClass:    req.CabinClass,
		MaxResults:    offersPerLeg,
	})
	if err != nil {
		if flights.IsBenign(err) {
			return nil, nil
		}
		return nil, err
	}
	best, ok := result.Cheapest()
	if !ok {
		return nil, nil
	}

	duration := best.TotalDuration()
	route := &model.MultiCityRoute{
		ID:   uuid.NewString(),
		Type: model.RouteTypeDirect,
		Segments: []model.RouteSegment{{
			Origin:       req.Origin,
			Destination:  req.Destination,
			Date:         req.DepartureDate,
			BestOffer:    &best,
			Alternatives: alternatives(result.Offers, best),
		}},
		TotalPrice:    best.TotalPrice,
		Currency:      best.Currency,
		TotalDuration: flights.FormatDuration(duration),
		Score:         o.scoring.Score(best.TotalPrice, duration, nil),
	}
	return route, nil
}

// searchViaHub runs both legs through one hub. A nil route with a nil error
// means the hub produced no viable itinerary and is silently skipped.
func (o *Optimizer) searchViaHub(
	ctx context.Context,
	req CompareRequest,
	hub model.StopoverHub,
	direct *model.MultiCityRoute,
	stats *model.RouteComparisonStats,
) (*model.MultiCityRoute, error) {
	stats.SearchCalls++
	leg1, err := o.client.Search(ctx, flights.SearchRequest{
		Origin:        req.Origin,
		Destination:   hub.Code,
		DepartureDate: req.DepartureDate,
		Adults:        req.Passengers,
		CabinClass:    req.CabinClass,
		MaxResults:    offersPerLeg,
	})
	if err != nil {
		if flights.IsBenign(err) {
			return nil, nil
		}
		return nil, err
	}
	best1, ok := leg1.Cheapest()
	if !ok {
		return nil, nil
	}

	// Leg 2 departs on the first date the minimum connection allows.
	arrival1 := best1.Legs[len(best1.Legs)-1].Arrival
	earliestDeparture := arrival1.Add(hubs.MinLayover(hub.Code))
	leg2Date := earliestDeparture.Format(dates.Layout)

	stats.SearchCalls++
	leg2, err := o.client.Search(ctx, flights.SearchRequest{
		Origin:        hub.Code,
		Destination:   req.Destination,
		DepartureDate: leg2Date,
		Adults:        req.Passengers,
		CabinClass:    req.CabinClass,
		MaxResults:    offersPerLeg,
	})
	if err != nil {
		if flights.IsBenign(err) {
			return nil, nil
		}
		return nil, err
	}
	best2, ok := leg2.Cheapest()
	if !ok {
		return nil, nil
	}

	departure2 := best2.Legs[0].Departure
	layover := departure2.Sub(arrival1)
	totalDuration := best2.Legs[len(best2.Legs)-1].Arrival.Sub(best1.Legs[0].Departure)
	totalPrice := best1.TotalPrice + best2.TotalPrice

	hubCopy := hub
	route := &model.MultiCityRoute{
		ID:          uuid.NewString(),
		Type:        model.RouteTypeStopover,
		StopoverHub: &hubCopy,
		Segments: []model.RouteSegment{
			{
				Origin:       req.Origin,
				Destination:  hub.Code,
				Date:         req.DepartureDate,
				BestOffer:    &best1,
				Alternatives: alternatives(leg1.Offers, best1),
			},
			{
				Origin:       hub.Code,
				Destination:  req.Destination,
				Date:         leg2Date,
				BestOffer:    &best2,
				Alternatives: alternatives(leg2.Offers, best2),
			},
		},
		TotalPrice:    totalPrice,
		Currency:      best1.Currency,
		TotalDuration: flights.FormatDuration(totalDuration),
		Layover:       fmt.Sprintf("%s in %s (%s)", flights.FormatDuration(layover), hub.City, hub.Code),
		Score:         o.scoring.Score(totalPrice, totalDuration, &layover),
	}

	if layover < tightConnectionMax {
		route.Warnings = append(route.Warnings,
			fmt.Sprintf("tight connection: only %s at %s", flights.FormatDuration(layover), hub.Code))
	} else if layover > overnightLayover {
		route.Warnings = append(route.Warnings,
			fmt.Sprintf("long layover of %s at %s may require an overnight stay", flights.FormatDuration(layover), hub.Code))
	}

	if direct != nil {
		savings := direct.TotalPrice - totalPrice
		if savings > 0 {
			pct := savings / direct.TotalPrice * 100
			route.Savings = &savings
			route.SavingsPercent = &pct
		}
	}
	return route, nil
}

// selectBest keeps the direct route unless a stopover either is the only
// option or clears the savings threshold.
func selectBest(direct *model.MultiCityRoute, stopovers []model.MultiCityRoute) *model.MultiCityRoute {
	if len(stopovers) == 0 {
		return direct
	}
	top := &stopovers[0]
	if direct == nil {
		return top
	}
	if top.SavingsPercent != nil && *top.SavingsPercent >= savingsThresholdPercent {
		return top
	}
	return direct
}

func alternatives(offers []model.FlightOffer, best model.FlightOffer) []model.FlightOffer {
	var out []model.FlightOffer
	for _, o := range offers {
		if o.ID == best.ID {
			continue
		}
		out = append(out, o)
		if len(out) == 2 {
			break
		}
	}
	return out
}
