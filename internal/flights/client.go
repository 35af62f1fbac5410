package flights

import (
	"context"

	"github.com/farewatch/farewatch/internal/model"
)

// SearchRequest describes one flight-offers search.
type SearchRequest struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date,omitempty"`
	Adults        int      `json:"adults"`
	CabinClass    string   `json:"cabin_class,omitempty"`
	NonStopOnly   bool     `json:"non_stop_only,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
	MaxResults    int      `json:"max_results,omitempty"`
}

// SearchResult carries normalized offers plus the carrier-code dictionary the
// provider resolves names against.
type SearchResult struct {
	Offers   []model.FlightOffer `json:"offers"`
	Carriers map[string]string   `json:"carriers,omitempty"`
}

// Cheapest returns the lowest-priced offer, or false if there are none.
func (r *SearchResult) Cheapest() (model.FlightOffer, bool) {
	if r == nil || len(r.Offers) == 0 {
		return model.FlightOffer{}, false
	}
	best := r.Offers[0]
	for _, o := range r.Offers[1:] {
		if o.TotalPrice < best.TotalPrice {
			best = o
		}
	}
	return best, true
}

// Client is the flight search gateway. Implementations translate provider
// failures into the package error taxonomy.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}
