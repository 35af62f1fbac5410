package model

import "time"

// FlightSegment is one flown segment inside a leg.
type FlightSegment struct {
	Carrier      string `json:"carrier"`
	FlightNumber string `json:"flight_number"`
	Aircraft     string `json:"aircraft,omitempty"`
	Duration     string `json:"duration"`
}

// FlightLeg is one directional group of segments between two airports.
type FlightLeg struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Departure   time.Time       `json:"departure"`
	Arrival     time.Time       `json:"arrival"`
	Stops       int             `json:"stops"`
	Duration    string          `json:"duration"`
	Segments    []FlightSegment `json:"segments"`
}

// FlightOffer is a normalized offer from the search provider.
type FlightOffer struct {
	ID                string      `json:"id"`
	TotalPrice        float64     `json:"total_price"`
	Currency          string      `json:"currency"`
	Legs              []FlightLeg `json:"legs"`
	Airlines          []string    `json:"airlines"`
	LastTicketingDate string      `json:"last_ticketing_date,omitempty"`
}

// TotalStops sums stop counts across all legs.
func (o FlightOffer) TotalStops() int {
	total := 0
	for _, leg := range o.Legs {
		total += leg.Stops
	}
	return total
}

// TotalDuration is the span from first departure to last arrival.
func (o FlightOffer) TotalDuration() time.Duration {
	if len(o.Legs) == 0 {
		return 0
	}
	return o.Legs[len(o.Legs)-1].Arrival.Sub(o.Legs[0].Departure)
}
