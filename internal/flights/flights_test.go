package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/model"
)

func TestErrorCode(t *testing.T) {
	cases := map[error]string{
		ErrInvalidAirportCode: "INVALID_AIRPORT_CODE",
		ErrPastDate:           "PAST_DATE",
		ErrNoResults:          "NO_RESULTS",
		ErrRateLimited:        "RATE_LIMITED",
		ErrAuthFailed:         "AUTH_FAILED",
		ErrServiceUnavailable: "SERVICE_UNAVAILABLE",
		ErrNetwork:            "NETWORK_ERROR",
		ErrNotConfigured:      "NOT_CONFIGURED",
	}
	for err, code := range cases {
		assert.Equal(t, code, ErrorCode(err))
		// wrapped errors still resolve
		assert.Equal(t, code, ErrorCode(fmt.Errorf("search: %w", err)))
	}
	assert.Equal(t, "UNKNOWN", ErrorCode(assert.AnError))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsBenign(ErrNoResults))
	assert.False(t, IsBenign(ErrRateLimited))
	assert.True(t, IsFatal(ErrNotConfigured))
	assert.False(t, IsFatal(ErrServiceUnavailable))
}

func TestMapHTTPError(t *testing.T) {
	c := &amadeusClient{}

	assert.ErrorIs(t, c.mapHTTPError(http.StatusBadRequest,
		[]byte(`{"errors":[{"detail":"Date/Time is in the past"}]}`)), ErrPastDate)
	assert.ErrorIs(t, c.mapHTTPError(http.StatusBadRequest,
		[]byte(`{"errors":[{"detail":"INVALID FORMAT"}]}`)), ErrInvalidAirportCode)
	assert.ErrorIs(t, c.mapHTTPError(http.StatusUnauthorized, nil), ErrAuthFailed)
	assert.ErrorIs(t, c.mapHTTPError(http.StatusForbidden, nil), ErrAuthFailed)
	assert.ErrorIs(t, c.mapHTTPError(http.StatusNotFound, nil), ErrNoResults)
	assert.ErrorIs(t, c.mapHTTPError(http.StatusTooManyRequests, nil), ErrRateLimited)
	assert.ErrorIs(t, c.mapHTTPError(http.StatusBadGateway, nil), ErrServiceUnavailable)
}

func TestSearchUnconfiguredClient(t *testing.T) {
	c := NewAmadeusClient("", "", "")
	_, err := c.Search(context.Background(), SearchRequest{Origin: "EZE", Destination: "MAD"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCheapest(t *testing.T) {
	var nilResult *SearchResult
	_, ok := nilResult.Cheapest()
	assert.False(t, ok)

	_, ok = (&SearchResult{}).Cheapest()
	assert.False(t, ok)

	r := &SearchResult{Offers: []model.FlightOffer{
		{ID: "a", TotalPrice: 512.30},
		{ID: "b", TotalPrice: 498.10},
		{ID: "c", TotalPrice: 640.00},
	}}
	best, ok := r.Cheapest()
	require.True(t, ok)
	assert.Equal(t, "b", best.ID)
}

func TestNormalizeOffer(t *testing.T) {
	raw := amadeusOffer{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "1",
		"lastTicketingDate": "2025-06-10",
		"itineraries": [{
			"duration": "PT16H30M",
			"segments": [
				{
					"departure": {"iataCode": "EZE", "at": "2025-06-15T22:00:00"},
					"arrival": {"iataCode": "GRU", "at": "2025-06-16T00:45:00"},
					"carrierCode": "LA", "number": "8001",
					"aircraft": {"code": "320"}, "duration": "PT2H45M"
				},
				{
					"departure": {"iataCode": "GRU", "at": "2025-06-16T02:30:00"},
					"arrival": {"iataCode": "MAD", "at": "2025-06-16T18:30:00"},
					"carrierCode": "IB", "number": "6824",
					"aircraft": {"code": "359"}, "duration": "PT11H0M"
				}
			]
		}],
		"price": {"grandTotal": "734.50", "currency": "USD"},
		"validatingAirlineCodes": ["IB"]
	}`), &raw))

	offer, err := normalizeOffer(raw)
	require.NoError(t, err)

	assert.Equal(t, 734.50, offer.TotalPrice)
	assert.Equal(t, "USD", offer.Currency)
	assert.Equal(t, "2025-06-10", offer.LastTicketingDate)
	assert.ElementsMatch(t, []string{"LA", "IB"}, offer.Airlines)

	require.Len(t, offer.Legs, 1)
	leg := offer.Legs[0]
	assert.Equal(t, "EZE", leg.Origin)
	assert.Equal(t, "MAD", leg.Destination)
	assert.Equal(t, 1, leg.Stops)
	assert.Equal(t, "16h 30m", leg.Duration)
	require.Len(t, leg.Segments, 2)
	assert.Equal(t, "LA8001", leg.Segments[0].FlightNumber)
	assert.Equal(t, "IB6824", leg.Segments[1].FlightNumber)
	assert.Equal(t, 1, offer.TotalStops())
}

func TestNormalizeOfferBadPrice(t *testing.T) {
	raw := amadeusOffer{}
	raw.Price.GrandTotal = "n/a"
	_, err := normalizeOffer(raw)
	assert.Error(t, err)
}

func TestFormatISODuration(t *testing.T) {
	cases := map[string]string{
		"PT13H45M": "13h 45m",
		"PT2H":     "2h",
		"PT45M":    "45m",
		"PT11H0M":  "11h 0m",
		"13h 45m":  "13h 45m",
		"":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatISODuration(in), in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "13h 45m", FormatDuration(13*time.Hour+45*time.Minute))
	assert.Equal(t, "2h 0m", FormatDuration(2*time.Hour))
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "1h 0m", FormatDuration(59*time.Minute+40*time.Second))
}
