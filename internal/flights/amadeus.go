package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/model"
)

const (
	defaultBaseURL = "https://test.api.amadeus.com"
	callTimeout    = 20 * time.Second
)

// amadeusClient talks to the Amadeus self-service flight-offers API using the
// client-credentials OAuth flow. The token is cached until shortly before
// expiry.
type amadeusClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewAmadeusClient builds the production gateway client. Credentials may be
// empty at construction time; the first Search then fails with
// ErrNotConfigured so misconfiguration surfaces as an explicit error rather
// than an empty result set.
func NewAmadeusClient(baseURL, clientID, clientSecret string) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &amadeusClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: callTimeout},
	}
}

func (c *amadeusClient) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, ErrNotConfigured
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("originLocationCode", strings.ToUpper(req.Origin))
	q.Set("destinationLocationCode", strings.ToUpper(req.Destination))
	q.Set("departureDate", req.DepartureDate)
	if req.ReturnDate != "" {
		q.Set("returnDate", req.ReturnDate)
	}
	adults := req.Adults
	if adults <= 0 {
		adults = 1
	}
	q.Set("adults", strconv.Itoa(adults))
	if req.CabinClass != "" {
		q.Set("travelClass", strings.ToUpper(req.CabinClass))
	}
	if req.NonStopOnly {
		q.Set("nonStop", "true")
	}
	if req.MaxPrice != nil {
		q.Set("maxPrice", strconv.Itoa(int(*req.MaxPrice)))
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	q.Set("max", strconv.Itoa(maxResults))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/shopping/flight-offers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapHTTPError(resp.StatusCode, body)
	}

	var payload amadeusOffersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode flight offers: %w", err)
	}

	result := &SearchResult{
		Offers:   make([]model.FlightOffer, 0, len(payload.Data)),
		Carriers: payload.Dictionaries.Carriers,
	}
	for _, raw := range payload.Data {
		offer, err := normalizeOffer(raw)
		if err != nil {
			log.Warn().Err(err).Str("offer_id", raw.ID).Msg("skipping unparseable offer")
			continue
		}
		result.Offers = append(result.Offers, offer)
	}
	return result, nil
}

// token returns a cached access token, refreshing when within a minute of
// expiry.
func (c *amadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return "", ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *amadeusClient) mapHTTPError(status int, body []byte) error {
	detail := strings.ToLower(string(body))
	switch status {
	case http.StatusBadRequest:
		if strings.Contains(detail, "date") && strings.Contains(detail, "past") {
			return ErrPastDate
		}
		return ErrInvalidAirportCode
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrNoResults
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if status >= 500 {
			return ErrServiceUnavailable
		}
		return fmt.Errorf("flight provider returned status %d", status)
	}
}

// Wire shapes for the Amadeus flight-offers response.

type amadeusOffersResponse struct {
	Data         []amadeusOffer `json:"data"`
	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
	} `json:"dictionaries"`
}

type amadeusOffer struct {
	ID                string `json:"id"`
	LastTicketingDate string `json:"lastTicketingDate"`
	Itineraries       []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Aircraft    struct {
				Code string `json:"code"`
			} `json:"aircraft"`
			Duration string `json:"duration"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

const segmentTimeLayout = "2006-01-02T15:04:05"

func normalizeOffer(raw amadeusOffer) (model.FlightOffer, error) {
	price, err := strconv.ParseFloat(raw.Price.GrandTotal, 64)
	if err != nil {
		return model.FlightOffer{}, fmt.Errorf("parse price %q: %w", raw.Price.GrandTotal, err)
	}

	offer := model.FlightOffer{
		ID:                raw.ID,
		TotalPrice:        price,
		Currency:          raw.Price.Currency,
		LastTicketingDate: raw.LastTicketingDate,
	}

	airlines := map[string]struct{}{}
	for _, itin := range raw.Itineraries {
		if len(itin.Segments) == 0 {
			continue
		}
		first := itin.Segments[0]
		last := itin.Segments[len(itin.Segments)-1]

		dep, err := time.Parse(segmentTimeLayout, first.Departure.At)
		if err != nil {
			return model.FlightOffer{}, fmt.Errorf("parse departure time %q: %w", first.Departure.At, err)
		}
		arr, err := time.Parse(segmentTimeLayout, last.Arrival.At)
		if err != nil {
			return model.FlightOffer{}, fmt.Errorf("parse arrival time %q: %w", last.Arrival.At, err)
		}

		leg := model.FlightLeg{
			Origin:      first.Departure.IataCode,
			Destination: last.Arrival.IataCode,
			Departure:   dep,
			Arrival:     arr,
			Stops:       len(itin.Segments) - 1,
			Duration:    FormatISODuration(itin.Duration),
		}
		for _, seg := range itin.Segments {
			airlines[seg.CarrierCode] = struct{}{}
			leg.Segments = append(leg.Segments, model.FlightSegment{
				Carrier:      seg.CarrierCode,
				FlightNumber: seg.CarrierCode + seg.Number,
				Aircraft:     seg.Aircraft.Code,
				Duration:     FormatISODuration(seg.Duration),
			})
		}
		offer.Legs = append(offer.Legs, leg)
	}

	for code := range airlines {
		offer.Airlines = append(offer.Airlines, code)
	}
	return offer, nil
}

// FormatISODuration renders an ISO-8601 duration like PT13H45M as "13h 45m".
// Unrecognized input is passed through untouched.
func FormatISODuration(iso string) string {
	s := strings.TrimPrefix(iso, "PT")
	if s == iso {
		return iso
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "h", "h ")
	return strings.TrimSpace(s)
}

// FormatDuration renders a time.Duration as "13h 45m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
