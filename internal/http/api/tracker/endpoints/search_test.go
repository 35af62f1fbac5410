package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/model"
)

var searchNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type stubClient struct {
	result  *flights.SearchResult
	err     error
	lastReq flights.SearchRequest
}

func (s *stubClient) Search(_ context.Context, req flights.SearchRequest) (*flights.SearchResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func postSearch(t *testing.T, client flights.Client, body string) (any, int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")

	ctl := NewSearchController(client, clock.Fixed{T: searchNow})
	payload, apiErr := ctl.search(ctx)
	if apiErr != nil {
		return nil, apiErr.Code, apiErr.Kind
	}
	return payload, http.StatusOK, ""
}

func TestSearchResolvesRelativeDates(t *testing.T) {
	client := &stubClient{result: &flights.SearchResult{Offers: []model.FlightOffer{
		{ID: "a", TotalPrice: 512},
	}}}

	payload, status, _ := postSearch(t, client,
		`{"origin":"eze","destination":"mad","departure_date":"+30d","passengers":2,"confidence":0.92}`)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "2025-07-01", client.lastReq.DepartureDate)
	assert.Equal(t, "EZE", client.lastReq.Origin)
	assert.Equal(t, 2, client.lastReq.Adults)

	response, ok := payload.(packets.SearchResponse)
	require.True(t, ok)
	assert.Equal(t, "2025-07-01", response.DepartureDate)
	require.Len(t, response.Offers, 1)
}

func TestSearchRejectsClarifications(t *testing.T) {
	client := &stubClient{}
	_, status, kind := postSearch(t, client,
		`{"origin":"EZE","destination":"MAD","departure_date":"+30d","confidence":0.9,"clarifications":["which June?"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "NEEDS_CLARIFICATION", kind)
	assert.Empty(t, client.lastReq.Origin, "no provider call on ambiguous input")
}

func TestSearchRejectsLowConfidence(t *testing.T) {
	_, status, kind := postSearch(t, &stubClient{},
		`{"origin":"EZE","destination":"MAD","departure_date":"+30d","confidence":0.3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "NEEDS_CLARIFICATION", kind)
}

func TestSearchRejectsBadRoute(t *testing.T) {
	_, status, kind := postSearch(t, &stubClient{},
		`{"origin":"EZE","destination":"EZE","departure_date":"+30d","confidence":0.9}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SAME_ORIGIN_DESTINATION", kind)
}

func TestSearchMapsGatewayErrors(t *testing.T) {
	_, status, kind := postSearch(t, &stubClient{err: flights.ErrRateLimited},
		`{"origin":"EZE","destination":"MAD","departure_date":"+30d","confidence":0.9}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", kind)

	_, status, kind = postSearch(t, &stubClient{err: flights.ErrNotConfigured},
		`{"origin":"EZE","destination":"MAD","departure_date":"+30d","confidence":0.9}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "NOT_CONFIGURED", kind)
}

func TestSearchNoResultsIsEmptySuccess(t *testing.T) {
	payload, status, _ := postSearch(t, &stubClient{err: flights.ErrNoResults},
		`{"origin":"EZE","destination":"MAD","departure_date":"2025-07-15","confidence":0.9}`)
	require.Equal(t, http.StatusOK, status)
	response, ok := payload.(packets.SearchResponse)
	require.True(t, ok)
	assert.Empty(t, response.Offers)
	assert.Equal(t, "2025-07-15", response.DepartureDate)
}
