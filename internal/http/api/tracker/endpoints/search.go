package endpoints

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/http/api"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/model"
)

// Parser output below this confidence is sent back for clarification instead
// of being searched.
const minQueryConfidence = 0.5

type SearchController struct {
	client flights.Client
	clk    clock.Clock
}

func NewSearchController(client flights.Client, clk clock.Clock) *SearchController {
	return &SearchController{client: client, clk: clk}
}

func SearchModule(client flights.Client, clk clock.Clock) api.Module {
	ctl := NewSearchController(client, clk)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/search", ctl.search)
	})
}

// search runs one structured flight search. The body is the query parser's
// output shape, so parsed natural-language queries and hand-built ones go
// through the same endpoint.
func (s *SearchController) search(ctx *gin.Context) (any, *api.APIError) {
	var query model.ParsedQuery
	if err := ctx.ShouldBindJSON(&query); err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	if len(query.Clarifications) > 0 || (query.Confidence > 0 && query.Confidence < minQueryConfidence) {
		msg := "query needs clarification before searching"
		if len(query.Clarifications) > 0 {
			msg = strings.Join(query.Clarifications, "; ")
		}
		return nil, api.Errf(http.StatusUnprocessableEntity, "NEEDS_CLARIFICATION", msg)
	}

	if apiErr := validateRoute(query.Origin, query.Destination); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDateExpr(query.DepartureDate); apiErr != nil {
		return nil, apiErr
	}
	if query.ReturnDate != nil && *query.ReturnDate != "" {
		if apiErr := validateDateExpr(*query.ReturnDate); apiErr != nil {
			return nil, apiErr
		}
	}

	now := s.clk.Now()
	departure, err := dates.Resolve(query.DepartureDate, now)
	if err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_DATE_EXPRESSION", err.Error())
	}
	departureDate := departure.Format(dates.Layout)

	var returnDate string
	if query.ReturnDate != nil && *query.ReturnDate != "" {
		ret, err := dates.Resolve(*query.ReturnDate, now)
		if err != nil {
			return nil, api.Errf(http.StatusBadRequest, "INVALID_DATE_EXPRESSION", err.Error())
		}
		returnDate = ret.Format(dates.Layout)
	}

	passengers := query.Passengers
	if passengers <= 0 {
		passengers = 1
	}

	result, err := s.client.Search(ctx.Request.Context(), flights.SearchRequest{
		Origin:        normalizeCode(query.Origin),
		Destination:   normalizeCode(query.Destination),
		DepartureDate: departureDate,
		ReturnDate:    returnDate,
		Adults:        passengers,
		CabinClass:    query.CabinClass,
		NonStopOnly:   query.NonStopOnly,
		MaxPrice:      query.MaxPrice,
	})
	if err != nil && !flights.IsBenign(err) {
		return nil, gatewayError(err)
	}

	response := packets.SearchResponse{
		Origin:        normalizeCode(query.Origin),
		Destination:   normalizeCode(query.Destination),
		DepartureDate: departureDate,
		ReturnDate:    returnDate,
		Offers:        []model.FlightOffer{},
	}
	if err == nil {
		response.Offers = result.Offers
		response.Carriers = result.Carriers
	}
	return response, nil
}

// gatewayError maps the flights error taxonomy onto HTTP statuses.
func gatewayError(err error) *api.APIError {
	code := flights.ErrorCode(err)
	switch code {
	case "INVALID_AIRPORT_CODE", "PAST_DATE":
		return api.Errf(http.StatusBadRequest, code, err.Error())
	case "RATE_LIMITED":
		return api.Errf(http.StatusTooManyRequests, code, err.Error())
	case "AUTH_FAILED", "NOT_CONFIGURED":
		return api.Errf(http.StatusServiceUnavailable, code, err.Error())
	case "SERVICE_UNAVAILABLE", "NETWORK_ERROR":
		return api.Errf(http.StatusBadGateway, code, err.Error())
	default:
		return api.Errf(http.StatusInternalServerError, code, err.Error())
	}
}
