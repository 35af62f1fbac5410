package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/http/api"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/optimizer"
)

type RouteController struct {
	opt *optimizer.Optimizer
	clk clock.Clock
}

func NewRouteController(opt *optimizer.Optimizer, clk clock.Clock) *RouteController {
	return &RouteController{opt: opt, clk: clk}
}

func RouteModule(opt *optimizer.Optimizer, clk clock.Clock) api.Module {
	ctl := NewRouteController(opt, clk)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/routes/compare", ctl.compareRoutes)
	})
}

func (r *RouteController) compareRoutes(ctx *gin.Context) (any, *api.APIError) {
	var request packets.CompareRoutesRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	if apiErr := validateRoute(request.Origin, request.Destination); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDateExpr(request.DepartureDate); apiErr != nil {
		return nil, apiErr
	}
	if request.ReturnDate != "" {
		if apiErr := validateDateExpr(request.ReturnDate); apiErr != nil {
			return nil, apiErr
		}
	}

	// The gateway only speaks concrete dates, so relative expressions resolve
	// here against the request clock.
	now := r.clk.Now()
	departure, err := dates.Resolve(request.DepartureDate, now)
	if err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_DATE_EXPRESSION", err.Error())
	}
	var returnDate string
	if request.ReturnDate != "" {
		ret, err := dates.Resolve(request.ReturnDate, now)
		if err != nil {
			return nil, api.Errf(http.StatusBadRequest, "INVALID_DATE_EXPRESSION", err.Error())
		}
		returnDate = ret.Format(dates.Layout)
	}

	passengers := request.Passengers
	if passengers <= 0 {
		passengers = 1
	}

	comparison, err := r.opt.Compare(ctx.Request.Context(), optimizer.CompareRequest{
		Origin:        normalizeCode(request.Origin),
		Destination:   normalizeCode(request.Destination),
		DepartureDate: departure.Format(dates.Layout),
		ReturnDate:    returnDate,
		Passengers:    passengers,
		CabinClass:    request.CabinClass,
		MaxHubs:       request.MaxHubs,
	})
	if err != nil {
		// Only a configuration-level gateway failure reaches here; every
		// per-hub failure was already absorbed.
		return nil, api.Errf(http.StatusServiceUnavailable, "NOT_CONFIGURED", err.Error())
	}
	return comparison, nil
}
