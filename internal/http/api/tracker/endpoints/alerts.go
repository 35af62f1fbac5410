package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farewatch/farewatch/internal/dates"
	"github.com/farewatch/farewatch/internal/db"
	"github.com/farewatch/farewatch/internal/http/api"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/model"
)

type AlertController struct {
	store db.Store
}

func NewAlertController(store db.Store) *AlertController {
	return &AlertController{store: store}
}

func AlertModule(store db.Store) api.Module {
	ctl := NewAlertController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/alerts", ctl.listAlerts)
		c.POST("/alerts", ctl.createAlert)
		c.DELETE("/alerts/:id", ctl.deleteAlert)
	})
}

func (a *AlertController) createAlert(ctx *gin.Context) (any, *api.APIError) {
	var request packets.CreateAlertRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	if apiErr := validateRoute(request.Origin, request.Destination); apiErr != nil {
		return nil, apiErr
	}
	departure, err := time.Parse(dates.Layout, request.DepartureDate)
	if err != nil {
		return nil, api.Errf(http.StatusBadRequest, "INVALID_DATE_EXPRESSION",
			"departure date must be YYYY-MM-DD")
	}
	if departure.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, api.Errf(http.StatusBadRequest, "PAST_DATE",
			"departure date is in the past")
	}

	currency := request.Currency
	if currency == "" {
		currency = "USD"
	}

	// The alert is pointless once the flight has departed, so it expires
	// at end of the departure day.
	alert, err := a.store.CreateAlert(model.PriceAlert{
		Origin:        normalizeCode(request.Origin),
		Destination:   normalizeCode(request.Destination),
		DepartureDate: request.DepartureDate,
		ReturnDate:    request.ReturnDate,
		TargetPrice:   request.TargetPrice,
		Currency:      currency,
		ExpiresAt:     departure.Add(24 * time.Hour),
	})
	if err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "could not create alert")
	}
	return alert, nil
}

func (a *AlertController) listAlerts(ctx *gin.Context) (any, *api.APIError) {
	alerts, err := a.store.ListAlerts()
	if err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "failed to list alerts")
	}
	return packets.AlertListResponse{Alerts: alerts}, nil
}

func (a *AlertController) deleteAlert(ctx *gin.Context) (any, *api.APIError) {
	id, apiErr := pathID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if _, err := a.store.GetAlert(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.Errf(http.StatusNotFound, "ALERT_NOT_FOUND", "alert not found")
		}
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "alert lookup failed")
	}
	if err := a.store.DeleteAlert(id); err != nil {
		return nil, api.Errf(http.StatusInternalServerError, "STORE_ERROR", "could not delete alert")
	}
	return packets.DeletedResponse{Deleted: true}, nil
}
