package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/http/api"
	"github.com/farewatch/farewatch/internal/http/api/tracker/packets"
	"github.com/farewatch/farewatch/internal/scheduler"
)

type CronController struct {
	executor *scheduler.Executor
	alerts   *scheduler.AlertEvaluator
}

func NewCronController(executor *scheduler.Executor, alerts *scheduler.AlertEvaluator) *CronController {
	return &CronController{executor: executor, alerts: alerts}
}

// CronModule is the trigger surface an external job runner hits on its own
// cadence. It is mounted behind the shared-secret bearer middleware.
func CronModule(executor *scheduler.Executor, alerts *scheduler.AlertEvaluator) api.Module {
	ctl := NewCronController(executor, alerts)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/run", ctl.runBatch)
	})
}

// runBatch processes all due tasks and all live alerts. Per-item failures
// come back inside the 200 response; a 5xx means the batch could not run at
// all.
func (c *CronController) runBatch(ctx *gin.Context) (any, *api.APIError) {
	results, err := c.executor.RunDue(ctx.Request.Context())
	if err != nil && len(results) == 0 {
		log.Error().Err(err).Msg("scheduled batch could not run")
		return nil, api.Errf(http.StatusInternalServerError, "BATCH_FAILED", err.Error())
	}

	var alertSummary scheduler.AlertRunSummary
	if err != nil {
		// An aborted task batch means the gateway is down for everyone;
		// checking alerts against it would fail each one in turn.
		log.Error().Err(err).Msg("scheduled batch aborted early, skipping alert checks")
	} else {
		alertSummary, err = c.alerts.CheckAll(ctx.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("alert check failed")
		}
	}

	return packets.TriggerResponse{
		Tasks:  scheduler.Summarize(results),
		Alerts: alertSummary,
	}, nil
}
