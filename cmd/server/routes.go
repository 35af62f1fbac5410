package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/config"
	"github.com/farewatch/farewatch/internal/db"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/http/api"
	"github.com/farewatch/farewatch/internal/http/api/tracker/endpoints"
	"github.com/farewatch/farewatch/internal/optimizer"
	"github.com/farewatch/farewatch/internal/scheduler"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	store db.Store,
	searchClient flights.Client,
	executor *scheduler.Executor,
	alerts *scheduler.AlertEvaluator,
	routeOptimizer *optimizer.Optimizer,
	clk clock.Clock,
) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		endpoints.HealthModule(),
		endpoints.SearchModule(searchClient, clk),
		endpoints.TaskModule(store, executor, clk),
		endpoints.AlertModule(store),
		endpoints.RouteModule(routeOptimizer, clk),
	)

	// The batch trigger is the only surface an external caller can use to
	// drive execution, so it sits behind the shared secret.
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/cron",
		Secret: cfg.CronSecret,
	},
		endpoints.CronModule(executor, alerts),
	)
}
