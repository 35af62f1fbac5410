package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/farewatch/farewatch/internal/clock"
	"github.com/farewatch/farewatch/internal/config"
	"github.com/farewatch/farewatch/internal/db"
	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/notify"
	"github.com/farewatch/farewatch/internal/optimizer"
	"github.com/farewatch/farewatch/internal/redis"
	"github.com/farewatch/farewatch/internal/scheduler"
)

func main() {
	// .env is for local development; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	store := db.NewStore(conn)

	rdb := redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)

	searchClient := flights.WithCache(
		flights.NewAmadeusClient(cfg.AmadeusBaseURL, cfg.AmadeusClientID, cfg.AmadeusClientSecret),
		rdb,
		flights.DefaultCacheTTL,
	)

	dispatcher := notify.NewDispatcher(
		notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
			To:       cfg.AlertEmailTo,
		},
		notify.TelegramConfig{
			Token:  cfg.TelegramBotToken,
			ChatID: cfg.TelegramChatID,
		},
	)

	clk := clock.System()
	executor := scheduler.NewExecutor(store, searchClient, dispatcher, clk, scheduler.DefaultDelay)
	alertEvaluator := scheduler.NewAlertEvaluator(store, searchClient, dispatcher, clk, scheduler.DefaultDelay)
	routeOptimizer := optimizer.New(searchClient)

	r := gin.Default()
	RegisterRoutes(r, cfg, store, searchClient, executor, alertEvaluator, routeOptimizer, clk)

	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
