package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/careflow/clinic-api/config"
	"github.com/careflow/clinic-api/internal/repository/postgres"
	"github.com/careflow/clinic-api/pkg/logger"
	redisbroker "github.com/careflow/clinic-api/pkg/messaging/redis"
	"github.com/careflow/clinic-api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(cfg.Redis.URL)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db), broker, cfg.Outbox, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor.Start(ctx)
}
