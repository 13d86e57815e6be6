package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fortuna/courtside/internal/bootstrap"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/trigger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Environment: cfg.App.Environment,
		Level:       cfg.Logger.Level,
		Lambda:      true,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connections are reused across warm invocations.
	c, err := bootstrap.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer c.Close()

	app := trigger.NewApp(c.Scheduler, c.Chat, logger)
	lambda.Start(app.Handle)
}
