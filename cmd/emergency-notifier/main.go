package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tair/mediops/internal/config"
	"github.com/tair/mediops/internal/events"
	"github.com/tair/mediops/pkg/logger"
	"github.com/tair/mediops/pkg/tracing"
)

func main() {
	if err := run(config.Load()); err != nil {
		logger.Logger.Error().Err(err).Msg("Consumer stopped with error")
		os.Exit(1)
	}
	logger.Logger.Info().Msg("Emergency notifier stopped")
}

func run(cfg *config.Config) error {
	serviceName := "emergency-notifier"
	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.TracerConfig(serviceName))
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(ctx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	}

	consumer, err := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.EmergencyTopic})
	if err != nil {
		return err
	}
	for _, eventType := range events.KnownEventTypes {
		consumer.RegisterHandler(eventType, events.LogHandler)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return consumer.Run(ctx)
}
