// Command flowsim runs synthetic order flow against an in-process book,
// optionally publishing execution reports to Kafka. Flow shape is configured
// through SIM_* environment variables, everything else through the same
// flags and YAML file the other binaries use.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/draakit/limitbook/config"
	"github.com/draakit/limitbook/pkg/backend/memory"
	"github.com/draakit/limitbook/pkg/core"
	"github.com/draakit/limitbook/pkg/db/queue"
	"github.com/draakit/limitbook/pkg/flowsim"
	"github.com/draakit/limitbook/pkg/logging"
	"github.com/draakit/limitbook/pkg/otel"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Format == "pretty",
	})

	cleanup, err := otel.Init(otel.Config{
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}
	defer cleanup()

	simCfg, err := flowsim.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load simulation configuration")
	}
	simCfg.Symbol = cfg.Engine.Symbol

	book := core.NewOrderBook(memory.NewMemoryBackend())

	if cfg.Kafka.Enabled {
		book.SetMessageSender(queue.PooledSender{})
		log.Info().
			Str("broker", cfg.Kafka.BrokerAddr).
			Str("topic", cfg.Kafka.Topic).
			Msg("Publishing execution reports to Kafka")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strategy := flowsim.NewRandomWalkStrategy(simCfg)
	sim := flowsim.NewSimulator(simCfg, log.Logger, book, strategy)

	if err := sim.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Simulation aborted")
	}
}
