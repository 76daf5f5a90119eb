package main

import (
	"io"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SachPlayZ/edu-lottery-shirts/internal/events"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/handlers"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/platform/config"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/platform/metrics"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/raffle"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/random"
)

func main() {
	// 1. Load configuration from the environment.
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging.
	defer logger.Init("raffle", true, false, io.Discard).Close()

	// 3. Register metrics.
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// 4. Create the notification bus and the raffle engine.
	bus := events.NewBus()
	engine := raffle.New(cfg.Operator, cfg.MaxNumber, random.NewWeak(), bus)

	// 5. Mirror engine notifications into the log.
	eventLog, _ := bus.Subscribe()
	go func() {
		for ev := range eventLog {
			logger.Infof("event %s [%s] identity=%s number=%d", ev.Type, ev.ID, ev.Identity, ev.Number)
		}
	}()

	// 6. Set up the Gin router and routes.
	r := gin.Default()
	httpHandler := handlers.NewHTTPHandler(engine, m, bus)
	httpHandler.RegisterRoutes(r, registry)

	// 7. Run the server.
	logger.Infof("Raffle server starting on %s (pool [1, %d])", cfg.Addr, cfg.MaxNumber)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
