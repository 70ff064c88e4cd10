// cmd/rangefinder/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tamzrod/rangefinder-replicator/internal/bus"
	"github.com/tamzrod/rangefinder-replicator/internal/config"
	"github.com/tamzrod/rangefinder-replicator/internal/metrics"
	"github.com/tamzrod/rangefinder-replicator/internal/poller"
	"github.com/tamzrod/rangefinder-replicator/internal/timeutil"
	"github.com/tamzrod/rangefinder-replicator/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: rangefinder <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := timeutil.RealClock{}

	// --------------------
	// Shared resources
	// --------------------

	buses := bus.NewPool()
	defer buses.Close()

	clients, closeWriters, err := writer.BuildEndpointClients(cfg.Rangefinder.Units, nil)
	if err != nil {
		log.Fatalf("writer clients failed: %v", err)
	}
	defer closeWriters()

	var m *metrics.Metrics
	if cfg.Rangefinder.Metrics.Listen != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, cfg.Rangefinder.Metrics.Listen); err != nil {
				log.Printf("metrics server failed: %v", err)
			}
		}()
	}

	// --------------------
	// Build per-unit pipelines
	// --------------------

	for _, unit := range cfg.Rangefinder.Units {

		// ---- poller ----
		p, dev, err := poller.Build(unit, buses, clock)
		if err != nil {
			log.Fatalf("poller build failed (unit=%s): %v", unit.ID, err)
		}

		// ---- writer plan ----
		plan, err := writer.BuildPlan(unit)
		if err != nil {
			log.Fatalf("writer plan failed (unit=%s): %v", unit.ID, err)
		}

		// Status writer (optional per unit)
		statusWriter, statusEnabled := writer.NewDeviceStatusWriter(plan, clients)

		log.Printf(
			"unit %s: %s bus=%s addr=0x%02x bounds=[%d,%d] filter=%s targets=%d status=%t",
			unit.ID,
			unit.Sensor.Backend,
			unit.Sensor.Bus,
			dev.Address(),
			dev.Bounds().Min,
			dev.Bounds().Max,
			unit.Filter.Kind,
			len(plan.Targets),
			statusEnabled,
		)

		// ---- channel between poller and orchestrator ----
		out := make(chan poller.PollResult)

		o := &orchestrator{
			unitID:       unit.ID,
			data:         writer.New(plan, clients),
			statusWriter: statusWriter,
			metrics:      m,
			clock:        clock,
		}
		go o.run(ctx, out)

		// poller producer
		go p.Run(ctx, out)
	}

	<-ctx.Done()
	log.Printf("shutting down")
}
