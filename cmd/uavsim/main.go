// uavsim runs a UAV fleet simulation: it loads a scenario file, steps
// every agent through its command queue and records flight telemetry to
// the configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/uavops/uavsim/internal/config"
	"github.com/uavops/uavsim/internal/influx"
	"github.com/uavops/uavsim/internal/logging"
	"github.com/uavops/uavsim/internal/sim"
	"github.com/uavops/uavsim/internal/telemetry"
	"github.com/uavops/uavsim/pkg/core"
)

// Version can be set at build time via ldflags.
var Version = "0.0.1"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "uavsim:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config", ".", "directory containing uavsim.cfg.json")
	scenarioPath := flag.String("scenario", "scenario.json", "scenario file to run")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("uavsim", Version)
		return nil
	}

	if err := config.Load(*configDir); err != nil {
		return err
	}

	sessionStart := time.Now()
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, "uavsim", sessionStart))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	logManager := logging.NewManager()
	gelfAddress := ""
	if config.GetBool("graylog.enabled") {
		gelfAddress = config.GetString("graylog.address")
	}
	if err := logManager.Setup(logFile, config.GetString("logLevel"), gelfAddress); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logManager.Close()
	log := logManager.Logger()

	simCfg := config.GetSimConfig()
	spec, err := sim.LoadScenarioSpec(*scenarioPath)
	if err != nil {
		return err
	}
	world, err := spec.Build(simCfg.Seed, log)
	if err != nil {
		return err
	}

	scenario := core.NewScenario(spec.Name, simCfg.StepSize, simCfg.Duration, simCfg.Seed)
	scenario.Params = map[string]any{
		"nodes":    len(world.Agents),
		"stations": len(world.Stations),
		"version":  Version,
	}
	logManager.GetScenarioName = func() string { return scenario.Name }

	backend, err := telemetry.New(config.GetStorageConfig(), log)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer backend.Close()
	if world.Origin != nil {
		if ga, ok := backend.(telemetry.GeoAware); ok {
			ga.SetOrigin(*world.Origin)
		}
		log.Info("world anchored",
			"longitude", world.Origin.Longitude, "latitude", world.Origin.Latitude)
	}
	if err := backend.StartScenario(scenario); err != nil {
		return fmt.Errorf("starting scenario: %w", err)
	}

	var flux *influx.Manager
	if config.GetBool("influx.enabled") {
		zl := zerolog.New(logFile).With().Timestamp().Logger()
		flux = influx.NewManager(zl, filepath.Join(logsDir, "influx_backup.gz"))
		if err := flux.Connect(); err != nil {
			log.Warn("influx unavailable, live metrics disabled", "error", err)
			flux = nil
		} else {
			defer flux.Close()
		}
	}

	driver, err := sim.New(sim.Dependencies{
		Config:    simCfg,
		Scenario:  scenario,
		Logger:    log,
		Telemetry: backend,
		Influx:    flux,
	})
	if err != nil {
		return err
	}
	for _, a := range world.Agents {
		driver.AddAgent(a)
	}
	for _, s := range world.Stations {
		driver.AddStation(s)
	}
	logManager.GetSimTime = driver.Now

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if err := backend.EndScenario(); err != nil {
		return fmt.Errorf("ending scenario: %w", err)
	}
	if exp, ok := backend.(telemetry.Exportable); ok {
		if path := exp.ExportedFilePath(); path != "" {
			log.Info("recording written", "path", path)
		}
	}

	log.Info("run summary",
		"simTime", metrics.SimTime,
		"steps", metrics.Steps,
		"commandsCompleted", metrics.CommandsCompleted,
		"detourCommands", metrics.DetourCommandsDone,
		"commandsFailed", metrics.CommandsFailed,
		"detoursTriggered", metrics.DetoursTriggered,
		"reservations", metrics.ReservationsSeen,
		"agentsFailed", metrics.AgentsFailed,
		"distanceFlown", metrics.DistanceFlown,
	)
	return nil
}
