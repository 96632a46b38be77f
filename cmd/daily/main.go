// RoboHome Daily
//
// Run once a day, before dawn. Fetches today's sunrise and sunset, stores
// the four key times (dawn, sunrise, dusk, sunset), moves every flip tied to
// them, and tells a running switcher to reload.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/FreeMasen/robohome-switcher/migrations"

	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/config"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/database"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/logging"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/mqtt"
	"github.com/FreeMasen/robohome-switcher/internal/schedule"
	"github.com/FreeMasen/robohome-switcher/internal/switches"
	"github.com/FreeMasen/robohome-switcher/internal/weather"
)

var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("ROBOHOME_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, "daily", version)
	log.Info("starting RoboHome daily job", "version", version, "commit", commit)

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("loading time zone: %w", err)
	}
	today := time.Now().In(loc)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // process is exiting

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	repo := schedule.NewRepository(db)

	done, err := repo.HasKeyTimes(ctx, today)
	if err != nil {
		return fmt.Errorf("checking key times: %w", err)
	}
	if done {
		log.Info("key times already stored", "date", today.Format(time.DateOnly))
		return nil
	}

	client, err := weather.New(cfg.Weather, log.Component("weather"))
	if err != nil {
		return fmt.Errorf("creating weather client: %w", err)
	}
	sun, err := client.SunPhase(ctx, today)
	if err != nil {
		return fmt.Errorf("fetching sun phase: %w", err)
	}
	log.Info("sun phase fetched",
		"sunrise", sun.Sunrise.Format(time.Kitchen),
		"sunset", sun.Sunset.Format(time.Kitchen),
	)

	moved, err := repo.SaveKeyTimes(ctx, today, sun.Sunrise, sun.Sunset)
	if err != nil {
		return fmt.Errorf("saving key times: %w", err)
	}
	log.Info("key times saved", "date", today.Format(time.DateOnly), "flips_updated", moved)

	mqttCfg := cfg.MQTT
	mqttCfg.Broker.ClientID += "-daily"
	mqttClient, err := mqtt.Connect(ctx, mqttCfg)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer mqttClient.Close() //nolint:errcheck // process is exiting

	if err := switches.NotifyRefresh(mqttClient, cfg.Schedule.RefreshTopic, byte(cfg.MQTT.QoS)); err != nil {
		return fmt.Errorf("notifying switcher: %w", err)
	}
	log.Info("refresh notification sent", "topic", cfg.Schedule.RefreshTopic)
	return nil
}
