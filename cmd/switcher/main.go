// RoboHome Switcher
//
// Fires the day's scheduled switch toggles ("flips") at their time of day
// and reloads the schedule whenever the broker announces an update.
//
// Configuration is read from configs/config.yaml, or the path in
// ROBOHOME_CONFIG.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/FreeMasen/robohome-switcher/migrations"

	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/config"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/database"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/influxdb"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/logging"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/mqtt"
	"github.com/FreeMasen/robohome-switcher/internal/schedule"
	"github.com/FreeMasen/robohome-switcher/internal/switcher"
	"github.com/FreeMasen/robohome-switcher/internal/switches"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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

// run wires the infrastructure and blocks in the switcher until shutdown
// or a fatal error.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting RoboHome switcher",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, "switcher", version)
	log.Info("configuration loaded", "path", configPath)

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("loading time zone: %w", err)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	mqttClient, err := mqtt.Connect(ctx, cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	influxClient, err := connectInflux(ctx, cfg, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	opts := switcher.Options{
		Source:       schedule.NewRepository(db),
		Publisher:    switches.NewPublisher(mqttClient, cfg.Schedule.CommandTopicPrefix, byte(cfg.MQTT.QoS)),
		Subscriber:   mqttClient,
		TickInterval: cfg.Schedule.TickInterval,
		RefreshTopic: cfg.Schedule.RefreshTopic,
		QoS:          byte(cfg.MQTT.QoS),
		Logger:       log,
		Now:          func() time.Time { return time.Now().In(loc) },
	}
	if influxClient != nil {
		opts.Recorder = influxClient
	}

	sw, err := switcher.New(opts)
	if err != nil {
		return fmt.Errorf("creating switcher: %w", err)
	}

	if err := sw.Run(ctx); err != nil {
		log.Error("switcher stopped", "error", err)
		return err
	}

	log.Info("RoboHome switcher stopped")
	return nil
}

// connectInflux connects the optional telemetry client.
//
// Returns:
//   - *influxdb.Client: nil when InfluxDB is disabled
//   - error: If InfluxDB is enabled but unreachable
func connectInflux(ctx context.Context, cfg *config.Config, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client, nil
}

// getConfigPath returns ROBOHOME_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("ROBOHOME_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
