// Package logging provides structured logging for the RoboHome processes.
//
// It wraps log/slog so the switcher and the daily job emit the same shape
// of entry: JSON by default, text for development, with service and
// version fields on every line and a component field per loop.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "switcher", version)
//	flipperLog := logger.Component("flipper")
//	flipperLog.Info("flip sent", "remote_id", 3, "switch_id", 12)
//
// Never log the broker password, the InfluxDB token or the weather URL,
// which carries an API key.
package logging
