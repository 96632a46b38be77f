// Package influxdb records switcher telemetry: every toggle the flipper
// publishes (measurement "flips") and every message a control loop handles
// (measurement "control_messages").
//
// Telemetry is optional. Connect returns ErrDisabled when the influxdb
// section is turned off and the switcher runs without a recorder.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without telemetry
//	}
//	defer client.Close()
//
//	client.WriteFlip(3, 12, "on", "sunset")
//
// Writes are batched by the underlying client according to batch_size and
// flush_interval and never block the caller.
package influxdb
