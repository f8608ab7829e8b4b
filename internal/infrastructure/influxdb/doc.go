// Package influxdb provides optional InfluxDB telemetry for the clock.
//
// It wraps the official influxdb-client-go v2 library and records:
//   - Connectivity transitions (link_state)
//   - Time-sync health and displayed epoch (time_sync)
//   - Accepted remote commands (command)
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB, "/home/lab/clock")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteLinkState("session_up")
//
// # Error Handling
//
// Writes are non-blocking and batched; batch errors are delivered to the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
