package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementLink    = "link_state"
	MeasurementSync    = "time_sync"
	MeasurementCommand = "command"
)

// WriteLinkState records a connectivity transition.
//
// Example:
//
//	client.WriteLinkState("session_up")
func (c *Client) WriteLinkState(state string) {
	c.WritePoint(MeasurementLink, nil, map[string]interface{}{"state": state})
}

// WriteSync records the outcome of a time-sync check: whether the session
// is healthy and the epoch the clock is displaying.
func (c *Client) WriteSync(healthy bool, epochSeconds uint64) {
	c.WritePoint(MeasurementSync, nil, map[string]interface{}{
		"healthy": healthy,
		"epoch":   int64(epochSeconds), // #nosec G115 -- epochs are bounded well below MaxInt64
	})
}

// WriteCommand records an accepted remote command and its resulting value.
func (c *Client) WriteCommand(name string, value int) {
	c.WritePoint(MeasurementCommand, map[string]string{"name": name}, map[string]interface{}{"value": value})
}

// WritePoint writes a point stamped with the current time. The device tag
// is always added.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a point with an explicit timestamp.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Indexed key-value pairs; may be nil
//   - fields: The data
//   - timestamp: The time for this point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	all := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		all[k] = v
	}
	all["device"] = c.device

	c.writeAPI.WritePoint(write.NewPoint(measurement, all, fields, timestamp))
}
