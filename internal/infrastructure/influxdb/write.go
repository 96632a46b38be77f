package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementFlips           = "flips"
	measurementControlMessages = "control_messages"
)

// WriteFlip records one published toggle.
//
// Example:
//
//	client.WriteFlip(3, 12, "on", "sunset")
func (c *Client) WriteFlip(remoteID, switchID int, direction, kind string) {
	c.write(flipPoint(remoteID, switchID, direction, kind, time.Now()))
}

// WriteControlMessage records one message handled by a control loop. The
// message is the variant name, plus the text for errors.
func (c *Client) WriteControlMessage(component, message string) {
	c.write(controlPoint(component, message, time.Now()))
}

func (c *Client) write(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func flipPoint(remoteID, switchID int, direction, kind string, at time.Time) *write.Point {
	return write.NewPoint(measurementFlips,
		map[string]string{
			"direction": direction,
			"kind":      kind,
		},
		map[string]any{
			"remote_id": remoteID,
			"switch_id": switchID,
		},
		at)
}

func controlPoint(component, message string, at time.Time) *write.Point {
	return write.NewPoint(measurementControlMessages,
		map[string]string{
			"component": component,
		},
		map[string]any{
			"message": message,
		},
		at)
}
