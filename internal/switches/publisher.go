package switches

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/FreeMasen/robohome-switcher/internal/flip"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/mqtt"
)

// RefreshPayload is the body of a refresh notification.
const RefreshPayload = "update"

// Client is the broker surface needed to publish. Satisfied by *mqtt.Client.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// command is the wire form of a toggle.
type command struct {
	SwitchID  uint16 `json:"switch_id"`
	Direction uint8  `json:"direction"`
}

// Publisher sends toggle commands for the flipper.
type Publisher struct {
	client Client
	prefix string
	qos    byte
	topics mqtt.Topics
}

// NewPublisher creates a publisher for remotes under prefix.
//
// Parameters:
//   - client: Connected broker client
//   - prefix: Command topic prefix, e.g. "robohome/switches"
//   - qos: QoS for every command
func NewPublisher(client Client, prefix string, qos byte) *Publisher {
	return &Publisher{client: client, prefix: prefix, qos: qos}
}

// PublishToggle sends one toggle to a remote.
//
// Returns:
//   - error: ErrInvalidSwitch if switchID does not fit in 16 bits, or the
//     broker's publish error
func (p *Publisher) PublishToggle(remoteID, switchID int, d flip.Direction) error {
	payload, err := EncodeToggle(switchID, d)
	if err != nil {
		return err
	}
	topic := p.topics.SwitchCommand(p.prefix, remoteID)
	if err := p.client.Publish(topic, payload, p.qos, false); err != nil {
		return fmt.Errorf("publishing toggle to %s: %w", topic, err)
	}
	return nil
}

// EncodeToggle builds the JSON command body.
func EncodeToggle(switchID int, d flip.Direction) ([]byte, error) {
	if switchID < 0 || switchID > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSwitch, switchID)
	}
	return json.Marshal(command{
		SwitchID:  uint16(switchID),
		Direction: uint8(d),
	})
}

// NotifyRefresh publishes the "update" notification on topic.
func NotifyRefresh(client Client, topic string, qos byte) error {
	if err := client.Publish(topic, []byte(RefreshPayload), qos, false); err != nil {
		return fmt.Errorf("publishing refresh to %s: %w", topic, err)
	}
	return nil
}
