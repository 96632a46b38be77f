package mqtt

import (
	"fmt"
	"strings"
)

// Topic roots used by the RoboHome processes.
const (
	TopicPrefix         = "robohome"
	TopicPrefixSwitches = TopicPrefix + "/switches"
	TopicPrefixSystem   = TopicPrefix + "/system"
)

// Topics builds RoboHome topic names.
//
//	topics := mqtt.Topics{}
//	topics.SwitchCommand(mqtt.TopicPrefixSwitches, 3) // "robohome/switches/3"
type Topics struct{}

// SystemStatus carries retained online/offline status and the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// SwitchCommand is where toggle commands for one remote are published.
func (Topics) SwitchCommand(prefix string, remoteID int) string {
	return fmt.Sprintf("%s/%d", strings.TrimRight(prefix, "/"), remoteID)
}

// AllSwitchCommands matches every remote's command topic under prefix.
func (Topics) AllSwitchCommands(prefix string) string {
	return strings.TrimRight(prefix, "/") + "/+"
}

// SwitchRefresh is the default topic carrying "update" notifications.
func (Topics) SwitchRefresh() string {
	return TopicPrefixSwitches + "/refresh"
}
