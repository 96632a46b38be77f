package control

import "fmt"

// Kind identifies a control message variant.
//
// The set of kinds is closed. Components switch over the kinds they
// understand and list the rest explicitly as ignored.
type Kind uint8

const (
	// KindCheckDue asks the flipper to refresh if stale and fire due flips.
	KindCheckDue Kind = iota + 1

	// KindRefreshRequested asks the flipper to reload today's flips and
	// discard the ones already due.
	KindRefreshRequested

	// KindOutOfDate reports the flipper found its queue stale.
	KindOutOfDate

	// KindCheckComplete reports the flipper finished a check cycle.
	KindCheckComplete

	// KindUpdated reports the flipper reloaded its queue.
	KindUpdated

	// KindBrokerRefreshSignal is the listener's translation of an "update"
	// notification from the broker.
	KindBrokerRefreshSignal

	// KindErrorOccurred carries a description of a failure. Fatal once it
	// reaches the supervisor.
	KindErrorOccurred

	// KindShutdown requests an orderly stop of the supervisor.
	KindShutdown

	// KindTick is the clock's periodic pulse.
	KindTick
)

var kindNames = map[Kind]string{
	KindCheckDue:            "CheckDue",
	KindRefreshRequested:    "RefreshRequested",
	KindOutOfDate:           "OutOfDate",
	KindCheckComplete:       "CheckComplete",
	KindUpdated:             "Updated",
	KindBrokerRefreshSignal: "BrokerRefreshSignal",
	KindErrorOccurred:       "ErrorOccurred",
	KindShutdown:            "Shutdown",
	KindTick:                "Tick",
}

// String returns the variant name, e.g. "Tick".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared variants.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Message is the sole unit of communication between the control loops.
//
// Fields are unexported so a Message cannot change after construction.
// It is a small value and is passed by copy.
type Message struct {
	kind Kind
	text string
}

// Kind returns the message variant.
func (m Message) Kind() Kind { return m.kind }

// Text returns the error description of an ErrorOccurred message.
// It is empty for every other variant.
func (m Message) Text() string { return m.text }

// String formats the message for logs.
func (m Message) String() string {
	if m.kind == KindErrorOccurred {
		return fmt.Sprintf("%s: %s", m.kind, m.text)
	}
	return m.kind.String()
}

// CheckDue builds a CheckDue message.
func CheckDue() Message { return Message{kind: KindCheckDue} }

// RefreshRequested builds a RefreshRequested message.
func RefreshRequested() Message { return Message{kind: KindRefreshRequested} }

// OutOfDate builds an OutOfDate message.
func OutOfDate() Message { return Message{kind: KindOutOfDate} }

// CheckComplete builds a CheckComplete message.
func CheckComplete() Message { return Message{kind: KindCheckComplete} }

// Updated builds an Updated message.
func Updated() Message { return Message{kind: KindUpdated} }

// BrokerRefreshSignal builds a BrokerRefreshSignal message.
func BrokerRefreshSignal() Message { return Message{kind: KindBrokerRefreshSignal} }

// ErrorOccurred builds an ErrorOccurred message carrying text.
func ErrorOccurred(text string) Message { return Message{kind: KindErrorOccurred, text: text} }

// Shutdown builds a Shutdown message.
func Shutdown() Message { return Message{kind: KindShutdown} }

// Tick builds a Tick message.
func Tick() Message { return Message{kind: KindTick} }
