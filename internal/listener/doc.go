// Package listener turns broker notifications into control messages.
//
// The listener subscribes to the refresh topic with manual acknowledgement.
// Each delivery is translated:
//
//	"update"          → BrokerRefreshSignal
//	other valid text  → ErrorOccurred("unknown message content from broker: <text>")
//	invalid UTF-8     → ErrorOccurred("failed to decode utf-8")
//
// and then acknowledged, whatever the outcome. A bad delivery never stops
// the listener; the supervisor decides what an ErrorOccurred means.
package listener
