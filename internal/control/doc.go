// Package control defines the messages exchanged by the switcher's control
// loops and the mailboxes that carry them.
//
// # Topology
//
//	Clock ─────────┐
//	Listener ──────┼──► supervisor inbox ──► Supervisor ──► flipper mailbox ──► Flipper
//	Flipper status ┘
//
// There is exactly one Message type. Its Kind is a closed set of variants;
// only ErrorOccurred carries a payload.
//
// Mailboxes are unbounded so a producer never blocks on a slow consumer.
// Closing a mailbox is how its owner tells producers it has gone away.
package control
