// Package supervisor routes control messages between the switcher's loops.
//
// The supervisor owns the single inbox that the clock, the listener and the
// flipper's status reports all feed. It forwards commands to the flipper:
//
//	Tick                 → CheckDue
//	BrokerRefreshSignal  → RefreshRequested
//
// An ErrorOccurred message ends Run with ErrFatalMessage; Shutdown ends it
// with ErrShutdown. Status reports are logged and otherwise ignored.
package supervisor
