// Package flipper holds today's flip queue and fires flips as they come due.
//
// The Flipper reads commands from its own mailbox and reports status to the
// supervisor inbox:
//
//	CheckDue          refresh if the queue is stale, fire every due flip
//	                  status: [OutOfDate, Updated,] CheckComplete
//	RefreshRequested  reload today's flips, drop the ones already due
//	                  status: Updated
//
// The queue starts out dated yesterday, so the first CheckDue always loads
// today's flips. A flip is removed from the queue before it is published;
// a failed publish is not retried.
//
// Fetch, publish and status failures end Run with an error.
package flipper
