// Package switches encodes and publishes commands for RoboHome remotes.
//
// A toggle is published to "<prefix>/<remote id>" as
//
//	{"switch_id": 42, "direction": 1}
//
// where direction is 1 for on and 0 for off. Commands are never retained.
//
// The package also sends the "update" notification that tells a running
// switcher its stored flips have changed.
package switches
