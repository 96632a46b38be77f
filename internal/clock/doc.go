// Package clock drives the switcher's schedule with a periodic Tick.
//
// A Clock sends one Tick as soon as it starts, then one per interval, to the
// supervisor's inbox. It has no other inputs.
package clock
