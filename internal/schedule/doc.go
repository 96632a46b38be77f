// Package schedule stores remotes, switches, flips and the daily key times
// in SQLite.
//
// The switcher reads today's flips through Repository.TodayFlips. The
// daily job records sunrise and sunset with SaveKeyTimes, which also moves
// every dawn, sunrise, dusk and sunset flip to the new time.
package schedule
