// Package weather fetches the day's sunrise and sunset from the sun phase
// endpoint of a weather service.
//
// The response is expected to carry string-valued hour and minute fields:
//
//	{"sun_phase": {"sunrise": {"hour": "6", "minute": "58"},
//	               "sunset":  {"hour": "18", "minute": "31"}}}
//
// Failed requests are retried with a linear back-off: the nth retry waits
// n times the configured delay.
package weather
