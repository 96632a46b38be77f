package flip

import (
	"fmt"
	"time"
)

// Direction is the state a flip puts its switch into.
type Direction int

const (
	Off Direction = 0
	On  Direction = 1
)

// String returns "on" or "off".
func (d Direction) String() string {
	switch d {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection converts a storage code to a Direction.
func ParseDirection(code int) (Direction, error) {
	switch Direction(code) {
	case Off, On:
		return Direction(code), nil
	default:
		return 0, fmt.Errorf("%w: direction %d", ErrOutOfRange, code)
	}
}

// Meridiem is the half of the day a 12-hour time falls in.
type Meridiem int

const (
	AM Meridiem = 0
	PM Meridiem = 1
)

// String returns "AM" or "PM".
func (m Meridiem) String() string {
	switch m {
	case AM:
		return "AM"
	case PM:
		return "PM"
	default:
		return fmt.Sprintf("meridiem(%d)", int(m))
	}
}

// ParseMeridiem converts a storage code to a Meridiem.
func ParseMeridiem(code int) (Meridiem, error) {
	switch Meridiem(code) {
	case AM, PM:
		return Meridiem(code), nil
	default:
		return 0, fmt.Errorf("%w: meridiem %d", ErrOutOfRange, code)
	}
}

// TimeKind says where a flip's time comes from. Everything except Custom is
// rewritten by the daily key-time job.
type TimeKind int

const (
	Custom   TimeKind = 0
	Dawn     TimeKind = 1
	Sunrise  TimeKind = 2
	Noon     TimeKind = 3
	Sunset   TimeKind = 4
	Dusk     TimeKind = 5
	Midnight TimeKind = 6
)

var timeKindNames = [...]string{"custom", "dawn", "sunrise", "noon", "sunset", "dusk", "midnight"}

// String returns the lower-case kind name.
func (k TimeKind) String() string {
	if k >= Custom && k <= Midnight {
		return timeKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseTimeKind converts a storage code to a TimeKind.
func ParseTimeKind(code int) (TimeKind, error) {
	k := TimeKind(code)
	if k < Custom || k > Midnight {
		return 0, fmt.Errorf("%w: time kind %d", ErrOutOfRange, code)
	}
	return k, nil
}

// DayMask has one bit per weekday, Sunday being the lowest.
type DayMask int

// EveryDay selects all seven weekdays.
const EveryDay DayMask = 0x7f

// DayOf returns the single-bit mask for weekday.
func DayOf(weekday time.Weekday) DayMask {
	return 1 << uint(weekday)
}

// Has reports whether weekday is selected.
func (m DayMask) Has(weekday time.Weekday) bool {
	return m&DayOf(weekday) != 0
}

// TimeSpec is the time of day a flip fires, in 12-hour form.
type TimeSpec struct {
	Hour     int // 1-12
	Minute   int // 0-59
	Meridiem Meridiem
	Kind     TimeKind

	// Days is only consulted by storage when selecting today's flips.
	Days DayMask
}

// TimeSpecAt builds a TimeSpec for the wall-clock time of t.
func TimeSpecAt(t time.Time, kind TimeKind) TimeSpec {
	hour := t.Hour()
	meridiem := AM
	if hour >= 12 {
		meridiem = PM
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return TimeSpec{
		Hour:     hour,
		Minute:   t.Minute(),
		Meridiem: meridiem,
		Kind:     kind,
		Days:     DayOf(t.Weekday()),
	}
}

// Hour24 returns the hour with 12 added for PM times.
func (s TimeSpec) Hour24() int {
	if s.Meridiem == PM {
		return s.Hour + 12
	}
	return s.Hour
}

// IsDueBy reports whether the flip should have fired by now.
//
// The hour and the minute are compared separately: the flip's hour must be
// at or before now's hour and its minute at or before now's minute.
func (s TimeSpec) IsDueBy(now time.Time) bool {
	return s.Hour24() <= now.Hour() && s.Minute <= now.Minute()
}

// Validate checks the ranges of every field.
func (s TimeSpec) Validate() error {
	if s.Hour < 1 || s.Hour > 12 {
		return fmt.Errorf("%w: hour %d", ErrOutOfRange, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrOutOfRange, s.Minute)
	}
	if _, err := ParseMeridiem(int(s.Meridiem)); err != nil {
		return err
	}
	if _, err := ParseTimeKind(int(s.Kind)); err != nil {
		return err
	}
	return nil
}

// String formats the time like "9:05 PM (sunset)".
func (s TimeSpec) String() string {
	return fmt.Sprintf("%d:%02d %s (%s)", s.Hour, s.Minute, s.Meridiem, s.Kind)
}

// sortKey orders specs by wall-clock position within the day.
func (s TimeSpec) sortKey() int {
	return s.Hour24()*60 + s.Minute
}

// Flip is one scheduled switch toggle for the current day.
type Flip struct {
	ID        int
	Direction Direction
	Time      TimeSpec
	SwitchID  int
	RemoteID  int
}
