package flip

import (
	"errors"
	"testing"
	"time"
)

// at returns a time today at hour:minute local.
func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 4, hour, minute, 0, 0, time.Local)
}

func TestTimeSpec_IsDueBy(t *testing.T) {
	tests := []struct {
		name string
		spec TimeSpec
		now  time.Time
		want bool
	}{
		{"9:30 AM at 9:45", TimeSpec{Hour: 9, Minute: 30, Meridiem: AM}, at(9, 45), true},
		{"9:30 AM at 9:15", TimeSpec{Hour: 9, Minute: 30, Meridiem: AM}, at(9, 15), false},
		{"9:30 AM at 9:30", TimeSpec{Hour: 9, Minute: 30, Meridiem: AM}, at(9, 30), true},
		{"2:00 PM at 13:59", TimeSpec{Hour: 2, Minute: 0, Meridiem: PM}, at(13, 59), false},
		{"2:00 PM at 14:00", TimeSpec{Hour: 2, Minute: 0, Meridiem: PM}, at(14, 0), true},
		{"hour passed but minute not reached", TimeSpec{Hour: 9, Minute: 50, Meridiem: AM}, at(10, 10), false},
		{"hour passed and minute reached", TimeSpec{Hour: 9, Minute: 5, Meridiem: AM}, at(10, 10), true},
		{"12 PM maps past the last hour", TimeSpec{Hour: 12, Minute: 0, Meridiem: PM}, at(23, 59), false},
		{"12 AM maps to noon hour", TimeSpec{Hour: 12, Minute: 0, Meridiem: AM}, at(12, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.IsDueBy(tt.now); got != tt.want {
				t.Errorf("IsDueBy(%s) = %v, want %v", tt.now.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestTimeSpecAt(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		hour     int
		meridiem Meridiem
	}{
		{"morning", at(6, 58), 6, AM},
		{"midnight", at(0, 15), 12, AM},
		{"noon", at(12, 5), 12, PM},
		{"evening", at(19, 42), 7, PM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := TimeSpecAt(tt.t, Sunset)
			if spec.Hour != tt.hour || spec.Meridiem != tt.meridiem {
				t.Errorf("TimeSpecAt() = %d %s, want %d %s", spec.Hour, spec.Meridiem, tt.hour, tt.meridiem)
			}
			if spec.Minute != tt.t.Minute() {
				t.Errorf("Minute = %d, want %d", spec.Minute, tt.t.Minute())
			}
			if spec.Kind != Sunset {
				t.Errorf("Kind = %v, want sunset", spec.Kind)
			}
			if !spec.Days.Has(tt.t.Weekday()) {
				t.Errorf("Days = %b, missing %v", spec.Days, tt.t.Weekday())
			}
			if err := spec.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestTimeSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TimeSpec
		wantErr bool
	}{
		{"valid", TimeSpec{Hour: 7, Minute: 0, Meridiem: AM, Kind: Custom}, false},
		{"hour zero", TimeSpec{Hour: 0, Minute: 0}, true},
		{"hour thirteen", TimeSpec{Hour: 13, Minute: 0}, true},
		{"minute sixty", TimeSpec{Hour: 1, Minute: 60}, true},
		{"bad meridiem", TimeSpec{Hour: 1, Meridiem: 2}, true},
		{"bad kind", TimeSpec{Hour: 1, Kind: 7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Validate() error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestParseCodes(t *testing.T) {
	if d, err := ParseDirection(1); err != nil || d != On {
		t.Errorf("ParseDirection(1) = %v, %v", d, err)
	}
	if _, err := ParseDirection(2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseDirection(2) error = %v, want ErrOutOfRange", err)
	}
	if m, err := ParseMeridiem(1); err != nil || m != PM {
		t.Errorf("ParseMeridiem(1) = %v, %v", m, err)
	}
	if _, err := ParseMeridiem(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseMeridiem(-1) error = %v, want ErrOutOfRange", err)
	}
	if k, err := ParseTimeKind(5); err != nil || k != Dusk {
		t.Errorf("ParseTimeKind(5) = %v, %v", k, err)
	}
	if _, err := ParseTimeKind(9); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseTimeKind(9) error = %v, want ErrOutOfRange", err)
	}
}

func TestDayMask(t *testing.T) {
	if DayOf(time.Sunday) != 1 || DayOf(time.Monday) != 2 || DayOf(time.Saturday) != 64 {
		t.Errorf("DayOf() mapping wrong: sun=%d mon=%d sat=%d",
			DayOf(time.Sunday), DayOf(time.Monday), DayOf(time.Saturday))
	}

	weekdays := DayOf(time.Monday) | DayOf(time.Friday)
	if !weekdays.Has(time.Friday) || weekdays.Has(time.Sunday) {
		t.Errorf("DayMask(%b).Has() wrong", weekdays)
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		if !EveryDay.Has(d) {
			t.Errorf("EveryDay missing %v", d)
		}
	}
}

func TestStringers(t *testing.T) {
	if On.String() != "on" || Off.String() != "off" {
		t.Error("Direction.String() wrong")
	}
	spec := TimeSpec{Hour: 9, Minute: 5, Meridiem: PM, Kind: Sunset}
	if got := spec.String(); got != "9:05 PM (sunset)" {
		t.Errorf("TimeSpec.String() = %q", got)
	}
}
