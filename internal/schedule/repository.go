package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/FreeMasen/robohome-switcher/internal/flip"
	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/database"
)

// dateLayout is how key_times.date is stored.
const dateLayout = time.DateOnly

// keyKinds are the kinds SaveKeyTimes writes; a day is complete when all are present.
var keyKinds = []flip.TimeKind{flip.Dawn, flip.Sunrise, flip.Dusk, flip.Sunset}

// Repository implements schedule persistence on the shared SQLite database.
type Repository struct {
	db *database.DB
}

// NewRepository creates a Repository on an open, migrated database.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// TodayFlips returns every flip scheduled on now's weekday. Order is
// whatever SQLite returns; callers sort.
func (r *Repository) TodayFlips(ctx context.Context, now time.Time) ([]flip.Flip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, direction, hour, minute, meridiem, kind, dow, switch_id, remote_id
		FROM pending_flips
		WHERE dow & ? > 0`, int(flip.DayOf(now.Weekday())))
	if err != nil {
		return nil, fmt.Errorf("querying pending flips: %w", err)
	}
	defer rows.Close()

	var flips []flip.Flip
	for rows.Next() {
		f, err := scanFlip(rows)
		if err != nil {
			return nil, err
		}
		flips = append(flips, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending flips: %w", err)
	}
	return flips, nil
}

func scanFlip(rows *sql.Rows) (flip.Flip, error) {
	var id, direction, hour, minute, meridiem, kind, dow, switchID, remoteID int
	if err := rows.Scan(&id, &direction, &hour, &minute, &meridiem, &kind, &dow, &switchID, &remoteID); err != nil {
		return flip.Flip{}, fmt.Errorf("scanning flip row: %w", err)
	}

	d, err := flip.ParseDirection(direction)
	if err != nil {
		return flip.Flip{}, fmt.Errorf("%w %d: %w", ErrInvalidRow, id, err)
	}
	m, err := flip.ParseMeridiem(meridiem)
	if err != nil {
		return flip.Flip{}, fmt.Errorf("%w %d: %w", ErrInvalidRow, id, err)
	}
	k, err := flip.ParseTimeKind(kind)
	if err != nil {
		return flip.Flip{}, fmt.Errorf("%w %d: %w", ErrInvalidRow, id, err)
	}

	return flip.Flip{
		ID:        id,
		Direction: d,
		Time: flip.TimeSpec{
			Hour:     hour,
			Minute:   minute,
			Meridiem: m,
			Kind:     k,
			Days:     flip.DayMask(dow),
		},
		SwitchID: switchID,
		RemoteID: remoteID,
	}, nil
}

// HasKeyTimes reports whether all four key times are stored for date's day.
func (r *Repository) HasKeyTimes(ctx context.Context, date time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM key_times
		WHERE date = ? AND kind IN (?, ?, ?, ?)`,
		date.Format(dateLayout), int(flip.Dawn), int(flip.Sunrise), int(flip.Dusk), int(flip.Sunset),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting key times: %w", err)
	}
	return count == len(keyKinds), nil
}

// KeyTimes returns the key times stored for date's day, keyed by kind.
func (r *Repository) KeyTimes(ctx context.Context, date time.Time) (map[flip.TimeKind]flip.TimeSpec, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hour, minute, meridiem, kind, dow FROM key_times WHERE date = ?`,
		date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying key times: %w", err)
	}
	defer rows.Close()

	times := make(map[flip.TimeKind]flip.TimeSpec)
	for rows.Next() {
		var spec flip.TimeSpec
		var meridiem, kind, dow int
		if err := rows.Scan(&spec.Hour, &spec.Minute, &meridiem, &kind, &dow); err != nil {
			return nil, fmt.Errorf("scanning key time: %w", err)
		}
		spec.Meridiem = flip.Meridiem(meridiem)
		spec.Kind = flip.TimeKind(kind)
		spec.Days = flip.DayMask(dow)
		times[spec.Kind] = spec
	}
	return times, rows.Err()
}

// SaveKeyTimes records the day's dawn, sunrise, dusk and sunset and moves
// every flip of those kinds to the new times, all in one transaction.
// Dawn and dusk are one hour before sunrise and sunset.
//
// Parameters:
//   - date: The day the times belong to; only its calendar date is stored
//   - sunrise: Wall-clock sunrise on date
//   - sunset: Wall-clock sunset on date
//
// Returns:
//   - int: Number of flips moved
//   - error: If any write fails (nothing is saved)
func (r *Repository) SaveKeyTimes(ctx context.Context, date, sunrise, sunset time.Time) (int, error) {
	times := []flip.TimeSpec{
		flip.TimeSpecAt(sunrise.Add(-time.Hour), flip.Dawn),
		flip.TimeSpecAt(sunrise, flip.Sunrise),
		flip.TimeSpecAt(sunset.Add(-time.Hour), flip.Dusk),
		flip.TimeSpecAt(sunset, flip.Sunset),
	}
	day := date.Format(dateLayout)
	dow := int(flip.DayOf(date.Weekday()))

	updated := 0
	err := r.db.InTx(ctx, func(tx *sql.Tx) error {
		for _, spec := range times {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO key_times (date, hour, minute, meridiem, kind, dow)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (date, kind) DO UPDATE SET
					hour = excluded.hour,
					minute = excluded.minute,
					meridiem = excluded.meridiem,
					dow = excluded.dow`,
				day, spec.Hour, spec.Minute, int(spec.Meridiem), int(spec.Kind), dow,
			); err != nil {
				return fmt.Errorf("saving %s key time: %w", spec.Kind, err)
			}

			res, err := tx.ExecContext(ctx,
				`UPDATE flips SET hour = ?, minute = ?, meridiem = ? WHERE kind = ?`,
				spec.Hour, spec.Minute, int(spec.Meridiem), int(spec.Kind))
			if err != nil {
				return fmt.Errorf("moving %s flips: %w", spec.Kind, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("counting %s flips: %w", spec.Kind, err)
			}
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// CreateRemote inserts a remote and returns its ID.
func (r *Repository) CreateRemote(ctx context.Context, name, location string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO remotes (name, location) VALUES (?, ?)`, name, location)
	if err != nil {
		return 0, fmt.Errorf("inserting remote: %w", err)
	}
	return lastID(res)
}

// CreateSwitch inserts a switch on remoteID. code is the ID the remote
// transmits for it and is what toggle commands carry.
func (r *Repository) CreateSwitch(ctx context.Context, remoteID int, name string, code int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO switches (remote_id, name, code) VALUES (?, ?, ?)`, remoteID, name, code)
	if err != nil {
		if isForeignKeyError(err) {
			return 0, fmt.Errorf("%w: remote %d", ErrNotFound, remoteID)
		}
		return 0, fmt.Errorf("inserting switch: %w", err)
	}
	return lastID(res)
}

// CreateFlip schedules a toggle of switchID (the row ID, not the code).
func (r *Repository) CreateFlip(ctx context.Context, switchID int, d flip.Direction, spec flip.TimeSpec) (int, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	days := spec.Days
	if days == 0 {
		days = flip.EveryDay
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO flips (switch_id, direction, hour, minute, meridiem, kind, dow)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		switchID, int(d), spec.Hour, spec.Minute, int(spec.Meridiem), int(spec.Kind), int(days))
	if err != nil {
		if isForeignKeyError(err) {
			return 0, fmt.Errorf("%w: switch %d", ErrNotFound, switchID)
		}
		return 0, fmt.Errorf("inserting flip: %w", err)
	}
	return lastID(res)
}

// DeleteFlip removes a flip.
func (r *Repository) DeleteFlip(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting flip: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: flip %d", ErrNotFound, id)
	}
	return nil
}

func lastID(res sql.Result) (int, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return int(id), nil
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
