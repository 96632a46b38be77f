package flip

import (
	"cmp"
	"slices"
	"time"
)

// Queue holds the pending flips for one day.
//
// Flips are kept in descending time order: the latest flip sits at the
// front and the next one to fire at the back, so consumption always pops
// from the back.
//
// A Queue has a single owner and is not safe for concurrent use.
type Queue struct {
	flips []Flip
}

// Replace discards the current contents and loads flips in descending
// time order. The input slice is copied and left untouched.
//
// Flips with equal times are ordered by ID so the lowest ID fires first.
func (q *Queue) Replace(flips []Flip) {
	sorted := slices.Clone(flips)
	slices.SortStableFunc(sorted, func(a, b Flip) int {
		if c := cmp.Compare(b.Time.sortKey(), a.Time.sortKey()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	q.flips = sorted
}

// Len returns the number of pending flips.
func (q *Queue) Len() int {
	return len(q.flips)
}

// Back returns the next flip to fire without removing it.
func (q *Queue) Back() (Flip, bool) {
	if len(q.flips) == 0 {
		return Flip{}, false
	}
	return q.flips[len(q.flips)-1], true
}

// Flips returns a copy of the pending flips, front to back.
func (q *Queue) Flips() []Flip {
	return slices.Clone(q.flips)
}

// popDue removes and returns the back flip if it is due by now.
func (q *Queue) popDue(now time.Time) (Flip, bool) {
	last, ok := q.Back()
	if !ok || !last.Time.IsDueBy(now) {
		return Flip{}, false
	}
	q.flips = q.flips[:len(q.flips)-1]
	return last, true
}

// Dispatch pops every due flip from the back and hands it to publish.
//
// A flip is removed before publish is called and is never put back, so no
// flip fires twice. The first publish error stops the run and is returned.
//
// Returns:
//   - int: number of flips popped, including one whose publish failed
//   - error: the publish error, if any
func (q *Queue) Dispatch(now time.Time, publish func(Flip) error) (int, error) {
	popped := 0
	for {
		f, ok := q.popDue(now)
		if !ok {
			return popped, nil
		}
		popped++
		if err := publish(f); err != nil {
			return popped, err
		}
	}
}

// Prune discards every due flip from the back without publishing it.
// It stops at the first flip that is not due, or when the queue is empty.
//
// Returns:
//   - int: number of flips discarded
func (q *Queue) Prune(now time.Time) int {
	pruned := 0
	for {
		if _, ok := q.popDue(now); !ok {
			return pruned
		}
		pruned++
	}
}
