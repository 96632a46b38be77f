// Package flip models a day's scheduled switch toggles and the queue that
// releases them in time order.
//
// A Flip pairs a TimeSpec with the remote and switch it controls. The
// Queue keeps today's pending flips sorted latest-first so the next flip
// due is always at the back:
//
//	var q flip.Queue
//	q.Replace(fetched)                // any order in, sorted on ingest
//	n, err := q.Dispatch(now, publish) // fire everything due
//	q.Prune(now)                      // or drop everything due
package flip
