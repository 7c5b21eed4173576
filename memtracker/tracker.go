// Package memtracker implements the hierarchical byte-accounting structure
// the consensus queue uses to bound its memory footprint at both a
// per-tablet and a process-wide scope. It is a direct Go rendering of
// Kudu's MemTracker: a tree of counters where consuming or releasing bytes
// at a leaf propagates to every ancestor up to the root.
package memtracker

import "go.uber.org/atomic"

// Tracker is one node in the memory-accounting tree. The zero value is not
// usable; construct one via Registry.FindOrCreate or New.
type Tracker struct {
	id          string
	softLimit   int64
	consumption atomic.Int64
	parent      *Tracker
}

// New creates a standalone tracker with the given soft limit and optional
// parent. Prefer Registry.FindOrCreate when the tracker must be looked up
// by a stable identifier from more than one place.
func New(id string, softLimit int64, parent *Tracker) *Tracker {
	return &Tracker{id: id, softLimit: softLimit, parent: parent}
}

// ID returns the tracker's identifier.
func (t *Tracker) ID() string { return t.id }

// SoftLimit returns the tracker's soft limit in bytes.
func (t *Tracker) SoftLimit() int64 { return t.softLimit }

// Consumption returns the tracker's current consumption in bytes.
func (t *Tracker) Consumption() int64 { return t.consumption.Load() }

// Parent returns the tracker's parent, or nil at the root.
func (t *Tracker) Parent() *Tracker { return t.parent }

// Consume adds n bytes to this tracker and every ancestor up to the root.
func (t *Tracker) Consume(n int64) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.consumption.Add(n)
	}
}

// Release subtracts n bytes from this tracker and every ancestor up to the
// root.
func (t *Tracker) Release(n int64) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.consumption.Sub(n)
	}
}

// AnyLimitExceeded reports whether this tracker or any ancestor has
// consumption greater than its soft limit.
func (t *Tracker) AnyLimitExceeded() bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur.consumption.Load() > cur.softLimit {
			return true
		}
	}
	return false
}

// SpareCapacity returns how many more bytes this tracker (not its
// ancestors) could consume before exceeding its own soft limit, floored at
// zero.
func (t *Tracker) SpareCapacity() int64 {
	spare := t.softLimit - t.consumption.Load()
	if spare < 0 {
		return 0
	}
	return spare
}
