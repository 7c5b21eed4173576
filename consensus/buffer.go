package consensus

import (
	"github.com/google/btree"

	"github.com/tabletsql/consensusqueue/opid"
)

// bufferEntry is the btree item keying a status tracker by its OpId.
// Lookup keys carry a nil tracker.
type bufferEntry struct {
	id opid.OpId
	st *OperationStatusTracker
}

// Less is used to implement btree.Item.
func (e *bufferEntry) Less(than btree.Item) bool {
	o, ok := than.(*bufferEntry)
	if !ok {
		return false
	}
	return opid.Less(e.id, o.id)
}

// messageBuffer is the ordered mapping from OpId to status tracker.
// Iteration is in ascending OpId order. It is not safe for concurrent
// use; the queue's lock serializes access.
type messageBuffer struct {
	tree *btree.BTree
}

func newMessageBuffer() *messageBuffer {
	return &messageBuffer{tree: btree.New(2)}
}

func (b *messageBuffer) Len() int { return b.tree.Len() }

// Get returns the tracker stored under id, if any.
func (b *messageBuffer) Get(id opid.OpId) (*OperationStatusTracker, bool) {
	item := b.tree.Get(&bufferEntry{id: id})
	if item == nil {
		return nil, false
	}
	return item.(*bufferEntry).st, true
}

// Insert stores st under its OpId. It returns false, without modifying
// the buffer, if the OpId is already present.
func (b *messageBuffer) Insert(st *OperationStatusTracker) bool {
	entry := &bufferEntry{id: st.ID(), st: st}
	if b.tree.Has(entry) {
		return false
	}
	b.tree.ReplaceOrInsert(entry)
	return true
}

// First returns the tracker with the smallest OpId, or nil if the buffer
// is empty.
func (b *messageBuffer) First() *OperationStatusTracker {
	item := b.tree.Min()
	if item == nil {
		return nil
	}
	return item.(*bufferEntry).st
}

// DeleteFirst removes the entry with the smallest OpId.
func (b *messageBuffer) DeleteFirst() {
	b.tree.DeleteMin()
}

// AscendGreater visits every entry with OpId strictly greater than id in
// ascending order, until fn returns false.
func (b *messageBuffer) AscendGreater(id opid.OpId, fn func(*OperationStatusTracker) bool) {
	b.tree.AscendGreaterOrEqual(&bufferEntry{id: id}, func(item btree.Item) bool {
		e := item.(*bufferEntry)
		if opid.Equal(e.id, id) {
			return true
		}
		return fn(e.st)
	})
}

// HasGreater reports whether any entry has OpId strictly greater than id.
func (b *messageBuffer) HasGreater(id opid.OpId) bool {
	found := false
	b.AscendGreater(id, func(*OperationStatusTracker) bool {
		found = true
		return false
	})
	return found
}

// Ascend visits every entry in ascending OpId order, until fn returns
// false.
func (b *messageBuffer) Ascend(fn func(*OperationStatusTracker) bool) {
	b.tree.Ascend(func(item btree.Item) bool {
		return fn(item.(*bufferEntry).st)
	})
}
