package consensus

import (
	"testing"

	"github.com/tabletsql/consensusqueue/opid"
)

func newTestTracker(term, index uint64) *OperationStatusTracker {
	return NewOperationStatusTracker(
		NewReplicateOp(opid.OpId{Term: term, Index: index}, OpWrite, 10))
}

func TestBufferIterationIsAscending(t *testing.T) {
	buf := newMessageBuffer()

	// Insert out of order.
	for _, id := range []opid.OpId{{Term: 2, Index: 1}, {Term: 1, Index: 2}, {Term: 1, Index: 1}, {Term: 1, Index: 3}} {
		if !buf.Insert(newTestTracker(id.Term, id.Index)) {
			t.Fatalf("Insert(%s) reported duplicate", id)
		}
	}

	var got []opid.OpId
	buf.Ascend(func(st *OperationStatusTracker) bool {
		got = append(got, st.ID())
		return true
	})

	want := []opid.OpId{{Term: 1, Index: 1}, {Term: 1, Index: 2}, {Term: 1, Index: 3}, {Term: 2, Index: 1}}
	if len(got) != len(want) {
		t.Fatalf("Ascend visited %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if !opid.Equal(got[i], want[i]) {
			t.Errorf("entry %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBufferInsertRejectsDuplicates(t *testing.T) {
	buf := newMessageBuffer()
	if !buf.Insert(newTestTracker(1, 1)) {
		t.Fatalf("first Insert reported duplicate")
	}
	if buf.Insert(newTestTracker(1, 1)) {
		t.Fatalf("duplicate Insert succeeded")
	}
	if buf.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", buf.Len())
	}
}

func TestBufferAscendGreaterIsStrict(t *testing.T) {
	buf := newMessageBuffer()
	buf.Insert(newTestTracker(1, 1))
	buf.Insert(newTestTracker(1, 2))
	buf.Insert(newTestTracker(1, 3))

	var got []opid.OpId
	buf.AscendGreater(opid.OpId{Term: 1, Index: 1}, func(st *OperationStatusTracker) bool {
		got = append(got, st.ID())
		return true
	})
	if len(got) != 2 || got[0].Index != 2 || got[1].Index != 3 {
		t.Fatalf("AscendGreater(1.1) visited %v, want [1.2 1.3]", got)
	}

	// A key below every entry visits them all.
	got = nil
	buf.AscendGreater(opid.OpId{Term: 0, Index: 7}, func(st *OperationStatusTracker) bool {
		got = append(got, st.ID())
		return true
	})
	if len(got) != 3 {
		t.Fatalf("AscendGreater(0.7) visited %d entries, want 3", len(got))
	}
}

func TestBufferHasGreater(t *testing.T) {
	buf := newMessageBuffer()
	buf.Insert(newTestTracker(1, 5))

	if !buf.HasGreater(opid.OpId{Term: 1, Index: 4}) {
		t.Errorf("HasGreater(1.4) = false, want true")
	}
	if buf.HasGreater(opid.OpId{Term: 1, Index: 5}) {
		t.Errorf("HasGreater(1.5) = true, want false")
	}
}

func TestBufferFirstAndDeleteFirst(t *testing.T) {
	buf := newMessageBuffer()
	if buf.First() != nil {
		t.Fatalf("First() on an empty buffer should be nil")
	}

	buf.Insert(newTestTracker(1, 2))
	buf.Insert(newTestTracker(1, 1))

	if got := buf.First().ID(); !opid.Equal(got, opid.OpId{Term: 1, Index: 1}) {
		t.Fatalf("First() = %s, want 1.1", got)
	}
	buf.DeleteFirst()
	if got := buf.First().ID(); !opid.Equal(got, opid.OpId{Term: 1, Index: 2}) {
		t.Fatalf("First() after DeleteFirst = %s, want 1.2", got)
	}
}

func TestBufferGet(t *testing.T) {
	buf := newMessageBuffer()
	st := newTestTracker(3, 7)
	buf.Insert(st)

	got, ok := buf.Get(opid.OpId{Term: 3, Index: 7})
	if !ok || got != st {
		t.Fatalf("Get(3.7) did not return the inserted tracker")
	}
	if _, ok := buf.Get(opid.OpId{Term: 3, Index: 8}); ok {
		t.Fatalf("Get(3.8) found a tracker that was never inserted")
	}
}
