package consensus

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tabletsql/consensusqueue/opid"
)

// OperationStatusTracker wraps exactly one Operation together with the set
// of peers that have acknowledged it. Trackers are shared between the
// queue's message buffer and any caller holding one from
// GetOperationStatus; the operation payload inside is owned by the
// tracker alone. Trackers never reference the queue back.
//
// Replication and commit acknowledgements are kept in two disjoint sets;
// AckPeer dispatches by the held operation's kind, so only one of the two
// ever grows for a given tracker.
type OperationStatusTracker struct {
	op Operation

	mu            sync.Mutex
	replicateAcks map[string]struct{}
	commitAcks    map[string]struct{}

	// done and allDone latch: once an operation has been acknowledged by
	// a majority (or by all tracked peers), untracking one of those peers
	// later must not retroactively strip its contribution.
	done    bool
	allDone bool
}

// NewOperationStatusTracker returns a tracker for op with empty ack sets.
func NewOperationStatusTracker(op Operation) *OperationStatusTracker {
	return &OperationStatusTracker{
		op:            op,
		replicateAcks: make(map[string]struct{}),
		commitAcks:    make(map[string]struct{}),
	}
}

// ID returns the held operation's OpId.
func (t *OperationStatusTracker) ID() opid.OpId { return t.op.ID() }

// Operation returns the held operation. The operation remains owned by
// the tracker; callers must not retain it past the tracker's lifetime.
func (t *OperationStatusTracker) Operation() Operation { return t.op }

// AckPeer records an acknowledgement from peerID. The operation's kind
// selects which set the ack lands in. Re-acking by the same peer is a
// no-op.
func (t *OperationStatusTracker) AckPeer(peerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.op.Kind() == KindCommit {
		t.commitAcks[peerID] = struct{}{}
	} else {
		t.replicateAcks[peerID] = struct{}{}
	}
}

// NumAcks returns how many distinct peers have acknowledged the operation
// for its kind.
func (t *OperationStatusTracker) NumAcks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.numAcksLocked()
}

func (t *OperationStatusTracker) numAcksLocked() int {
	if t.op.Kind() == KindCommit {
		return len(t.commitAcks)
	}
	return len(t.replicateAcks)
}

// IsDone reports whether at least a simple majority of trackedPeers has
// acknowledged the operation, or the operation is already all done. Once
// true it stays true.
func (t *OperationStatusTracker) IsDone(trackedPeers int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.allDone {
		return true
	}
	if t.numAcksLocked() >= trackedPeers/2+1 {
		t.done = true
	}
	return t.done
}

// IsAllDone reports whether every one of trackedPeers has acknowledged
// the operation. Once true it stays true.
func (t *OperationStatusTracker) IsAllDone(trackedPeers int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.allDone {
		return true
	}
	if t.numAcksLocked() >= trackedPeers {
		t.allDone = true
	}
	return t.allDone
}

// String renders the tracker's ack state for debug dumps.
func (t *OperationStatusTracker) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.op.Kind() == KindCommit {
		return fmt.Sprintf("commit acks: %s", peerList(t.commitAcks))
	}
	return fmt.Sprintf("replicate acks: %s", peerList(t.replicateAcks))
}

func peerList(peers map[string]struct{}) string {
	ids := make([]string, 0, len(peers))
	for id := range peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return "[" + strings.Join(ids, " ") + "]"
}
