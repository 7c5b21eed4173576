package consensus_test

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/tabletsql/consensusqueue/consensus"
	"github.com/tabletsql/consensusqueue/consensus/mock"
	"github.com/tabletsql/consensusqueue/opid"
)

func TestAckPeerIsIdempotent(t *testing.T) {
	st := consensus.NewOperationStatusTracker(
		consensus.NewReplicateOp(opid.OpId{Term: 1, Index: 1}, consensus.OpWrite, 100))

	st.AckPeer("peer-a")
	st.AckPeer("peer-a")
	st.AckPeer("peer-a")

	if got := st.NumAcks(); got != 1 {
		t.Fatalf("NumAcks() = %d after re-acking the same peer, want 1", got)
	}
}

func TestAckPeerDispatchesByKind(t *testing.T) {
	replicate := consensus.NewOperationStatusTracker(
		consensus.NewReplicateOp(opid.OpId{Term: 1, Index: 1}, consensus.OpWrite, 100))
	commit := consensus.NewOperationStatusTracker(
		consensus.NewCommitOp(opid.OpId{Term: 1, Index: 2}, opid.OpId{Term: 1, Index: 1}, consensus.OpWrite, 10))

	replicate.AckPeer("peer-a")
	commit.AckPeer("peer-b")

	if got := replicate.String(); got != "replicate acks: [peer-a]" {
		t.Errorf("replicate tracker String() = %q", got)
	}
	if got := commit.String(); got != "commit acks: [peer-b]" {
		t.Errorf("commit tracker String() = %q", got)
	}
}

func TestIsDoneMajorityMath(t *testing.T) {
	tests := []struct {
		name         string
		trackedPeers int
		acks         int
		wantDone     bool
		wantAllDone  bool
	}{
		{name: "no acks of three", trackedPeers: 3, acks: 0, wantDone: false, wantAllDone: false},
		{name: "minority of three", trackedPeers: 3, acks: 1, wantDone: false, wantAllDone: false},
		{name: "majority of three", trackedPeers: 3, acks: 2, wantDone: true, wantAllDone: false},
		{name: "all of three", trackedPeers: 3, acks: 3, wantDone: true, wantAllDone: true},
		{name: "sole peer", trackedPeers: 1, acks: 1, wantDone: true, wantAllDone: true},
		{name: "majority of four", trackedPeers: 4, acks: 3, wantDone: true, wantAllDone: false},
		{name: "half of four is not a majority", trackedPeers: 4, acks: 2, wantDone: false, wantAllDone: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := consensus.NewOperationStatusTracker(
				consensus.NewReplicateOp(opid.OpId{Term: 1, Index: 1}, consensus.OpWrite, 100))
			for i := 0; i < tt.acks; i++ {
				st.AckPeer(string(rune('a' + i)))
			}
			if got := st.IsDone(tt.trackedPeers); got != tt.wantDone {
				t.Errorf("IsDone(%d) = %v, want %v", tt.trackedPeers, got, tt.wantDone)
			}
			if got := st.IsAllDone(tt.trackedPeers); got != tt.wantAllDone {
				t.Errorf("IsAllDone(%d) = %v, want %v", tt.trackedPeers, got, tt.wantAllDone)
			}
		})
	}
}

func TestAllDoneLatchesAcrossPeerChanges(t *testing.T) {
	st := consensus.NewOperationStatusTracker(
		consensus.NewReplicateOp(opid.OpId{Term: 1, Index: 1}, consensus.OpWrite, 100))
	st.AckPeer("peer-a")

	if !st.IsAllDone(1) {
		t.Fatalf("expected IsAllDone(1) with one ack")
	}
	// A peer tracked after the fact must not flip the answer back.
	if !st.IsAllDone(2) {
		t.Errorf("IsAllDone regressed after the tracked peer count grew")
	}
	if !st.IsDone(5) {
		t.Errorf("IsDone regressed after the tracked peer count grew")
	}
}

func TestTrackerAcksMockedOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	op := mock.NewMockOperation(ctrl)
	op.EXPECT().Kind().Return(consensus.KindCommit).AnyTimes()
	op.EXPECT().ID().Return(opid.OpId{Term: 4, Index: 2}).AnyTimes()

	st := consensus.NewOperationStatusTracker(op)
	st.AckPeer("peer-a")
	st.AckPeer("peer-b")

	if got := st.NumAcks(); got != 2 {
		t.Fatalf("NumAcks() = %d, want 2", got)
	}
	if got := st.ID(); !opid.Equal(got, opid.OpId{Term: 4, Index: 2}) {
		t.Fatalf("ID() = %s, want 4.2", got)
	}
	if got := st.String(); got != "commit acks: [peer-a peer-b]" {
		t.Errorf("String() = %q", got)
	}
}
