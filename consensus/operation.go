// Package consensus implements the leader-side replication queue of a
// Raft-style consensus implementation: the buffer through which a tablet
// leader streams ordered REPLICATE and COMMIT operations to each of its
// followers, tracking per-peer acknowledgement progress and enforcing
// memory bounds at both a per-tablet and a process-wide scope.
package consensus

import "github.com/tabletsql/consensusqueue/opid"

//go:generate go run github.com/golang/mock/mockgen -package mock -destination mock/operation.go github.com/tabletsql/consensusqueue/consensus Operation

// OpKind distinguishes the two kinds of operation the queue accepts.
type OpKind int

const (
	// KindUnknown is the zero value; the queue rejects it.
	KindUnknown OpKind = iota
	// KindReplicate is an operation the leader proposes to replicate to
	// followers.
	KindReplicate
	// KindCommit is a bookkeeping operation recording commitment of a
	// prior REPLICATE.
	KindCommit
)

func (k OpKind) String() string {
	switch k {
	case KindReplicate:
		return "REPLICATE"
	case KindCommit:
		return "COMMIT"
	default:
		return "UNKNOWN"
	}
}

// OpType is the type of consensus operation being replicated or committed.
// It carries no behavioral weight in the queue; it is rendered in debug
// dumps only.
type OpType int

const (
	OpNoOp OpType = iota
	OpWrite
	OpConfigChange
)

func (t OpType) String() string {
	switch t {
	case OpWrite:
		return "WRITE_OP"
	case OpConfigChange:
		return "CHANGE_CONFIG_OP"
	default:
		return "NO_OP"
	}
}

// Operation is the opaque payload the queue buffers. Implementations must
// report a byte size that is stable for the operation's lifetime in the
// queue; the queue charges and releases memory by this number and the two
// must agree.
type Operation interface {
	// ID returns the operation's identifier.
	ID() opid.OpId

	// Kind returns whether this is a REPLICATE or a COMMIT operation.
	Kind() OpKind

	// CommittedOpID returns the OpId of the REPLICATE operation this
	// COMMIT commits. The second return is false unless Kind is
	// KindCommit.
	CommittedOpID() (opid.OpId, bool)

	// Type returns the type of the underlying consensus operation.
	Type() OpType

	// ByteSize returns the operation's steady-state in-memory cost in
	// bytes.
	ByteSize() uint64
}

// ReplicateOp is an Operation the leader proposes to replicate to
// followers.
type ReplicateOp struct {
	id       opid.OpId
	opType   OpType
	byteSize uint64
}

// NewReplicateOp returns a REPLICATE operation with the given identifier,
// operation type, and byte cost.
func NewReplicateOp(id opid.OpId, opType OpType, byteSize uint64) *ReplicateOp {
	return &ReplicateOp{id: id, opType: opType, byteSize: byteSize}
}

func (o *ReplicateOp) ID() opid.OpId                    { return o.id }
func (o *ReplicateOp) Kind() OpKind                     { return KindReplicate }
func (o *ReplicateOp) CommittedOpID() (opid.OpId, bool) { return opid.OpId{}, false }
func (o *ReplicateOp) Type() OpType                     { return o.opType }
func (o *ReplicateOp) ByteSize() uint64                 { return o.byteSize }

// CommitOp is an Operation recording that a prior REPLICATE operation has
// been committed.
type CommitOp struct {
	id        opid.OpId
	committed opid.OpId
	opType    OpType
	byteSize  uint64
}

// NewCommitOp returns a COMMIT operation with the given identifier,
// committed OpId reference, operation type, and byte cost.
func NewCommitOp(id, committed opid.OpId, opType OpType, byteSize uint64) *CommitOp {
	return &CommitOp{id: id, committed: committed, opType: opType, byteSize: byteSize}
}

func (o *CommitOp) ID() opid.OpId                    { return o.id }
func (o *CommitOp) Kind() OpKind                     { return KindCommit }
func (o *CommitOp) CommittedOpID() (opid.OpId, bool) { return o.committed, true }
func (o *CommitOp) Type() OpType                     { return o.opType }
func (o *CommitOp) ByteSize() uint64                 { return o.byteSize }
