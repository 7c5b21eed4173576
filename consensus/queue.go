package consensus

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/tabletsql/consensusqueue/consensus/metrics"
	"github.com/tabletsql/consensusqueue/memtracker"
	"github.com/tabletsql/consensusqueue/opid"
	"github.com/tabletsql/consensusqueue/qerrors"
)

const (
	stateOpen int32 = iota
	stateClosed
)

// queueMetrics keeps the five gauge values as atomic counters so that
// String can render a snapshot cheaply, and mirrors every change into the
// Prometheus gauges. All mutations happen under the queue lock, so any
// snapshot taken under that lock is internally consistent.
type queueMetrics struct {
	totalNumOps        atomic.Int64
	numAllDoneOps      atomic.Int64
	numMajorityDoneOps atomic.Int64
	numInProgressOps   atomic.Int64
	queueSizeBytes     atomic.Int64

	prom *metrics.QueueMetrics
}

func newQueueMetrics(label string) *queueMetrics {
	return &queueMetrics{prom: metrics.NewQueueMetrics(label)}
}

func (m *queueMetrics) addTotal(d int64) {
	m.prom.TotalNumOps.Set(float64(m.totalNumOps.Add(d)))
}

func (m *queueMetrics) addAllDone(d int64) {
	m.prom.NumAllDoneOps.Set(float64(m.numAllDoneOps.Add(d)))
}

func (m *queueMetrics) addMajorityDone(d int64) {
	m.prom.NumMajorityDoneOps.Set(float64(m.numMajorityDoneOps.Add(d)))
}

func (m *queueMetrics) addInProgress(d int64) {
	m.prom.NumInProgressOps.Set(float64(m.numInProgressOps.Add(d)))
}

func (m *queueMetrics) addQueueSize(d int64) {
	m.prom.QueueSizeBytes.Set(float64(m.queueSizeBytes.Add(d)))
}

// Stats is a snapshot of a queue's gauge values.
type Stats struct {
	TotalNumOps        int64
	NumAllDoneOps      int64
	NumMajorityDoneOps int64
	NumInProgressOps   int64
	QueueSizeBytes     int64
}

// Queue is the leader-side peer message queue for one tablet. The leader
// appends status trackers, the transport assembles per-peer batches via
// RequestForPeer and feeds reply watermarks back via ResponseFromPeer,
// and the queue reclaims memory from the oldest fully-acknowledged prefix
// when a soft limit is exceeded.
//
// A single per-queue lock serializes every public method that touches the
// message buffer, the watermarks map, the tracker charge/release paths,
// or the state field. Critical sections are short and hold the lock
// across no I/O.
type Queue struct {
	logger *zap.Logger
	cfg    Config

	// parentTracker aggregates every queue's consumption process-wide;
	// tracker is this queue's child and forwards to the parent.
	parentTracker *memtracker.Tracker
	tracker       *memtracker.Tracker

	metrics *queueMetrics

	mu         sync.Mutex
	state      atomic.Int32
	messages   *messageBuffer
	watermarks map[string]*Watermark
}

// NewQueue constructs an open queue. The parent tracker is located or
// created in reg under cfg.ParentTrackerID with cfg.GlobalSoft; the
// queue's child tracker is registered under
// "{ParentTrackerID}-{MetricPrefix}" with cfg.LocalSoft.
func NewQueue(logger *zap.Logger, reg *memtracker.Registry, cfg Config) *Queue {
	parent := reg.FindOrCreate(cfg.ParentTrackerID, cfg.GlobalSoft, nil)
	child := reg.FindOrCreate(
		fmt.Sprintf("%s-%s", cfg.ParentTrackerID, cfg.MetricPrefix),
		cfg.LocalSoft, parent)

	return &Queue{
		logger:        logger,
		cfg:           cfg,
		parentTracker: parent,
		tracker:       child,
		metrics:       newQueueMetrics(cfg.MetricPrefix),
		messages:      newMessageBuffer(),
		watermarks:    make(map[string]*Watermark),
	}
}

// TrackPeer begins tracking uuid, installing a watermark record whose
// three OpIds all equal initial. Tracking an already-tracked peer fails.
func (q *Queue) TrackPeer(uuid string, initial opid.OpId) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.assertOpenLocked("TrackPeer")

	if _, ok := q.watermarks[uuid]; ok {
		return qerrors.New(
			qerrors.WithCode(qerrors.EConflict),
			qerrors.WithOp("consensus.TrackPeer"),
			qerrors.WithMsgf("peer %q is already tracked", uuid),
		)
	}
	q.watermarks[uuid] = NewWatermark(initial)
	return nil
}

// UntrackPeer stops tracking uuid. Untracking an unknown peer is a
// no-op. The peer's prior acks remain recorded on the status trackers.
func (q *Queue) UntrackPeer(uuid string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.watermarks, uuid)
}

// AppendOperation appends st to the queue, trimming the
// fully-acknowledged head first if a soft limit is exceeded. A REPLICATE
// operation that cannot be admitted without violating a hard limit is
// refused with a service-unavailable error; COMMIT operations are always
// admitted so commit progress never stalls behind queue pressure.
func (q *Queue) AppendOperation(st *OperationStatusTracker) error {
	dump, err := q.append(st)
	if len(dump) > 0 {
		q.logger.Info("Queue full, dumping state")
		for _, line := range dump {
			q.logger.Info(line)
		}
	}
	return err
}

func (q *Queue) append(st *OperationStatusTracker) (dump []string, err error) {
	op := st.Operation()
	if op.Kind() != KindReplicate && op.Kind() != KindCommit {
		return nil, qerrors.New(
			qerrors.WithCode(qerrors.EInvalid),
			qerrors.WithOp("consensus.AppendOperation"),
			qerrors.WithMsgf("operation %s must be a replicate or a commit", op.ID()),
		)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.assertOpenLocked("AppendOperation")

	if q.tracker.AnyLimitExceeded() {
		if err := q.trimBufferForMessageLocked(op); err != nil {
			// The dump is rendered under the lock but logged by the
			// caller after it is released.
			if q.cfg.DumpOnFull {
				dump = q.dumpToStringsLocked()
			}
			return dump, err
		}
	}

	// Either no soft limit was exceeded, trimming freed enough, hard
	// limits were not violated, or the operation is a COMMIT.
	size := int64(op.ByteSize())
	q.metrics.addQueueSize(size)
	q.tracker.Consume(size)

	if !q.messages.Insert(st) {
		panic(fmt.Sprintf("consensus: duplicate OpId %s appended to queue", op.ID()))
	}
	q.metrics.addTotal(1)

	// Some operations might already be done on arrival, e.g. when
	// replicating only to learners.
	tracked := len(q.watermarks)
	switch {
	case st.IsAllDone(tracked):
		q.metrics.addAllDone(1)
	case st.IsDone(tracked):
		q.metrics.addMajorityDone(1)
	default:
		q.metrics.addInProgress(1)
	}
	return nil, nil
}

// trimBufferForMessageLocked frees room for an incoming operation by
// erasing fully-acknowledged entries from the head of the buffer, oldest
// first, so no gap is ever created. When nothing more can be trimmed, the
// operation is still admitted if hard limits permit or it is a COMMIT.
func (q *Queue) trimBufferForMessageLocked(op Operation) error {
	bytes := int64(op.ByteSize())
	tracked := len(q.watermarks)

	for bytes > q.tracker.SpareCapacity() {
		// The buffer may be empty while the global limit is still
		// exceeded by the other queues' consumption.
		head := q.messages.First()
		if head == nil || !head.IsAllDone(tracked) {
			if q.checkHardLimitsNotViolatedLocked(bytes) || op.Kind() == KindCommit {
				return nil
			}
			return qerrors.New(
				qerrors.WithCode(qerrors.EUnavailable),
				qerrors.WithOp("consensus.AppendOperation"),
				qerrors.WithMsg("cannot append replicate message, queue is full"),
			)
		}
		decrement := int64(head.Operation().ByteSize())
		q.metrics.addTotal(-1)
		q.metrics.addAllDone(-1)
		q.metrics.addQueueSize(-decrement)
		q.tracker.Release(decrement)
		q.messages.DeleteFirst()
	}
	return nil
}

// checkHardLimitsNotViolatedLocked reports whether admitting bytes keeps
// both the local and the global consumption at or under their hard
// limits. The parent consumption read may be stale with respect to other
// queues; the soft/hard separation tolerates that.
func (q *Queue) checkHardLimitsNotViolatedLocked(bytes int64) bool {
	return bytes+q.tracker.Consumption() <= q.cfg.LocalHard &&
		bytes+q.parentTracker.Consumption() <= q.cfg.GlobalHard
}

// RequestForPeer fills req with as many operations past uuid's received
// watermark as fit under MaxBatchSizeBytes, in ascending OpId order. A
// single operation over the cap is still attached alone, so the batch
// always makes forward progress. The attached operations stay owned by
// the queue.
func (q *Queue) RequestForPeer(uuid string, req *Request) error {
	// Clear the request without releasing the payloads, as they may be
	// in use by other peers.
	req.Reset()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.assertOpenLocked("RequestForPeer")

	wm, ok := q.watermarks[uuid]
	if !ok {
		return qerrors.New(
			qerrors.WithCode(qerrors.ENotFound),
			qerrors.WithOp("consensus.RequestForPeer"),
			qerrors.WithMsgf("peer %q is not tracked", uuid),
		)
	}

	q.messages.AscendGreater(wm.Received, func(st *OperationStatusTracker) bool {
		req.add(st.Operation())
		if req.ByteSize() > q.cfg.MaxBatchSizeBytes {
			if req.NumOps() > 1 {
				req.removeLast()
			}
			return false
		}
		return true
	})
	return nil
}

// ResponseFromPeer applies a peer's reply watermark: every entry newly
// covered by the reply gains an ack from uuid, the done/all-done gauges
// move accordingly, and the peer's watermark record is overwritten. It
// returns whether entries beyond the new received watermark remain
// pending for this peer. A response from an untracked peer, or after
// Close, is disregarded with a warning.
func (q *Queue) ResponseFromPeer(uuid string, next Watermark) (morePending bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	current, ok := q.watermarks[uuid]
	if q.state.Load() == stateClosed || !ok {
		q.logger.Warn("Queue is closed or peer was untracked, disregarding peer response",
			zap.String("peer", uuid))
		return false
	}

	if opid.Less(next.Received, current.Received) ||
		opid.Less(next.Replicated, current.Replicated) ||
		opid.Less(next.SafeCommit, current.SafeCommit) {
		// Watermarks are expected to only advance; apply it anyway, the
		// message came from a remote peer and must not crash the leader.
		q.logger.Warn("Peer watermark regressed",
			zap.String("peer", uuid),
			zap.Stringer("current", current),
			zap.Stringer("next", &next))
	}

	// Processing starts at the lowest watermark, which might be the
	// replicated or the safe-commit one: commits are acked
	// asynchronously and may trail replication.
	lowest := opid.Min(current.Replicated, current.SafeCommit)
	tracked := len(q.watermarks)

	q.messages.AscendGreater(lowest, func(st *OperationStatusTracker) bool {
		id := st.ID()
		if opid.Less(next.Received, id) {
			return false
		}
		wasDone := st.IsDone(tracked)
		wasAllDone := st.IsAllDone(tracked)

		op := st.Operation()
		switch op.Kind() {
		case KindCommit:
			if opid.Less(current.SafeCommit, id) && opid.LessOrEqual(id, next.SafeCommit) {
				st.AckPeer(uuid)
			}
		case KindReplicate:
			if opid.Less(current.Replicated, id) && opid.LessOrEqual(id, next.Replicated) {
				st.AckPeer(uuid)
			}
		}

		if st.IsAllDone(tracked) && !wasAllDone {
			q.metrics.addAllDone(1)
			q.metrics.addMajorityDone(-1)
		}
		if st.IsDone(tracked) && !wasDone {
			q.metrics.addMajorityDone(1)
			q.metrics.addInProgress(-1)
		}
		return true
	})

	*current = next
	return q.messages.HasGreater(next.Received)
}

// GetOperationStatus returns the status tracker stored under id. The
// returned tracker is shared with the queue and stays valid past Close.
func (q *Queue) GetOperationStatus(id opid.OpId) (*OperationStatusTracker, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, ok := q.messages.Get(id)
	if !ok {
		return nil, qerrors.New(
			qerrors.WithCode(qerrors.ENotFound),
			qerrors.WithOp("consensus.GetOperationStatus"),
			qerrors.WithMsgf("operation %s is not in the queue", id),
		)
	}
	return st, nil
}

// Close transitions the queue to closed and drops every watermark
// record. Status trackers remain alive for any outside holders. Close is
// idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state.Load() == stateClosed {
		return
	}
	q.state.Store(stateClosed)
	q.watermarks = make(map[string]*Watermark)
}

// QueuedBytes returns the child tracker's consumption: the total byte
// size of the operations currently buffered by this queue.
func (q *Queue) QueuedBytes() int64 {
	return q.tracker.Consumption()
}

// Stats returns a snapshot of the queue's gauges. Taken under the queue
// lock so the bucket counts partition the total.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.statsLocked()
}

func (q *Queue) statsLocked() Stats {
	return Stats{
		TotalNumOps:        q.metrics.totalNumOps.Load(),
		NumAllDoneOps:      q.metrics.numAllDoneOps.Load(),
		NumMajorityDoneOps: q.metrics.numMajorityDoneOps.Load(),
		NumInProgressOps:   q.metrics.numInProgressOps.Load(),
		QueueSizeBytes:     q.metrics.queueSizeBytes.Load(),
	}
}

// String renders a consistent snapshot of the queue's metrics.
func (q *Queue) String() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.statsLocked()
	return fmt.Sprintf("Consensus queue metrics: Total Ops: %d, All Done Ops: %d, "+
		"Only Majority Done Ops: %d, In Progress Ops: %d, Queue Size (bytes): %d/%d",
		s.TotalNumOps, s.NumAllDoneOps, s.NumMajorityDoneOps, s.NumInProgressOps,
		s.QueueSizeBytes, q.cfg.LocalHard)
}

func (q *Queue) assertOpenLocked(op string) {
	if q.state.Load() != stateOpen {
		panic(fmt.Sprintf("consensus: %s called on a closed queue", op))
	}
}
