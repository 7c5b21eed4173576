package consensus

// MiB converts a mebibyte count to bytes.
func MiB(n int64) int64 { return n << 20 }

// DefaultParentTrackerID is the identifier of the process-wide parent
// memory tracker all consensus queues charge into.
const DefaultParentTrackerID = "consensus_queue_parent"

// Config holds a queue's byte limits and identifiers. All sizes are in
// bytes.
type Config struct {
	// LocalSoft is the per-queue soft limit. Exceeding it triggers
	// trimming of the fully-acknowledged head of the queue.
	LocalSoft int64

	// LocalHard is the per-queue hard limit. A REPLICATE operation that
	// would exceed it after best-effort trimming is refused.
	LocalHard int64

	// GlobalSoft is the process-wide soft limit, applied to the parent
	// tracker shared by every queue.
	GlobalSoft int64

	// GlobalHard is the process-wide hard limit.
	GlobalHard int64

	// MaxBatchSizeBytes caps the serialized size of one outbound
	// request. A single operation larger than the cap is still sent
	// alone, so the queue always makes forward progress.
	MaxBatchSizeBytes int64

	// DumpOnFull logs a full queue dump when an append is refused
	// because the queue is full.
	DumpOnFull bool

	// ParentTrackerID keys the process-wide parent memory tracker.
	ParentTrackerID string

	// MetricPrefix scopes the queue's gauges and names its child memory
	// tracker. Typically the tablet ID.
	MetricPrefix string
}

// DefaultConfig returns the stock limits: 128/256 MiB local soft/hard,
// 1024 MiB global soft and hard, and a 1 MiB batch cap.
func DefaultConfig() Config {
	return Config{
		LocalSoft:         MiB(128),
		LocalHard:         MiB(256),
		GlobalSoft:        MiB(1024),
		GlobalHard:        MiB(1024),
		MaxBatchSizeBytes: MiB(1),
		ParentTrackerID:   DefaultParentTrackerID,
	}
}
