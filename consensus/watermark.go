package consensus

import (
	"fmt"

	"github.com/tabletsql/consensusqueue/opid"
)

// Watermark is one tracked peer's acknowledgement state: how far the peer
// has received, replicated, and safely committed the leader's operations.
// Received never trails Replicated or SafeCommit.
type Watermark struct {
	Received   opid.OpId
	Replicated opid.OpId
	SafeCommit opid.OpId
}

// NewWatermark returns a watermark with all three OpIds set to initial.
func NewWatermark(initial opid.OpId) *Watermark {
	return &Watermark{Received: initial, Replicated: initial, SafeCommit: initial}
}

func (w *Watermark) String() string {
	return fmt.Sprintf("received: %s replicated: %s safe_commit: %s",
		w.Received, w.Replicated, w.SafeCommit)
}
