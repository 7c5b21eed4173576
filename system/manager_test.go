package system_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tabletsql/consensusqueue/consensus"
	"github.com/tabletsql/consensusqueue/opid"
	"github.com/tabletsql/consensusqueue/qerrors"
	"github.com/tabletsql/consensusqueue/system"
)

func TestOpenQueueRejectsDuplicateTablet(t *testing.T) {
	m := system.NewManager(zaptest.NewLogger(t))

	_, err := m.OpenQueue("tablet-1", consensus.DefaultConfig())
	require.NoError(t, err)

	_, err = m.OpenQueue("tablet-1", consensus.DefaultConfig())
	require.Error(t, err)
	require.Equal(t, qerrors.EConflict, qerrors.Code(err))
}

func TestQueueLookup(t *testing.T) {
	m := system.NewManager(zaptest.NewLogger(t))

	created, err := m.OpenQueue("tablet-1", consensus.DefaultConfig())
	require.NoError(t, err)

	got, ok := m.Queue("tablet-1")
	require.True(t, ok)
	require.Same(t, created, got)

	_, ok = m.Queue("tablet-2")
	require.False(t, ok)
}

func TestCloseQueue(t *testing.T) {
	m := system.NewManager(zaptest.NewLogger(t))

	_, err := m.OpenQueue("tablet-1", consensus.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, m.CloseQueue("tablet-1"))
	_, ok := m.Queue("tablet-1")
	require.False(t, ok)

	err = m.CloseQueue("tablet-1")
	require.Error(t, err)
	require.Equal(t, qerrors.ENotFound, qerrors.Code(err))
}

func TestQueuesShareParentConsumption(t *testing.T) {
	m := system.NewManager(zaptest.NewLogger(t))

	qa, err := m.OpenQueue("tablet-a", consensus.DefaultConfig())
	require.NoError(t, err)
	qb, err := m.OpenQueue("tablet-b", consensus.DefaultConfig())
	require.NoError(t, err)

	appendReplicate := func(q *consensus.Queue, index, size uint64) {
		t.Helper()
		st := consensus.NewOperationStatusTracker(
			consensus.NewReplicateOp(opid.OpId{Term: 1, Index: index}, consensus.OpWrite, size))
		require.NoError(t, q.AppendOperation(st))
	}

	appendReplicate(qa, 1, 300)
	appendReplicate(qb, 1, 500)

	require.Equal(t, int64(800), m.TotalConsumption())
	require.Equal(t, int64(300), qa.QueuedBytes())
	require.Equal(t, int64(500), qb.QueuedBytes())
}

func TestCloseAll(t *testing.T) {
	m := system.NewManager(zaptest.NewLogger(t))

	for _, id := range []string{"tablet-a", "tablet-b", "tablet-c"} {
		q, err := m.OpenQueue(id, consensus.DefaultConfig())
		require.NoError(t, err)
		require.NoError(t, q.TrackPeer("peer-1", opid.OpId{}))
	}

	require.NoError(t, m.CloseAll(context.Background()))

	for _, id := range []string{"tablet-a", "tablet-b", "tablet-c"} {
		_, ok := m.Queue(id)
		require.False(t, ok, "queue %s still registered after CloseAll", id)
	}

}

func TestTotalConsumptionBeforeFirstQueue(t *testing.T) {
	m := system.NewManager(zaptest.NewLogger(t))
	require.Zero(t, m.TotalConsumption())
}
