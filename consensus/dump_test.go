package consensus_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabletsql/consensusqueue/consensus"
	"github.com/tabletsql/consensusqueue/opid"
)

func TestDumpToStrings(t *testing.T) {
	q := newTestQueue(t, consensus.DefaultConfig())

	require.NoError(t, q.TrackPeer("peer-a", opid.OpId{}))
	require.NoError(t, q.AppendOperation(replicate(1, 1, 100)))
	require.NoError(t, q.AppendOperation(commit(1, 2, opid.OpId{Term: 1, Index: 1}, 10)))

	q.ResponseFromPeer("peer-a", consensus.Watermark{
		Received:   opid.OpId{Term: 1, Index: 2},
		Replicated: opid.OpId{Term: 1, Index: 1},
		SafeCommit: opid.OpId{},
	})

	lines := q.DumpToStrings()
	require.Equal(t, []string{
		"Watermarks:",
		"Peer: peer-a Watermark: received: 1.2 replicated: 1.1 safe_commit: 0.0",
		"Messages:",
		"Message[0] 1.1 : REPLICATE. Type: WRITE_OP, Size: 100, Status: replicate acks: [peer-a]",
		"Message[1] 1.2 : COMMIT. Committed OpId: 1.1 Type: WRITE_OP, Size: 10, Status: commit acks: []",
	}, lines)
}

func TestDumpToHTMLEscapesCells(t *testing.T) {
	q := newTestQueue(t, consensus.DefaultConfig())

	require.NoError(t, q.TrackPeer("peer-<a>", opid.OpId{}))
	require.NoError(t, q.AppendOperation(replicate(1, 1, 100)))

	var sb strings.Builder
	q.DumpToHTML(&sb)
	out := sb.String()

	require.Contains(t, out, "<h3>Watermarks</h3>")
	require.Contains(t, out, "<h3>Messages:</h3>")
	require.Contains(t, out, "peer-&lt;a&gt;")
	require.NotContains(t, out, "peer-<a>")
	require.Contains(t, out, "<td>REPLICATE WRITE_OP</td>")
}
