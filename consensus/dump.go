package consensus

import (
	"fmt"
	"html"
	"io"
	"sort"
)

// DumpToStrings renders the queue's watermarks and messages, one line per
// entry, in ascending OpId order.
func (q *Queue) DumpToStrings() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dumpToStringsLocked()
}

func (q *Queue) dumpToStringsLocked() []string {
	lines := []string{"Watermarks:"}
	for _, peer := range q.sortedPeersLocked() {
		lines = append(lines, fmt.Sprintf("Peer: %s Watermark: %s", peer, q.watermarks[peer]))
	}

	lines = append(lines, "Messages:")
	counter := 0
	q.messages.Ascend(func(st *OperationStatusTracker) bool {
		op := st.Operation()
		id := op.ID()
		if committed, ok := op.CommittedOpID(); ok {
			lines = append(lines, fmt.Sprintf(
				"Message[%d] %d.%d : COMMIT. Committed OpId: %d.%d Type: %s, Size: %d, Status: %s",
				counter, id.Term, id.Index, committed.Term, committed.Index,
				op.Type(), op.ByteSize(), st))
		} else {
			lines = append(lines, fmt.Sprintf(
				"Message[%d] %d.%d : REPLICATE. Type: %s, Size: %d, Status: %s",
				counter, id.Term, id.Index, op.Type(), op.ByteSize(), st))
		}
		counter++
		return true
	})
	return lines
}

// DumpToHTML writes the queue's watermarks and messages to out as escaped
// HTML tables, for the operator debug surface.
func (q *Queue) DumpToHTML(out io.Writer) {
	q.mu.Lock()
	defer q.mu.Unlock()

	fmt.Fprintln(out, "<h3>Watermarks</h3>")
	fmt.Fprintln(out, "<table>")
	fmt.Fprintln(out, "  <tr><th>Peer</th><th>Watermark</th></tr>")
	for _, peer := range q.sortedPeersLocked() {
		fmt.Fprintf(out, "  <tr><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(peer), html.EscapeString(q.watermarks[peer].String()))
	}
	fmt.Fprintln(out, "</table>")

	fmt.Fprintln(out, "<h3>Messages:</h3>")
	fmt.Fprintln(out, "<table>")
	fmt.Fprintln(out, "<tr><th>Entry</th><th>OpId</th><th>Type</th><th>Size</th><th>Status</th></tr>")

	counter := 0
	q.messages.Ascend(func(st *OperationStatusTracker) bool {
		op := st.Operation()
		id := op.ID()
		if committed, ok := op.CommittedOpID(); ok {
			fmt.Fprintf(out, "<tr><th>%d</th><th>%d.%d</th><td>COMMIT %s %d.%d</td><td>%d</td><td>%s</td></tr>\n",
				counter, id.Term, id.Index, op.Type(), committed.Term, committed.Index,
				op.ByteSize(), html.EscapeString(st.String()))
		} else {
			fmt.Fprintf(out, "<tr><th>%d</th><th>%d.%d</th><td>REPLICATE %s</td><td>%d</td><td>%s</td></tr>\n",
				counter, id.Term, id.Index, op.Type(), op.ByteSize(), html.EscapeString(st.String()))
		}
		counter++
		return true
	})
	fmt.Fprint(out, "</table>")
}

func (q *Queue) sortedPeersLocked() []string {
	peers := make([]string, 0, len(q.watermarks))
	for peer := range q.watermarks {
		peers = append(peers, peer)
	}
	sort.Strings(peers)
	return peers
}
