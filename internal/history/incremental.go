package history

import (
	"log/slog"

	"github.com/kadirpekel/cocode/internal/protocol"
)

// LastResponse records the provider response id and the history length
// at the moment the stream completed, so a later turn can compute the
// minimal suffix to resend when the adapter supports
// previous_response_id chaining.
type LastResponse struct {
	ResponseID string
	HistoryLen int
}

// BuildTurnInput returns the items to send for the next turn: if
// incremental mode applies and last is present and consistent with the
// current history length, it returns history[last.HistoryLen:] followed
// by pending. Otherwise (no incremental support, no last response, or a
// detected rollback where last.HistoryLen exceeds the current length)
// it returns the full history view plus pending, logging on the
// rollback case.
func BuildTurnInput(supportsIncremental bool, last *LastResponse, fullHistory, pending []protocol.ResponseItem) (items []protocol.ResponseItem, usedIncremental bool) {
	if !supportsIncremental || last == nil {
		return append(append([]protocol.ResponseItem{}, fullHistory...), pending...), false
	}

	if last.HistoryLen > len(fullHistory) {
		slog.Error("incremental input rollback detected, falling back to full history",
			"last_history_len", last.HistoryLen, "current_history_len", len(fullHistory))
		return append(append([]protocol.ResponseItem{}, fullHistory...), pending...), false
	}

	suffix := fullHistory[last.HistoryLen:]
	out := make([]protocol.ResponseItem, 0, len(suffix)+len(pending))
	out = append(out, suffix...)
	out = append(out, pending...)
	return out, true
}
