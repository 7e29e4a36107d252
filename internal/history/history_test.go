package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/protocol"
)

func TestValidateMessages_Empty(t *testing.T) {
	err := ValidateMessages(nil)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrEmptyMessages, ve.Kind)
}

func TestValidateMessages_ConsecutiveAssistant_IsInvalidAlternation(t *testing.T) {
	items := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("hi")),
		protocol.AssistantMessage(protocol.OutputText("a")),
		protocol.AssistantMessage(protocol.OutputText("b")),
	}
	err := ValidateMessages(items)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrInvalidAlternation, ve.Kind)
	assert.Equal(t, 2, ve.Index)
}

func TestValidateMessages_OrphanToolResult(t *testing.T) {
	items := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("hi")),
		protocol.FunctionCallOutput("call_1", "result", true),
	}
	err := ValidateMessages(items)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrOrphanToolResult, ve.Kind)
	assert.Equal(t, "call_1", ve.ToolUseID)
}

func TestValidateMessages_MatchedToolPair_IsValid(t *testing.T) {
	items := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("run grep")),
		protocol.FunctionCall("grep", `{"q":"A"}`, "call_1"),
		protocol.FunctionCallOutput("call_1", "matches", true),
		protocol.AssistantMessage(protocol.OutputText("done")),
	}
	assert.NoError(t, ValidateMessages(items))
}

func TestValidateMessages_SystemNotFirst(t *testing.T) {
	items := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("hi")),
		protocol.SystemMessage(protocol.InputText("late system")),
	}
	err := ValidateMessages(items)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrSystemNotFirst, ve.Kind)
	assert.Equal(t, 1, ve.Index)
}

func TestNormalizeForAPI_DropsTombstonedAndMergesConsecutive(t *testing.T) {
	tracked := []protocol.TrackedMessage{
		protocol.NewTracked(protocol.UserMessage(protocol.InputText("part one"))),
		protocol.NewTracked(protocol.UserMessage(protocol.InputText("part two"))),
	}
	tracked[0].Tombstone("summary-1")

	out := NormalizeForAPI([]protocol.TrackedMessage{
		tracked[0],
		tracked[1],
	}, ForAPI())
	require.Len(t, out, 1)
	assert.Equal(t, "part two", out[0].Content[0].Text)
}

func TestNormalizeForAPI_MergesAdjacentSameRole(t *testing.T) {
	tracked := []protocol.TrackedMessage{
		protocol.NewTracked(protocol.AssistantMessage(protocol.OutputText("a"))),
		protocol.NewTracked(protocol.AssistantMessage(protocol.OutputText("b"))),
	}
	out := NormalizeForAPI(tracked, ForAPI())
	require.Len(t, out, 1)
	require.Len(t, out[0].Content, 2)
}

func TestNormalizeForAPI_DoesNotMergeAcrossToolExchange(t *testing.T) {
	tracked := []protocol.TrackedMessage{
		protocol.NewTracked(protocol.AssistantMessage(protocol.OutputText("a"))),
		protocol.NewTracked(protocol.FunctionCall("grep", "{}", "c1")),
		protocol.NewTracked(protocol.FunctionCallOutput("c1", "ok", true)),
		protocol.NewTracked(protocol.AssistantMessage(protocol.OutputText("b"))),
	}
	out := NormalizeForAPI(tracked, ForAPI())
	require.Len(t, out, 4)
}

func TestNormalizeForAPI_DropsEmptyMessagesByDefault(t *testing.T) {
	tracked := []protocol.TrackedMessage{
		protocol.NewTracked(protocol.UserMessage()),
		protocol.NewTracked(protocol.UserMessage(protocol.InputText("hi"))),
	}
	out := NormalizeForAPI(tracked, ForAPI())
	require.Len(t, out, 1)
}

func TestBuildTurnInput_IncrementalSuffix(t *testing.T) {
	full := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("1")),
		protocol.AssistantMessage(protocol.OutputText("2")),
		protocol.UserMessage(protocol.InputText("3")),
		protocol.AssistantMessage(protocol.OutputText("4")),
	}
	pending := []protocol.ResponseItem{protocol.UserMessage(protocol.InputText("next"))}

	items, used := BuildTurnInput(true, &LastResponse{ResponseID: "r", HistoryLen: 2}, full, pending)
	assert.True(t, used)
	require.Len(t, items, 3)
	assert.Equal(t, "3", items[0].Content[0].Text)
	assert.Equal(t, "next", items[2].Content[0].Text)
}

func TestBuildTurnInput_RollbackFallsBackToFullHistory(t *testing.T) {
	full := []protocol.ResponseItem{
		protocol.UserMessage(protocol.InputText("1")),
	}
	pending := []protocol.ResponseItem{protocol.UserMessage(protocol.InputText("2"))}

	items, used := BuildTurnInput(true, &LastResponse{ResponseID: "r", HistoryLen: 5}, full, pending)
	assert.False(t, used)
	require.Len(t, items, 2)
}

func TestBuildTurnInput_NoSupportUsesFullHistory(t *testing.T) {
	full := []protocol.ResponseItem{protocol.UserMessage(protocol.InputText("1"))}
	items, used := BuildTurnInput(false, &LastResponse{ResponseID: "r", HistoryLen: 0}, full, nil)
	assert.False(t, used)
	require.Len(t, items, 1)
}
