package history

import (
	"fmt"

	"github.com/kadirpekel/cocode/internal/protocol"
)

// ValidationErrorKind discriminates the ValidationError variants.
type ValidationErrorKind string

const (
	ErrEmptyMessages      ValidationErrorKind = "empty_messages"
	ErrSystemNotFirst     ValidationErrorKind = "system_not_first"
	ErrOrphanToolResult   ValidationErrorKind = "orphan_tool_result"
	ErrInvalidAlternation ValidationErrorKind = "invalid_alternation"
)

// ValidationError reports why a history sequence is not valid for
// submission to a provider.
type ValidationError struct {
	Kind      ValidationErrorKind
	Index     int
	ToolUseID string
	Expected  protocol.Role
	Found     protocol.Role
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrEmptyMessages:
		return "message list is empty"
	case ErrSystemNotFirst:
		return fmt.Sprintf("system message at index %d is not first", e.Index)
	case ErrOrphanToolResult:
		return fmt.Sprintf("tool result for %q has no matching function call", e.ToolUseID)
	case ErrInvalidAlternation:
		return fmt.Sprintf("invalid role alternation at index %d: expected %s, found %s", e.Index, e.Expected, e.Found)
	default:
		return "unknown validation error"
	}
}

// ValidateMessages enforces the history invariants: non-empty, system
// messages only at index 0, User/Assistant alternation outside of tool
// exchanges, and every FunctionCallOutput/ToolResult has a matching
// prior FunctionCall within the same prefix.
func ValidateMessages(items []protocol.ResponseItem) error {
	if len(items) == 0 {
		return &ValidationError{Kind: ErrEmptyMessages}
	}

	var lastRole protocol.Role
	haveLastRole := false

	for idx, item := range items {
		role, hasRole := item.Role()

		if item.Kind == protocol.ItemSystemMessage && idx > 0 {
			return &ValidationError{Kind: ErrSystemNotFirst, Index: idx}
		}

		if hasRole && role != protocol.RoleSystem {
			if haveLastRole && lastRole != protocol.RoleSystem {
				if role == lastRole {
					expected := protocol.RoleAssistant
					if role == protocol.RoleAssistant {
						expected = protocol.RoleUser
					}
					return &ValidationError{
						Kind: ErrInvalidAlternation, Index: idx,
						Expected: expected, Found: role,
					}
				}
			}
		}

		if item.Kind == protocol.ItemFunctionCallOutput || item.Kind == protocol.ItemToolResult {
			callID := item.CallID
			if item.Kind == protocol.ItemToolResult {
				callID = item.ToolUseID
			}
			if !hasMatchingFunctionCall(items, idx, callID) {
				return &ValidationError{Kind: ErrOrphanToolResult, ToolUseID: callID}
			}
		}

		if hasRole {
			lastRole = role
			haveLastRole = true
		} else if item.IsToolExchange() {
			// Tool exchange items carry no role of their own and break
			// the alternation run: the message after an exchange may
			// have either role.
			haveLastRole = false
		}
	}

	return nil
}

// hasMatchingFunctionCall scans backwards from idx for a FunctionCall
// with the given call id anywhere in the preceding prefix.
func hasMatchingFunctionCall(items []protocol.ResponseItem, idx int, callID string) bool {
	for i := idx - 1; i >= 0; i-- {
		if items[i].Kind == protocol.ItemFunctionCall && items[i].CallID == callID {
			return true
		}
	}
	return false
}
