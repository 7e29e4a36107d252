// Package tool defines the five-stage tool contract (validate →
// check_permission → execute → post_process → cleanup), a name/alias
// registry, a concurrency-class scheduler, an approval-prefix cache, and
// the read-before-write tracker mutating tools consult before writing.
package tool

import (
	"context"
	"fmt"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
)

// Context carries the per-call state a tool's stages need: the working
// directory, whether the session is in plan mode, and the tracker used
// to enforce read-before-write.
type Context struct {
	context.Context

	CallID      string
	WorkDir     string
	PlanMode    bool
	PlanFile    string
	SessionID   string
	ReadTracker *ReadTracker
}

// Error wraps a status.Code so tool failures carry the same retry/log
// classification as provider and retrieval errors.
type Error struct {
	Code    status.Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(code status.Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code status.Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Tool implements the five-stage pipeline. Embed Base to get the default
// Validate (required-field check against InputSchema) and CheckPermission
// (always Allowed) so concrete tools only need to override what differs.
type Tool interface {
	Definition() protocol.ToolDefinition

	Validate(ctx *Context, args map[string]any) protocol.ValidationResult
	CheckPermission(ctx *Context, args map[string]any) protocol.PermissionResult
	Execute(ctx *Context, args map[string]any) (protocol.ToolOutput, error)
	PostProcess(ctx *Context, output protocol.ToolOutput) protocol.ToolOutput
	Cleanup(ctx *Context)
}

// Base provides the default validate/permission/post-process/cleanup
// stages. Concrete tools embed Base and implement Definition and Execute;
// they override the other stages only when their semantics differ from
// the defaults.
type Base struct {
	Def protocol.ToolDefinition
}

func (b Base) Definition() protocol.ToolDefinition { return b.Def }

// Validate checks that every field in InputSchema's "required" array is
// present in args. Concrete tools with richer schemas may override this
// for type checks beyond presence.
func (b Base) Validate(_ *Context, args map[string]any) protocol.ValidationResult {
	required, _ := b.Def.InputSchema["required"].([]any)
	var errs []protocol.ValidationError
	for _, r := range required {
		name, ok := r.(string)
		if !ok {
			continue
		}
		if _, present := args[name]; !present {
			errs = append(errs, protocol.ValidationError{
				Path:    name,
				Message: fmt.Sprintf("missing required field: %s", name),
			})
		}
	}
	if len(errs) > 0 {
		return protocol.Invalid(errs...)
	}
	return protocol.Valid()
}

func (b Base) CheckPermission(_ *Context, _ map[string]any) protocol.PermissionResult {
	return protocol.Allowed()
}

func (b Base) PostProcess(_ *Context, output protocol.ToolOutput) protocol.ToolOutput {
	return output
}

func (b Base) Cleanup(_ *Context) {}
