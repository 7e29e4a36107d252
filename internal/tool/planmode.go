package tool

import (
	"path/filepath"

	"github.com/kadirpekel/cocode/internal/status"
)

// CheckPlanMode rejects a mutating tool call against any path other than
// the session's designated plan file, when the turn is in plan mode.
// ApplyPatch calls this once per file touched by a multi-file patch and
// aborts the whole patch on the first violation.
func CheckPlanMode(ctx *Context, path string) error {
	if !ctx.PlanMode {
		return nil
	}
	if samePath(path, ctx.PlanFile) {
		return nil
	}
	return NewError(status.PermissionDenied, "plan mode: writes are restricted to the plan file, got "+path)
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
