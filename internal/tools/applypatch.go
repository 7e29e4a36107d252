package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// PatchEdit is one file-scoped change within a multi-file patch.
type PatchEdit struct {
	Path       string
	OldString  string
	NewString  string
	ReplaceAll bool
}

// ApplyPatchTool applies one or more file edits atomically at the
// plan-mode-check level: every touched path is validated against plan
// mode before any file is written, so a multi-file patch either fully
// respects plan mode or is rejected outright. Edits may arrive either
// as a structured array (the "function" variant) or as freeform patch
// text in the "*** Update File:" grammar (the "freeform" variant).
type ApplyPatchTool struct {
	tool.Base
}

func NewApplyPatchTool() *ApplyPatchTool {
	return &ApplyPatchTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "ApplyPatch",
			Description: "Apply one or more search-and-replace edits across files, given either a structured edit list or freeform patch text.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{},
				"properties": map[string]any{
					"edits": map[string]any{"type": "array"},
					"patch": map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Unsafe,
			MaxResultChars: 10_000,
		}},
	}
}

func (t *ApplyPatchTool) parseEdits(args map[string]any) ([]PatchEdit, error) {
	if raw, ok := args["edits"].([]any); ok {
		edits := make([]PatchEdit, 0, len(raw))
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			edits = append(edits, PatchEdit{
				Path:       argString(m, "path"),
				OldString:  argString(m, "old_string"),
				NewString:  argString(m, "new_string"),
				ReplaceAll: argBool(m, "replace_all"),
			})
		}
		return edits, nil
	}
	if patch := argString(args, "patch"); patch != "" {
		return parseFreeformPatch(patch)
	}
	return nil, fmt.Errorf("either edits or patch must be provided")
}

// parseFreeformPatch parses a minimal "*** Update File:" grammar:
//
//	*** Update File: path/to/file.go
//	@@
//	-old line
//	+new line
//	*** End Patch
func parseFreeformPatch(patch string) ([]PatchEdit, error) {
	var edits []PatchEdit
	var currentPath string
	var oldLines, newLines []string

	flush := func() {
		if currentPath != "" && (len(oldLines) > 0 || len(newLines) > 0) {
			edits = append(edits, PatchEdit{
				Path:      currentPath,
				OldString: strings.Join(oldLines, "\n"),
				NewString: strings.Join(newLines, "\n"),
			})
		}
		oldLines, newLines = nil, nil
	}

	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "*** Update File:"):
			flush()
			currentPath = strings.TrimSpace(strings.TrimPrefix(line, "*** Update File:"))
		case strings.HasPrefix(line, "*** End Patch"), strings.HasPrefix(line, "*** Begin Patch"), strings.HasPrefix(line, "@@"):
			continue
		case strings.HasPrefix(line, "-"):
			oldLines = append(oldLines, strings.TrimPrefix(line, "-"))
		case strings.HasPrefix(line, "+"):
			newLines = append(newLines, strings.TrimPrefix(line, "+"))
		}
	}
	flush()
	if len(edits) == 0 {
		return nil, fmt.Errorf("no file sections found in patch")
	}
	return edits, nil
}

func (t *ApplyPatchTool) CheckPermission(ctx *tool.Context, args map[string]any) protocol.PermissionResult {
	edits, err := t.parseEdits(args)
	if err != nil {
		return protocol.Denied(err.Error())
	}
	for _, e := range edits {
		if err := tool.CheckPlanMode(ctx, e.Path); err != nil {
			return protocol.Denied(fmt.Sprintf("patch aborted: %v", err))
		}
	}
	return protocol.Allowed()
}

func (t *ApplyPatchTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	edits, err := t.parseEdits(args)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "failed to parse patch", err)
	}

	var applied []string
	for _, e := range edits {
		full, err := resolvePath(ctx.WorkDir, e.Path)
		if err != nil {
			return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path in patch: "+e.Path, err)
		}
		if err := ctx.ReadTracker.CheckWritable(full, statFile, readFileHash); err != nil {
			return protocol.ToolOutput{}, err
		}
		raw, err := os.ReadFile(full)
		if err != nil {
			return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to read "+e.Path, err)
		}
		result, count, strategy, ok := ApplyEditStrategies(string(raw), e.OldString, e.NewString, e.ReplaceAll)
		if !ok {
			hint := FindClosestMatch(string(raw), e.OldString)
			return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments,
				fmt.Sprintf("patch hunk did not apply to %s: %s", e.Path, hint))
		}
		if err := os.WriteFile(full, []byte(result), 0o644); err != nil {
			return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to write "+e.Path, err)
		}
		hash := hashContent([]byte(result))
		ctx.ReadTracker.RecordRead(full, hash, nowModTime(full))
		applied = append(applied, fmt.Sprintf("%s (%s, %d replacement(s))", e.Path, strategy, count))
	}

	return protocol.TextOutput(fmt.Sprintf("applied patch across %d file(s):\n%s", len(applied), strings.Join(applied, "\n"))), nil
}
