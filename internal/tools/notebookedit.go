package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

type notebookCell struct {
	CellType       string            `json:"cell_type"`
	ID             string            `json:"id,omitempty"`
	Metadata       json.RawMessage   `json:"metadata"`
	Source         []string          `json:"source"`
	Outputs        []json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount json.RawMessage   `json:"execution_count,omitempty"`
}

type notebook struct {
	Cells         []notebookCell  `json:"cells"`
	Metadata      json.RawMessage `json:"metadata"`
	NbFormat      int             `json:"nbformat"`
	NbFormatMinor int             `json:"nbformat_minor"`
}

// NotebookEditTool edits a Jupyter .ipynb file's cells by id, in
// replace, insert, or delete mode.
type NotebookEditTool struct {
	tool.Base
}

func NewNotebookEditTool() *NotebookEditTool {
	return &NotebookEditTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "NotebookEdit",
			Description: "Replace, insert, or delete a cell in a Jupyter notebook, addressed by cell_id.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"notebook_path", "cell_id", "edit_mode"},
				"properties": map[string]any{
					"notebook_path": map[string]any{"type": "string"},
					"cell_id":       map[string]any{"type": "string"},
					"cell_type":     map[string]any{"type": "string"},
					"new_source":    map[string]any{"type": "string"},
					"edit_mode":     map[string]any{"type": "string", "enum": []any{"replace", "insert", "delete"}},
				},
			},
			Concurrency:    protocol.Unsafe,
			MaxResultChars: 4_000,
		}},
	}
}

func (t *NotebookEditTool) CheckPermission(ctx *tool.Context, args map[string]any) protocol.PermissionResult {
	path := argString(args, "notebook_path")
	if err := tool.CheckPlanMode(ctx, path); err != nil {
		return protocol.Denied(err.Error())
	}
	return protocol.Allowed()
}

func (t *NotebookEditTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	path := argString(args, "notebook_path")
	if !strings.HasSuffix(path, ".ipynb") {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "notebook_path must end in .ipynb")
	}
	cellID := argString(args, "cell_id")
	newSource := argString(args, "new_source")
	mode := argString(args, "edit_mode")

	full, err := resolvePath(ctx.WorkDir, path)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.InvalidArguments, "invalid path", err)
	}
	if err := ctx.ReadTracker.CheckWritable(full, statFile, readFileHash); err != nil {
		return protocol.ToolOutput{}, err
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to read notebook", err)
	}
	var nb notebook
	if err := json.Unmarshal(raw, &nb); err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.ParseError, "failed to parse notebook JSON", err)
	}

	idx := -1
	for i, c := range nb.Cells {
		if c.ID == cellID {
			idx = i
			break
		}
	}

	switch mode {
	case "replace":
		if idx == -1 {
			return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "cell not found: "+cellID)
		}
		nb.Cells[idx].Source = []string{newSource}
	case "insert":
		newCell := notebookCell{
			CellType: argString(args, "cell_type"),
			Source:   []string{newSource},
			Metadata: json.RawMessage(`{}`),
		}
		if newCell.CellType == "" {
			newCell.CellType = "code"
		}
		insertAt := idx + 1
		if idx == -1 {
			insertAt = len(nb.Cells)
		}
		nb.Cells = append(nb.Cells[:insertAt], append([]notebookCell{newCell}, nb.Cells[insertAt:]...)...)
	case "delete":
		if idx == -1 {
			return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "cell not found: "+cellID)
		}
		nb.Cells = append(nb.Cells[:idx], nb.Cells[idx+1:]...)
	default:
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "edit_mode must be replace, insert, or delete")
	}

	out, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.Internal, "failed to serialize notebook", err)
	}
	if err := os.WriteFile(full, out, 0o644); err != nil {
		return protocol.ToolOutput{}, tool.WrapError(status.IOError, "failed to write notebook", err)
	}

	hash := hashContent(out)
	ctx.ReadTracker.RecordRead(full, hash, nowModTime(full))
	return protocol.TextOutput(fmt.Sprintf("%s cell %s in %s", mode, cellID, path)).WithFileRead(full, string(out), hash), nil
}
