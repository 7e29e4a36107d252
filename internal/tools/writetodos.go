package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/tool"
)

// Todo is one session todo item.
type Todo struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Status  string `json:"status"` // pending, in_progress, completed
}

// TodoStore keeps the current todo list per session, replaced or
// merged on each WriteTodos call.
type TodoStore struct {
	mu    sync.Mutex
	bySes map[string][]Todo
}

func NewTodoStore() *TodoStore {
	return &TodoStore{bySes: make(map[string][]Todo)}
}

func (s *TodoStore) Get(sessionID string) []Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Todo, len(s.bySes[sessionID]))
	copy(out, s.bySes[sessionID])
	return out
}

func (s *TodoStore) Set(sessionID string, todos []Todo, merge bool) []Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !merge {
		s.bySes[sessionID] = todos
		return todos
	}
	byID := make(map[string]int, len(s.bySes[sessionID]))
	existing := s.bySes[sessionID]
	for i, t := range existing {
		byID[t.ID] = i
	}
	for _, t := range todos {
		if i, ok := byID[t.ID]; ok {
			existing[i] = t
		} else {
			existing = append(existing, t)
			byID[t.ID] = len(existing) - 1
		}
	}
	s.bySes[sessionID] = existing
	return existing
}

// WriteTodosTool lets the model maintain a structured task list for the
// session, replacing or merging into the current list.
type WriteTodosTool struct {
	tool.Base
	Store *TodoStore
}

// writeTodosArgs is reflected into WriteTodos's InputSchema via
// tool.SchemaOf; Execute still decodes from the untyped args map since
// the driver dispatches tool calls generically, but the schema the model
// sees is generated from this struct rather than hand-assembled.
type writeTodosArgs struct {
	Todos []Todo `json:"todos" jsonschema:"required,description=The full or partial todo list"`
	Merge bool   `json:"merge,omitempty" jsonschema:"description=Merge into the existing list instead of replacing it"`
}

func NewWriteTodosTool(store *TodoStore) *WriteTodosTool {
	return &WriteTodosTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:           "WriteTodos",
			Description:    "Replace or merge the session's todo list.",
			InputSchema:    tool.SchemaOf(writeTodosArgs{}),
			Concurrency:    protocol.Safe,
			MaxResultChars: 4_000,
		}},
		Store: store,
	}
}

func (t *WriteTodosTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	raw, ok := args["todos"].([]any)
	if !ok {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "todos must be an array")
	}
	todos := make([]Todo, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		todos = append(todos, Todo{
			ID:      argString(m, "id"),
			Content: argString(m, "content"),
			Status:  argString(m, "status"),
		})
	}
	merged := t.Store.Set(ctx.SessionID, todos, argBool(args, "merge"))
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })

	var out strings.Builder
	fmt.Fprintf(&out, "%d todo(s)\n", len(merged))
	for _, td := range merged {
		fmt.Fprintf(&out, "[%s] %s: %s\n", td.Status, td.ID, td.Content)
	}
	return protocol.TextOutput(strings.TrimRight(out.String(), "\n")), nil
}
