package tools

import (
	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/tool"
)

// thinkArgs is reflected into Think's InputSchema via tool.SchemaOf.
type thinkArgs struct {
	Thought string `json:"thought" jsonschema:"required,description=The reasoning note to record"`
}

// ThinkTool gives the model a place to reason out loud without taking
// any action; Execute changes no state and returns the fixed text
// "noted", useful for forcing an explicit planning step between tool
// calls.
type ThinkTool struct {
	tool.Base
}

func NewThinkTool() *ThinkTool {
	return &ThinkTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:           "Think",
			Description:    "Record a reasoning note without taking any action. Does not change any state.",
			InputSchema:    tool.SchemaOf(thinkArgs{}),
			Concurrency:    protocol.Safe,
			IsReadOnly:     true,
			MaxResultChars: 2_000,
		}},
	}
}

func (t *ThinkTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	return protocol.TextOutput("noted"), nil
}
