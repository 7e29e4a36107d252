package tools

import (
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/skill"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/subagent"
	"github.com/kadirpekel/cocode/internal/tool"
)

// SlashCommandTool parses a raw "/name args..." invocation (as typed
// by a user, forwarded by the driver) and dispatches it the same way
// SkillTool dispatches a model-issued invocation, except name and
// alias resolution happens here rather than being pre-split by the
// caller, and user_invocable gates rather than disable_model_invocation.
type SlashCommandTool struct {
	tool.Base
	Skills *skill.Manager
	Agents *subagent.Manager
}

func NewSlashCommandTool(skills *skill.Manager, agents *subagent.Manager) *SlashCommandTool {
	return &SlashCommandTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "SlashCommand",
			Description: "Run a raw /name args... slash command typed by the user.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"input"},
				"properties": map[string]any{
					"input": map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Safe,
			MaxResultChars: 20_000,
		}},
		Skills: skills,
		Agents: agents,
	}
}

func parseSlashInvocation(input string) (name, arguments string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}
	rest := strings.TrimPrefix(input, "/")
	parts := strings.SplitN(rest, " ", 2)
	name = parts[0]
	if len(parts) == 2 {
		arguments = parts[1]
	}
	return name, arguments, name != ""
}

func (t *SlashCommandTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	input := argString(args, "input")
	name, arguments, ok := parseSlashInvocation(input)
	if !ok {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "input must start with /name")
	}

	s, found := t.Skills.Get(name)
	if !found {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "unknown command: /"+name)
	}
	if !s.UserInvocable {
		return protocol.ToolOutput{}, tool.NewError(status.PermissionDenied, "command is not user-invocable: /"+name)
	}

	prompt := s.Render(arguments)

	if s.Context == skill.ContextFork {
		if t.Agents == nil {
			return protocol.ToolOutput{}, tool.NewError(status.Unsupported, "sub-agent spawning not available")
		}
		_, output, err := t.Agents.Spawn(ctx, subagent.SpawnConfig{
			Model:           s.Model,
			Prompt:          prompt,
			Tools:           s.AllowedTools,
			RunInBackground: false,
			IsBuiltinAgent:  s.Source <= skill.Bundled,
		})
		if err != nil {
			return protocol.ToolOutput{}, tool.WrapError(status.Internal, "forked command failed", err)
		}
		return protocol.TextOutput(output), nil
	}

	return protocol.TextOutput(prompt), nil
}
