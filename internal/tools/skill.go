package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/cocode/internal/protocol"
	"github.com/kadirpekel/cocode/internal/skill"
	"github.com/kadirpekel/cocode/internal/status"
	"github.com/kadirpekel/cocode/internal/subagent"
	"github.com/kadirpekel/cocode/internal/tool"
)

// SkillTool lets the model invoke a model-invocable skill by name,
// either injecting its rendered prompt into the current turn or
// forking a sub-agent when the skill declares context = Fork.
type SkillTool struct {
	tool.Base
	Skills *skill.Manager
	Agents *subagent.Manager
}

func NewSkillTool(skills *skill.Manager, agents *subagent.Manager) *SkillTool {
	return &SkillTool{
		Base: tool.Base{Def: protocol.ToolDefinition{
			Name:        "Skill",
			Description: "Invoke a named skill, rendering its prompt with the given arguments.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"name"},
				"properties": map[string]any{
					"name":      map[string]any{"type": "string"},
					"arguments": map[string]any{"type": "string"},
				},
			},
			Concurrency:    protocol.Safe,
			MaxResultChars: 20_000,
		}},
		Skills: skills,
		Agents: agents,
	}
}

func (t *SkillTool) Execute(ctx *tool.Context, args map[string]any) (protocol.ToolOutput, error) {
	name := argString(args, "name")
	arguments := argString(args, "arguments")

	s, ok := t.Skills.Get(name)
	if !ok {
		return protocol.ToolOutput{}, tool.NewError(status.InvalidArguments, "unknown skill: "+name)
	}
	if s.DisableModelInvocation {
		return protocol.ToolOutput{}, tool.NewError(status.PermissionDenied, "skill is not model-invocable: "+name)
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
			return protocol.ToolOutput{}, tool.WrapError(status.Internal, "forked skill failed", err)
		}
		return protocol.TextOutput(output), nil
	}

	return protocol.TextOutput(prompt), nil
}

// ListAvailableSkills renders the available-skills system-reminder
// listing: visible, user- or model-invocable skills, name-sorted.
func ListAvailableSkills(m *skill.Manager) string {
	all := m.List()
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	var b strings.Builder
	for _, s := range all {
		if s.IsHidden {
			continue
		}
		fmt.Fprintf(&b, "/%s — %s\n", s.Name, s.Description)
	}
	return b.String()
}
