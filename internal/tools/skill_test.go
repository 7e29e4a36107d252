package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/skill"
	"github.com/kadirpekel/cocode/internal/tool"
)

func newSkillManagerWith(t *testing.T, toml string) *skill.Manager {
	t.Helper()
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "s")
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.toml"), []byte(toml), 0o644))

	m := skill.NewManager()
	require.Empty(t, m.LoadRoots([]skill.Root{{Path: dir, Source: skill.ProjectSettings}}))
	return m
}

func TestSkillTool_InjectsRenderedPromptInMainContext(t *testing.T) {
	m := newSkillManagerWith(t, `
name = "greet"
description = "Say hi"
prompt = "hello $ARGUMENTS"
`)

	st := NewSkillTool(m, nil)
	out, err := st.Execute(&tool.Context{Context: context.Background()}, map[string]any{
		"name":      "greet",
		"arguments": "world",
	})
	require.NoError(t, err)
	s, ok := m.Get("greet")
	require.True(t, ok)
	assert.Equal(t, "Base directory for this skill: "+s.BaseDir+"\n\nhello world", out.TextOf())
}

func TestSkillTool_RejectsDisabledModelInvocation(t *testing.T) {
	m := newSkillManagerWith(t, `
name = "hidden-cmd"
description = "user only"
prompt = "do it"
disable_model_invocation = true
`)

	st := NewSkillTool(m, nil)
	_, err := st.Execute(&tool.Context{Context: context.Background()}, map[string]any{"name": "hidden-cmd"})
	require.Error(t, err)
}

func TestSkillTool_UnknownSkillErrors(t *testing.T) {
	m := skill.NewManager()
	st := NewSkillTool(m, nil)
	_, err := st.Execute(&tool.Context{Context: context.Background()}, map[string]any{"name": "nope"})
	require.Error(t, err)
}

func TestParseSlashInvocation(t *testing.T) {
	name, args, ok := parseSlashInvocation("/review foo bar")
	assert.True(t, ok)
	assert.Equal(t, "review", name)
	assert.Equal(t, "foo bar", args)

	_, _, ok = parseSlashInvocation("not a command")
	assert.False(t, ok)

	name, args, ok = parseSlashInvocation("/noargs")
	assert.True(t, ok)
	assert.Equal(t, "noargs", name)
	assert.Equal(t, "", args)
}

func TestSlashCommandTool_RejectsNonUserInvocable(t *testing.T) {
	m := newSkillManagerWith(t, `
name = "internal"
description = "model only"
prompt = "x"
user_invocable = false
`)

	sc := NewSlashCommandTool(m, nil)
	_, err := sc.Execute(&tool.Context{Context: context.Background()}, map[string]any{"input": "/internal"})
	require.Error(t, err)
}

func TestSlashCommandTool_RendersPrompt(t *testing.T) {
	m := newSkillManagerWith(t, `
name = "review"
description = "Review a diff"
prompt = "Review: $ARGUMENTS"
`)

	sc := NewSlashCommandTool(m, nil)
	out, err := sc.Execute(&tool.Context{Context: context.Background()}, map[string]any{"input": "/review main.go"})
	require.NoError(t, err)
	s, ok := m.Get("review")
	require.True(t, ok)
	assert.Equal(t, "Base directory for this skill: "+s.BaseDir+"\n\nReview: main.go", out.TextOf())
}
