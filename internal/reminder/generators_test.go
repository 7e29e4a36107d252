package reminder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriticalInstructionGenerator_InjectsConfiguredText(t *testing.T) {
	g := CriticalInstructionGenerator{}
	cfg := DefaultConfig()
	cfg.CriticalInstruction = "always confirm before deleting"
	assert.True(t, g.IsEnabled(cfg))

	r, err := g.Generate(context.Background(), &GeneratorContext{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, "always confirm before deleting", r.Content)
}

func TestCriticalInstructionGenerator_DisabledWhenEmpty(t *testing.T) {
	g := CriticalInstructionGenerator{}
	cfg := DefaultConfig()
	assert.False(t, g.IsEnabled(cfg))
}

func TestPlanModeEnterGenerator_FiresOnlyOnTransition(t *testing.T) {
	g := PlanModeEnterGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{PlanModeJustEntered: true})
	require.NoError(t, err)
	require.NotNil(t, r)

	r, err = g.Generate(context.Background(), &GeneratorContext{PlanModeJustEntered: false})
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestTodoRemindersGenerator_OnlyFiresWithOpenItems(t *testing.T) {
	g := TodoRemindersGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{
		Todos: []TodoItem{{ID: "1", Status: "completed"}},
	})
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = g.Generate(context.Background(), &GeneratorContext{
		Todos: []TodoItem{{ID: "1", Status: "pending"}},
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Content, "1 pending")
}

func TestBackgroundTaskGenerator_OnlyReportsUnnotifiedCompletions(t *testing.T) {
	g := BackgroundTaskGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{
		BackgroundTasks: []BackgroundTask{
			{ID: "t1", Status: "running"},
			{ID: "t2", Status: "completed", Notified: true},
			{ID: "t3", Status: "completed", Summary: "built ok"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Content, "t3")
	assert.NotContains(t, r.Content, "t1")
	assert.NotContains(t, r.Content, "t2")
}

func TestLSPDiagnosticsGenerator_FiltersBySeverity(t *testing.T) {
	g := LSPDiagnosticsGenerator{}
	cfg := DefaultConfig()
	cfg.Attachments.LSPDiagnosticsMinLevel = "error"
	r, err := g.Generate(context.Background(), &GeneratorContext{
		Config: cfg,
		Diagnostics: []Diagnostic{
			{File: "a.go", Severity: "warning", Message: "unused var"},
			{File: "b.go", Severity: "error", Message: "undefined symbol"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Content, "undefined symbol")
	assert.NotContains(t, r.Content, "unused var")
}

func TestTokenUsageGenerator_OnlyFiresPastHalfway(t *testing.T) {
	g := TokenUsageGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{
		TokenUsage: &TokenUsage{InputTokens: 1000, OutputTokens: 0, ContextLimit: 100000},
	})
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = g.Generate(context.Background(), &GeneratorContext{
		TokenUsage: &TokenUsage{InputTokens: 60000, OutputTokens: 0, ContextLimit: 100000},
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Content, "60%")
}

func TestDelegateModeGenerator_OnlyFiresForSubagents(t *testing.T) {
	g := DelegateModeGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{IsMainAgent: true})
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = g.Generate(context.Background(), &GeneratorContext{IsMainAgent: false})
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestAgentMentionsGenerator_ParsesAtAgentPrefix(t *testing.T) {
	g := AgentMentionsGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{UserPrompt: "ask @agent-researcher to look into this"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Content, "researcher")
}

func TestNestedMemoryGenerator_DiscoversAncestorFiles(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("root memory\n"), 0o644))

	g := NestedMemoryGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{CWD: sub, Config: DefaultConfig()})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Contains(t, r.Content, "root memory")
}

func TestNestedMemoryGenerator_NoFilesReturnsNil(t *testing.T) {
	dir := t.TempDir()
	g := NestedMemoryGenerator{}
	r, err := g.Generate(context.Background(), &GeneratorContext{CWD: dir, Config: DefaultConfig()})
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestOutputStyleSetting_CustomInstructionWinsOverNamedStyle(t *testing.T) {
	s := OutputStyleSetting{StyleName: "concise", CustomInstruction: "be extremely terse"}
	assert.Equal(t, "be extremely terse", s.ResolveInstruction())
}

func TestOutputStyleSetting_FallsBackToNamedStyle(t *testing.T) {
	s := OutputStyleSetting{StyleName: "concise"}
	assert.NotEmpty(t, s.ResolveInstruction())
}
