package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/cocode/internal/config"
	"github.com/kadirpekel/cocode/internal/driver"
	"github.com/kadirpekel/cocode/internal/hook"
	"github.com/kadirpekel/cocode/internal/logger"
	"github.com/kadirpekel/cocode/internal/observability"
	"github.com/kadirpekel/cocode/internal/provider"
	"github.com/kadirpekel/cocode/internal/reminder"
	"github.com/kadirpekel/cocode/internal/shell"
	"github.com/kadirpekel/cocode/internal/skill"
	"github.com/kadirpekel/cocode/internal/subagent"
	"github.com/kadirpekel/cocode/internal/tool"
	"github.com/kadirpekel/cocode/internal/tools"
)

// runtime bundles every process-wide shared handle assembled at
// startup: the pieces a Driver is built from, plus what a CLI command
// needs to drive one.
type runtime struct {
	cfg *config.Config

	adapters *provider.Registry
	registry *tool.Registry
	features *tool.FeatureSet
	approval *tool.ApprovalCache
	hooks    *hook.Point

	reminders    *reminder.Orchestrator
	reminderCfg  reminder.Config
	changedFiles *reminder.FileTracker

	background *shell.Store
	todos      *tools.TodoStore
	skills     *skill.Manager
	agents     *subagent.Manager

	metrics     *observability.Metrics
	tracer      trace.TracerProvider
	tracerClose func(context.Context) error

	homeDir string
}

// Shutdown releases process-wide resources (currently just the
// tracer's exporter) acquired by buildRuntime.
func (rt *runtime) Shutdown(ctx context.Context) error {
	if rt.tracerClose == nil {
		return nil
	}
	return rt.tracerClose(ctx)
}

// buildRuntime loads configuration and wires every ambient and domain
// component a Driver needs: provider adapters, the tool registry, the
// reminder orchestrator and the hook dispatcher. It does not construct
// a Driver or the sub-agent manager (newDriver does both), since the
// main driver and any sub-agent driver share this runtime but each
// owns its own Config and history.
func buildRuntime(configPath, logLevel string) (*runtime, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	homeDir = filepath.Join(homeDir, ".cocode")

	cfg := config.Default(homeDir)
	if configPath != "" {
		loaded, err := config.Load(config.LoaderOptions{Path: configPath, EnvPrefix: "COCODE_", Defaults: cfg})
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(logger.ParseLevel(cfg.LogLevel), os.Stderr)

	adapters, err := provider.BuildRegistry(cfg.Providers, cfg.Retry)
	if err != nil {
		return nil, fmt.Errorf("building provider registry: %w", err)
	}

	registry := tool.NewRegistry()
	features := tool.NewFeatureSet()
	approval := tool.NewApprovalCache()
	background := shell.NewStore()
	todoStore := tools.NewTodoStore()
	skillMgr := skill.NewManager()

	for _, root := range cfg.SkillRoots {
		for _, loadErr := range skillMgr.LoadRoots([]skill.Root{{Path: root, Source: skill.ProjectSettings}}) {
			logger.GetLogger().Warn("skill load error", "root", root, "error", loadErr)
		}
	}

	registry.Register(tools.NewReadTool())
	registry.Register(tools.NewReadManyFilesTool())
	registry.Register(tools.NewWriteTool())
	registry.Register(tools.NewEditTool())
	registry.Register(tools.NewNotebookEditTool())
	registry.Register(tools.NewApplyPatchTool())
	registry.Register(tools.NewGlobTool())
	registry.Register(tools.NewGrepTool())
	registry.Register(tools.NewListDirTool())
	registry.Register(tools.NewBashTool(background))
	registry.Register(tools.NewWebFetchTool())
	registry.Register(tools.NewThinkTool())
	registry.Register(tools.NewWriteTodosTool(todoStore))

	hooks := hook.NewPoint()
	for _, hc := range cfg.Hooks {
		hooks.Register(hook.Definition{
			Event:   hook.Event(hc.Point),
			Action:  hook.Command{Run: hc.Command, Timeout: time.Duration(hc.TimeoutMS) * time.Millisecond},
			Timeout: time.Duration(hc.TimeoutMS) * time.Millisecond,
		})
	}

	changedFiles := reminder.NewFileTracker()
	reminderCfg := reminder.DefaultConfig()
	reminders := reminder.NewOrchestrator(reminder.DefaultGenerators(changedFiles)...)

	obsCfg := observability.Config{
		MetricsEnabled:      cfg.Observability.MetricsEnabled,
		MetricsNamespace:    cfg.Observability.MetricsNamespace,
		TracingEnabled:      cfg.Observability.TracingEnabled,
		TracingServiceName:  cfg.Observability.TracingServiceName,
		TracingSamplingRate: cfg.Observability.TracingSamplingRate,
		TracingExporter:     cfg.Observability.TracingExporter,
	}
	metrics := observability.NewMetrics(obsCfg)
	tracerProvider, tracerClose, err := observability.InitTracer(context.Background(), obsCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}

	rt := &runtime{
		cfg:          cfg,
		adapters:     adapters,
		registry:     registry,
		features:     features,
		approval:     approval,
		hooks:        hooks,
		reminders:    reminders,
		reminderCfg:  reminderCfg,
		changedFiles: changedFiles,
		background:   background,
		todos:        todoStore,
		skills:       skillMgr,
		metrics:      metrics,
		tracer:       tracerProvider,
		tracerClose:  tracerClose,
		homeDir:      homeDir,
	}
	return rt, nil
}

// newDriver constructs the main-agent Driver for this runtime and
// finishes wiring the sub-agent-dependent tools (Task, TaskOutput,
// Skill, SlashCommand) into the shared registry, using the driver
// itself as the subagent.Runner.
func (rt *runtime) newDriver(cfg driver.Config) *driver.Driver {
	if cfg.ReminderContext == nil {
		cfg.ReminderContext = func(gctx *reminder.GeneratorContext) {
			gctx.BackgroundTasks = rt.background.Tasks()
		}
	}
	if cfg.OnRemindersProduced == nil {
		cfg.OnRemindersProduced = func(tier reminder.Tier, produced []reminder.AttachmentType) {
			for _, t := range produced {
				if t == reminder.AttachmentBackgroundTask {
					rt.background.MarkAllNotified()
				}
			}
		}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = rt.metrics
	}
	d := driver.New(rt.adapters, rt.registry, rt.features, rt.approval, rt.reminders, rt.reminderCfg, rt.hooks, nil, cfg)

	agentsOutputDir := filepath.Join(rt.homeDir, "cocode-agents")
	rt.agents = subagent.NewManager(d, agentsOutputDir)

	rt.registry.Register(tools.NewTaskTool(rt.agents))
	rt.registry.Register(tools.NewTaskOutputTool(rt.agents, rt.background))
	rt.registry.Register(tools.NewSkillTool(rt.skills, rt.agents))
	rt.registry.Register(tools.NewSlashCommandTool(rt.skills, rt.agents))

	return d
}

// defaultProviderName returns the configured provider whose name sorts
// first.
func defaultProviderName(cfg *config.Config) (string, error) {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no provider configured")
	}
	sort.Strings(names)
	return names[0], nil
}
