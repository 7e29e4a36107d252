// Package skill loads SKILL.toml metadata from one or more roots,
// resolves name/alias conflicts by source precedence, and renders a
// skill's prompt for invocation.
package skill

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Source ranks where a skill definition came from. Higher values win
// on a name conflict.
type Source int

const (
	Builtin Source = iota
	Bundled
	Mcp
	Plugin
	ProjectSettings
	UserSettings
	PolicySettings
)

// Context selects whether a skill's prompt runs inline in the calling
// turn or forks a sub-agent.
type Context string

const (
	ContextMain Context = "main"
	ContextFork Context = "fork"
)

// Skill is one loaded SKILL.toml definition.
type Skill struct {
	Name                   string
	Description            string
	Prompt                 string
	AllowedTools           []string
	UserInvocable          bool
	DisableModelInvocation bool
	IsHidden               bool
	Source                 Source
	Context                Context
	Agent                  string
	Model                  string
	BaseDir                string
	WhenToUse              string
	ArgumentHint           string
	Aliases                []string
}

type skillFile struct {
	Name                   string   `koanf:"name"`
	Description            string   `koanf:"description"`
	Prompt                 string   `koanf:"prompt"`
	PromptFile             string   `koanf:"prompt_file"`
	AllowedTools           []string `koanf:"allowed_tools"`
	UserInvocable          *bool    `koanf:"user_invocable"`
	DisableModelInvocation bool     `koanf:"disable_model_invocation"`
	IsHidden               bool     `koanf:"is_hidden"`
	Context                string   `koanf:"context"`
	Agent                  string   `koanf:"agent"`
	Model                  string   `koanf:"model"`
	WhenToUse              string   `koanf:"when_to_use"`
	ArgumentHint           string   `koanf:"argument_hint"`
	Aliases                []string `koanf:"aliases"`
}

// LoadError reports one SKILL.toml that failed to load. Loading is
// fail-open: an invalid skill is reported but never blocks the rest.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Load walks root recursively for SKILL.toml files and parses each
// into a Skill tagged with source. Invalid files are collected into
// errs rather than aborting the walk.
func Load(root string, source Source) (skills []Skill, errs []LoadError) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != "SKILL.toml" {
			return nil
		}
		s, err := loadOne(path, source)
		if err != nil {
			errs = append(errs, LoadError{Path: path, Err: err})
			return nil
		}
		skills = append(skills, s)
		return nil
	})
	return skills, errs
}

func loadOne(path string, source Source) (Skill, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return Skill{}, fmt.Errorf("parse: %w", err)
	}
	var sf skillFile
	if err := k.Unmarshal("", &sf); err != nil {
		return Skill{}, fmt.Errorf("unmarshal: %w", err)
	}
	if sf.Name == "" {
		return Skill{}, fmt.Errorf("missing name")
	}

	prompt := sf.Prompt
	if sf.PromptFile != "" {
		raw, err := os.ReadFile(filepath.Join(filepath.Dir(path), sf.PromptFile))
		if err != nil {
			return Skill{}, fmt.Errorf("prompt_file: %w", err)
		}
		prompt = string(raw)
	}
	if prompt == "" {
		return Skill{}, fmt.Errorf("skill has neither prompt nor prompt_file")
	}

	ctx := ContextMain
	if strings.EqualFold(sf.Context, "fork") {
		ctx = ContextFork
	}

	userInvocable := true
	if sf.UserInvocable != nil {
		userInvocable = *sf.UserInvocable
	}

	return Skill{
		Name:                   sf.Name,
		Description:            sf.Description,
		Prompt:                 prompt,
		AllowedTools:           sf.AllowedTools,
		UserInvocable:          userInvocable,
		DisableModelInvocation: sf.DisableModelInvocation,
		IsHidden:               sf.IsHidden,
		Source:                 source,
		Context:                ctx,
		Agent:                  sf.Agent,
		Model:                  sf.Model,
		BaseDir:                filepath.Dir(path),
		WhenToUse:              sf.WhenToUse,
		ArgumentHint:           sf.ArgumentHint,
		Aliases:                sf.Aliases,
	}, nil
}

// Render substitutes $ARGUMENTS in s.Prompt and prepends a base-dir
// preamble when BaseDir is set.
func (s Skill) Render(arguments string) string {
	prompt := strings.ReplaceAll(s.Prompt, "$ARGUMENTS", arguments)
	if s.BaseDir != "" {
		prompt = fmt.Sprintf("Base directory for this skill: %s\n\n%s", s.BaseDir, prompt)
	}
	return prompt
}
