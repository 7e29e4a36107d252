package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// LoaderOptions configures NewLoader.
type LoaderOptions struct {
	// Path to the YAML config file.
	Path string
	// EnvPrefix, if non-empty, overlays environment variables with this
	// prefix onto the file config (COCODE_LOG_LEVEL -> log_level).
	EnvPrefix string
	// Watch enables fsnotify-based hot reload of Path.
	Watch bool
	// OnChange is invoked with the newly loaded Config after a watched
	// file changes. Errors are logged, not propagated.
	OnChange func(*Config) error
	// Defaults, if set, seeds the layered config before the file and
	// env overlays are applied, so a config file only has to name the
	// fields it overrides.
	Defaults *Config
}

// asMap round-trips v through YAML to get the map[string]any shape
// confmap.Provider expects, keyed the same way a config file on disk
// is (Config's struct tags are yaml, not koanf).
func asMap(v *Config) (map[string]any, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Loader loads and optionally watches a YAML configuration file layered
// with environment variable overrides.
type Loader struct {
	k       *koanf.Koanf
	opts    LoaderOptions
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLoader constructs a Loader for opts. Path must be non-empty.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	return &Loader{k: koanf.New("."), opts: opts, done: make(chan struct{})}, nil
}

// Load reads the configuration file, overlays environment variables,
// and unmarshals into a Config. If opts.Watch is set, a background
// goroutine is started to reload on file changes.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadOnce(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := l.k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if l.opts.Watch {
		if err := l.startWatch(); err != nil {
			slog.Warn("config watch disabled", "error", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadOnce() error {
	k := koanf.New(".")
	if l.opts.Defaults != nil {
		m, err := asMap(l.opts.Defaults)
		if err != nil {
			return fmt.Errorf("failed to marshal defaults: %w", err)
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return fmt.Errorf("failed to load defaults: %w", err)
		}
	}
	if err := k.Load(file.Provider(l.opts.Path), koanfyaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", l.opts.Path, err)
	}
	if l.opts.EnvPrefix != "" {
		envKey := func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, l.opts.EnvPrefix))
		}
		if err := k.Load(env.Provider(l.opts.EnvPrefix, ".", envKey), nil); err != nil {
			return fmt.Errorf("failed to load env overlay: %w", err)
		}
	}
	l.k = k
	return nil
}

func (l *Loader) startWatch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(l.opts.Path); err != nil {
		w.Close()
		return err
	}
	l.watcher = w

	go func() {
		for {
			select {
			case <-l.done:
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := l.loadOnce(); err != nil {
					slog.Warn("config reload failed", "error", err)
					continue
				}
				cfg := &Config{}
				if err := l.k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
					slog.Warn("config reload unmarshal failed", "error", err)
					continue
				}
				if l.opts.OnChange != nil {
					if err := l.opts.OnChange(cfg); err != nil {
						slog.Warn("config change callback failed", "error", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Stop halts the file watcher, if one was started.
func (l *Loader) Stop() {
	close(l.done)
	if l.watcher != nil {
		l.watcher.Close()
	}
}

// Load is a convenience wrapper: construct a Loader for opts and load
// once without watching.
func Load(opts LoaderOptions) (*Config, error) {
	loader, err := NewLoader(opts)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

// ResolveAPIKey reads a provider's API key from the environment variable
// named by ProviderConfig.APIKeyEnv.
func ResolveAPIKey(pc ProviderConfig) string {
	if pc.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(pc.APIKeyEnv)
}
