// Package prompt manages the per-operation prompt templates and output
// schemas used by the analysis orchestrator. Templates load from an optional
// YAML file with hot reload; compiled-in defaults cover every operation when
// the file is absent.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/pkg/text"
)

// Analysis sub-operation identifiers. Each has a registered Spec.
const (
	OpSentiment       = "sentiment"
	OpSummary         = "summary"
	OpRisk            = "risk"
	OpImpact          = "impact"
	OpKeyPoints       = "key_points"
	OpRecommendations = "recommendations"
)

// Spec holds one operation's prompt pair plus generation parameters and an
// optional JSON schema for structured output.
type Spec struct {
	ID           string                 `mapstructure:"id" yaml:"id"`
	System       string                 `mapstructure:"system" yaml:"system"`
	UserTemplate string                 `mapstructure:"user_template" yaml:"user_template"`
	MaxTokens    int                    `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature  float64                `mapstructure:"temperature" yaml:"temperature"`
	TruncateAt   int                    `mapstructure:"truncate_at" yaml:"truncate_at"`
	Schema       map[string]interface{} `mapstructure:"schema" yaml:"schema"`

	schemaCompiled *jsonschema.Schema
}

// Structured reports whether the operation expects schema-validated JSON.
func (s Spec) Structured() bool {
	return s.schemaCompiled != nil
}

// Render substitutes {name} placeholders in the user template. The "text"
// argument is truncated to TruncateAt bytes first.
func (s Spec) Render(args map[string]string) (system, user string) {
	user = s.UserTemplate
	for k, v := range args {
		if k == "text" && s.TruncateAt > 0 {
			v = text.Truncate(v, s.TruncateAt)
		}
		user = strings.ReplaceAll(user, "{"+k+"}", v)
	}
	return s.System, user
}

// ValidatePayload checks a decoded generator payload against the operation
// schema. Numeric strings are coerced first since models regularly quote
// numbers.
func (s Spec) ValidatePayload(payload any) error {
	if s.schemaCompiled == nil {
		return nil
	}
	return s.schemaCompiled.Validate(sanitizePayload(payload))
}

// FileConfig maps the prompts file.
type FileConfig struct {
	Prompts map[string]Spec `mapstructure:"prompts" yaml:"prompts"`
}

// Snapshot is the published spec set.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Specs    map[string]Spec
}

// ChangeListener fires after a successful reload.
type ChangeListener func(Snapshot)

// Registry serves prompt specs, overlaying file entries onto the built-in
// defaults and reloading on file change.
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry builds a registry from the given prompts file. An empty path
// or missing file yields a defaults-only registry without a watcher.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: strings.TrimSpace(path)}
	if r.path == "" {
		r.install(defaultSpecs())
		return r, nil
	}
	if _, err := os.Stat(r.path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat prompts file failed: %w", err)
		}
		logger.Infof("Prompts file %s absent, using built-in prompts", r.path)
		r.install(defaultSpecs())
		return r, nil
	}
	v := viper.New()
	v.SetConfigFile(r.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read prompts file failed: %w", err)
	}
	r.v = v
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("prompts reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot returns the current spec set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// Spec returns the spec registered for the given operation.
func (r *Registry) Spec(op string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.snapshot.Specs[strings.TrimSpace(op)]
	return spec, ok
}

// Subscribe registers a listener invoked on every successful reload.
func (r *Registry) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) reload() error {
	cfg, err := readPromptsFile(r.path)
	if err != nil {
		return err
	}
	specs := defaultSpecs()
	for name, spec := range cfg.Prompts {
		specs[strings.TrimSpace(name)] = normalizeSpec(name, spec, specs[strings.TrimSpace(name)])
	}
	r.install(specs)
	logger.Infof("Prompt registry loaded %d specs from %s", len(specs), filepath.Base(r.path))
	return nil
}

func (r *Registry) install(specs map[string]Spec) {
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Specs:    specs,
	}
	r.mu.Unlock()
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		if fn == nil {
			continue
		}
		go func(cb ChangeListener) {
			defer safeRecover("prompt listener")
			cb(snap)
		}(fn)
	}
}

// normalizeSpec fills gaps in a file entry from the built-in spec for the
// same operation, so partial overrides stay usable.
func normalizeSpec(name string, spec, base Spec) Spec {
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		spec.ID = strings.TrimSpace(name)
	}
	if strings.TrimSpace(spec.System) == "" {
		spec.System = base.System
	}
	if strings.TrimSpace(spec.UserTemplate) == "" {
		spec.UserTemplate = base.UserTemplate
	}
	if spec.MaxTokens <= 0 {
		spec.MaxTokens = base.MaxTokens
	}
	if spec.Temperature <= 0 {
		spec.Temperature = base.Temperature
	}
	if spec.TruncateAt <= 0 {
		spec.TruncateAt = base.TruncateAt
	}
	if len(spec.Schema) == 0 {
		spec.Schema = base.Schema
	}
	if len(spec.Schema) > 0 {
		if compiled, err := compileSchema(spec.Schema); err != nil {
			logger.Errorf("prompt schema compile failed op=%s: %v", spec.ID, err)
		} else {
			spec.schemaCompiled = compiled
		}
	}
	return spec
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:  src.Version,
		LoadedAt: src.LoadedAt,
		Specs:    make(map[string]Spec, len(src.Specs)),
	}
	for op, spec := range src.Specs {
		dst.Specs[op] = spec
	}
	return dst
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}

func compileSchema(data map[string]interface{}) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func readPromptsFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read prompts file failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse prompts file failed: %w", err)
	}
	return cfg, nil
}

// sanitizePayload walks the payload converting numeric strings to float64,
// since models sometimes answer "0.5" where 0.5 was asked for.
func sanitizePayload(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = sanitizePayload(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = sanitizePayload(child)
		}
		return out
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return val
		}
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			return num
		}
		return val
	default:
		return val
	}
}
