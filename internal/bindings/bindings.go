package bindings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization format for key binding configs.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Source describes where the bindings config was loaded from.
type Source struct {
	Path   string
	Format Format
}

// ActionID names something the prompt can do in response to a key.
type ActionID string

const (
	ActionRun         ActionID = "run"
	ActionHistoryPrev ActionID = "history_prev"
	ActionHistoryNext ActionID = "history_next"
	ActionClearInput  ActionID = "clear_input"
	ActionClearScreen ActionID = "clear_screen"
	ActionInterrupt   ActionID = "interrupt"
	ActionQuit        ActionID = "quit"
	ActionScrollUp    ActionID = "scroll_up"
	ActionScrollDown  ActionID = "scroll_down"
)

type definition struct {
	id       ActionID
	defaults []string
}

var definitions = []definition{
	{id: ActionRun, defaults: []string{"enter"}},
	{id: ActionHistoryPrev, defaults: []string{"up", "ctrl+p"}},
	{id: ActionHistoryNext, defaults: []string{"down", "ctrl+n"}},
	{id: ActionClearInput, defaults: []string{"esc"}},
	{id: ActionClearScreen, defaults: []string{"ctrl+l"}},
	{id: ActionInterrupt, defaults: []string{"ctrl+c"}},
	{id: ActionQuit, defaults: []string{"ctrl+d"}},
	{id: ActionScrollUp, defaults: []string{"pgup"}},
	{id: ActionScrollDown, defaults: []string{"pgdown"}},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()

// Map resolves key strings to actions.
type Map struct {
	keys    map[string]ActionID
	actions map[ActionID][]string
}

// Load reads bindings.toml, bindings.yaml or bindings.json from dir, first
// match wins. Actions a file does not mention keep their defaults.
func Load(dir string) (*Map, Source, error) {
	candidates := []Source{
		{Path: filepath.Join(dir, "bindings.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "bindings.yaml"), Format: FormatYAML},
		{Path: filepath.Join(dir, "bindings.json"), Format: FormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				fmt.Errorf("read bindings %q: %w", candidate.Path, err),
			)
			continue
		}

		overrides, err := parseConfig(data, candidate.Format)
		if err != nil {
			return nil, Source{}, fmt.Errorf("parse bindings %q: %w", candidate.Path, err)
		}
		built, err := buildMap(overrides)
		if err != nil {
			return nil, Source{}, fmt.Errorf("apply bindings %q: %w", candidate.Path, err)
		}
		return built, candidate, nil
	}

	if accumulated != nil {
		return nil, Source{}, accumulated
	}
	return DefaultMap(), Source{Path: candidates[0].Path, Format: FormatTOML}, nil
}

// DefaultMap builds the built-in bindings without consulting disk.
func DefaultMap() *Map {
	m, err := buildMap(nil)
	if err != nil {
		panic(err)
	}
	return m
}

// Match returns the action bound to key, if any.
func (m *Map) Match(key string) (ActionID, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.keys[NormalizeKeyString(key)]
	return id, ok
}

// Keys returns the keys bound to action.
func (m *Map) Keys(action ActionID) []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.actions[action]...)
}

type configFile struct {
	Bindings map[string][]string `json:"bindings" toml:"bindings" yaml:"bindings"`
}

func parseConfig(data []byte, format Format) (map[ActionID][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var payload configFile
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &payload); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	overrides := make(map[ActionID][]string, len(payload.Bindings))
	for name, specs := range payload.Bindings {
		def, ok := definitionLookup[ActionID(name)]
		if !ok {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		keys := make([]string, 0, len(specs))
		for _, spec := range specs {
			key, err := parseKey(spec)
			if err != nil {
				return nil, fmt.Errorf("action %q: %w", name, err)
			}
			keys = append(keys, key)
		}
		overrides[def.id] = keys
	}
	return overrides, nil
}

func buildMap(overrides map[ActionID][]string) (*Map, error) {
	m := &Map{
		keys:    make(map[string]ActionID),
		actions: make(map[ActionID][]string, len(definitions)),
	}
	for _, def := range definitions {
		keys := def.defaults
		if o, ok := overrides[def.id]; ok {
			keys = o
		}
		seen := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("action %s: duplicate binding %q", def.id, key)
			}
			seen[key] = struct{}{}
			if existing, taken := m.keys[key]; taken {
				return nil, fmt.Errorf(
					"binding %q assigned to both %s and %s",
					key,
					existing,
					def.id,
				)
			}
			m.keys[key] = def.id
			m.actions[def.id] = append(m.actions[def.id], key)
		}
	}
	if len(m.actions[ActionRun]) == 0 {
		return nil, fmt.Errorf("action %s needs at least one key", ActionRun)
	}
	return m, nil
}

// parseKey accepts one key step. Multi-key sequences are not supported.
func parseKey(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", errors.New("empty binding")
	}
	if len(strings.Fields(spec)) > 1 {
		return "", fmt.Errorf("binding %q: key sequences are not supported", spec)
	}
	return normalizeStep(spec)
}

func normalizeStep(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty key step")
	}
	if raw == "?" {
		raw = "shift+/"
	}
	if raw == " " {
		raw = "space"
	}

	runes := []rune(raw)
	if len(runes) == 1 && !strings.Contains(raw, "+") {
		r := runes[0]
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return "shift+" + strings.ToLower(raw), nil
			}
			return strings.ToLower(raw), nil
		}
		return strings.ToLower(raw), nil
	}

	if !strings.Contains(raw, "+") {
		return strings.ToLower(raw), nil
	}

	parts := strings.Split(raw, "+")
	var keyParts []string
	modSet := make(map[string]struct{})
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		switch lower {
		case "ctrl", "control":
			modSet["ctrl"] = struct{}{}
		case "alt", "option":
			modSet["alt"] = struct{}{}
		case "shift":
			modSet["shift"] = struct{}{}
		case "cmd", "command", "meta":
			modSet["cmd"] = struct{}{}
		default:
			keyParts = append(keyParts, lower)
		}
	}
	if len(keyParts) == 0 {
		return "", fmt.Errorf("binding %q missing key", raw)
	}
	key := strings.Join(keyParts, "+")
	mods := orderedModifiers(modSet)
	if len(mods) == 0 {
		return key, nil
	}
	return strings.Join(append(mods, key), "+"), nil
}

func orderedModifiers(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	order := []string{"ctrl", "alt", "shift", "cmd"}
	out := make([]string, 0, len(set))
	for _, mod := range order {
		if _, ok := set[mod]; ok {
			out = append(out, mod)
		}
	}
	return out
}

// NormalizeKeyString converts runtime key strings into canonical form for lookup.
func NormalizeKeyString(raw string) string {
	normalized, err := normalizeStep(raw)
	if err != nil {
		return ""
	}
	return normalized
}

