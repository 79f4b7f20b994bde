package config

import "strings"

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

type HistorySettings struct {
	Enabled    bool   `json:"enabled"     toml:"enabled"     yaml:"enabled"`
	Path       string `json:"path"        toml:"path"        yaml:"path"`
	MaxEntries int    `json:"max_entries" toml:"max_entries" yaml:"max_entries"`
}

const (
	ThemeDefault        = "monokai"
	PromptDefault       = "> "
	MaxCallDepthDefault = 4096
	MaxCallDepthMin     = 16
	MaxCallDepthMax     = 1 << 16
	HistoryMaxDefault   = 500
	HistoryMaxMin       = 10
	HistoryMaxMax       = 100000
)

func DefaultSettings() Settings {
	return Settings{
		Color:        ColorAuto,
		Theme:        ThemeDefault,
		Prompt:       PromptDefault,
		MaxCallDepth: MaxCallDepthDefault,
		History: HistorySettings{
			Enabled:    true,
			MaxEntries: HistoryMaxDefault,
		},
	}
}

// NormaliseSettings fills blanks with defaults and clamps numeric fields.
// Unknown color modes fall back to auto.
func NormaliseSettings(in Settings) Settings {
	out := in
	out.Color = normaliseColorMode(in.Color, ColorAuto)
	out.Theme = strings.TrimSpace(in.Theme)
	if out.Theme == "" {
		out.Theme = ThemeDefault
	}
	if in.Prompt == "" {
		out.Prompt = PromptDefault
	}
	out.MaxCallDepth = clamp(in.MaxCallDepth, MaxCallDepthMin, MaxCallDepthMax, MaxCallDepthDefault)
	out.History.Path = strings.TrimSpace(in.History.Path)
	out.History.MaxEntries = clamp(
		in.History.MaxEntries,
		HistoryMaxMin,
		HistoryMaxMax,
		HistoryMaxDefault,
	)
	return out
}

// ParseColorMode accepts the flag spelling of a color mode.
func ParseColorMode(s string) (ColorMode, bool) {
	m := normaliseColorMode(ColorMode(s), "")
	return m, m != ""
}

func normaliseColorMode(in ColorMode, def ColorMode) ColorMode {
	switch strings.ToLower(strings.TrimSpace(string(in))) {
	case string(ColorAuto):
		return ColorAuto
	case string(ColorAlways):
		return ColorAlways
	case string(ColorNever):
		return ColorNever
	default:
		return def
	}
}

func clamp[T ~int | ~float64](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
