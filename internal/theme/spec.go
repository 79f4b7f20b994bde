package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Metadata struct {
	Name        string `json:"name"        toml:"name"        yaml:"name"`
	Description string `json:"description" toml:"description" yaml:"description"`
	Author      string `json:"author"      toml:"author"      yaml:"author"`
}

type ThemeSpec struct {
	Metadata *Metadata  `json:"metadata" toml:"metadata" yaml:"metadata"`
	Styles   StylesSpec `json:"styles"   toml:"styles"   yaml:"styles"`
	Colors   ColorsSpec `json:"colors"   toml:"colors"   yaml:"colors"`
	Syntax   *string    `json:"syntax"   toml:"syntax"   yaml:"syntax"`
}

type StylesSpec struct {
	Gutter  *StyleSpec `json:"gutter"  toml:"gutter"  yaml:"gutter"`
	Source  *StyleSpec `json:"source"  toml:"source"  yaml:"source"`
	Caret   *StyleSpec `json:"caret"   toml:"caret"   yaml:"caret"`
	Message *StyleSpec `json:"message" toml:"message" yaml:"message"`
	Prompt  *StyleSpec `json:"prompt"  toml:"prompt"  yaml:"prompt"`
	Input   *StyleSpec `json:"input"   toml:"input"   yaml:"input"`
	Output  *StyleSpec `json:"output"  toml:"output"  yaml:"output"`
	Hint    *StyleSpec `json:"hint"    toml:"hint"    yaml:"hint"`
	Error   *StyleSpec `json:"error"   toml:"error"   yaml:"error"`
	Success *StyleSpec `json:"success" toml:"success" yaml:"success"`
	Frame   *StyleSpec `json:"frame"   toml:"frame"   yaml:"frame"`
	Header  *StyleSpec `json:"header"  toml:"header"  yaml:"header"`
}

// ColorsSpec overrides the per-kind diagnostic colors.
type ColorsSpec struct {
	Scan    *string `json:"scan"    toml:"scan"    yaml:"scan"`
	Parse   *string `json:"parse"   toml:"parse"   yaml:"parse"`
	Runtime *string `json:"runtime" toml:"runtime" yaml:"runtime"`
	Type    *string `json:"type"    toml:"type"    yaml:"type"`
}

type StyleSpec struct {
	Foreground       *string `json:"foreground"        toml:"foreground"        yaml:"foreground"`
	Background       *string `json:"background"        toml:"background"        yaml:"background"`
	BorderColor      *string `json:"border_color"      toml:"border_color"      yaml:"border_color"`
	BorderBackground *string `json:"border_background" toml:"border_background" yaml:"border_background"`
	BorderStyle      *string `json:"border_style"      toml:"border_style"      yaml:"border_style"`
	Bold             *bool   `json:"bold"              toml:"bold"              yaml:"bold"`
	Italic           *bool   `json:"italic"            toml:"italic"            yaml:"italic"`
	Underline        *bool   `json:"underline"         toml:"underline"         yaml:"underline"`
	Faint            *bool   `json:"faint"             toml:"faint"             yaml:"faint"`
	Strikethrough    *bool   `json:"strikethrough"     toml:"strikethrough"     yaml:"strikethrough"`
	Align            *string `json:"align"             toml:"align"             yaml:"align"`
}

// ApplySpec layers spec over base. The first invalid value aborts with an
// error naming the field.
func ApplySpec(base Theme, spec ThemeSpec) (Theme, error) {
	out := base

	apply := func(name string, target *lipgloss.Style, override *StyleSpec) error {
		if override == nil {
			return nil
		}
		next, err := override.apply(*target)
		if err != nil {
			return fmt.Errorf("styles.%s: %w", name, err)
		}
		*target = next
		return nil
	}

	styles := []struct {
		name   string
		target *lipgloss.Style
		spec   *StyleSpec
	}{
		{"gutter", &out.Gutter, spec.Styles.Gutter},
		{"source", &out.Source, spec.Styles.Source},
		{"caret", &out.Caret, spec.Styles.Caret},
		{"message", &out.Message, spec.Styles.Message},
		{"prompt", &out.Prompt, spec.Styles.Prompt},
		{"input", &out.Input, spec.Styles.Input},
		{"output", &out.Output, spec.Styles.Output},
		{"hint", &out.Hint, spec.Styles.Hint},
		{"error", &out.Error, spec.Styles.Error},
		{"success", &out.Success, spec.Styles.Success},
		{"frame", &out.Frame, spec.Styles.Frame},
		{"header", &out.Header, spec.Styles.Header},
	}
	for _, st := range styles {
		if err := apply(st.name, st.target, st.spec); err != nil {
			return Theme{}, err
		}
	}

	colors := []struct {
		name   string
		target *lipgloss.Color
		value  *string
	}{
		{"colors.scan", &out.Kinds.Scan, spec.Colors.Scan},
		{"colors.parse", &out.Kinds.Parse, spec.Colors.Parse},
		{"colors.runtime", &out.Kinds.Runtime, spec.Colors.Runtime},
		{"colors.type", &out.Kinds.Type, spec.Colors.Type},
	}
	for _, c := range colors {
		if c.value == nil {
			continue
		}
		color, err := toColor(c.name, *c.value)
		if err != nil {
			return Theme{}, err
		}
		*c.target = color
	}

	if spec.Syntax != nil {
		name := strings.TrimSpace(*spec.Syntax)
		if name == "" {
			return Theme{}, fmt.Errorf("syntax: style name may not be empty")
		}
		out.Syntax = name
	}
	return out, nil
}

func (s *StyleSpec) apply(base lipgloss.Style) (lipgloss.Style, error) {
	if s == nil {
		return base, nil
	}
	current := base
	if s.Foreground != nil {
		color, err := toColor("foreground", *s.Foreground)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.Foreground(color)
	}
	if s.Background != nil {
		color, err := toColor("background", *s.Background)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.Background(color)
	}
	if s.BorderColor != nil {
		color, err := toColor("border_color", *s.BorderColor)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.BorderForeground(color)
	}
	if s.BorderBackground != nil {
		color, err := toColor("border_background", *s.BorderBackground)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.BorderBackground(color)
	}
	if s.BorderStyle != nil {
		normalized := strings.ToLower(strings.TrimSpace(*s.BorderStyle))
		if normalized != "inherit" {
			border, err := parseBorderStyle(normalized)
			if err != nil {
				return lipgloss.Style{}, err
			}
			current = current.BorderStyle(border)
		}
	}
	if s.Bold != nil {
		current = current.Bold(*s.Bold)
	}
	if s.Italic != nil {
		current = current.Italic(*s.Italic)
	}
	if s.Underline != nil {
		current = current.Underline(*s.Underline)
	}
	if s.Faint != nil {
		current = current.Faint(*s.Faint)
	}
	if s.Strikethrough != nil {
		current = current.Strikethrough(*s.Strikethrough)
	}
	if s.Align != nil {
		align, err := parseAlign(*s.Align)
		if err != nil {
			return lipgloss.Style{}, err
		}
		current = current.Align(align)
	}
	return current, nil
}

func toColor(field string, value string) (lipgloss.Color, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s: colour value may not be empty", field)
	}
	return lipgloss.Color(trimmed), nil
}

func parseAlign(value string) (lipgloss.Position, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "start", "default", "":
		return lipgloss.Left, nil
	case "center", "centre", "middle":
		return lipgloss.Center, nil
	case "right", "end":
		return lipgloss.Right, nil
	default:
		return lipgloss.Left, fmt.Errorf("align: unknown alignment %q", value)
	}
}

func parseBorderStyle(value string) (lipgloss.Border, error) {
	switch value {
	case "":
		return lipgloss.Border{}, fmt.Errorf("border_style: value may not be empty")
	case "none", "hidden", "off":
		return lipgloss.Border{}, nil
	case "normal", "single":
		return lipgloss.NormalBorder(), nil
	case "rounded":
		return lipgloss.RoundedBorder(), nil
	case "thick", "heavy":
		return lipgloss.ThickBorder(), nil
	case "double":
		return lipgloss.DoubleBorder(), nil
	case "ascii":
		return lipgloss.Border{
			Top:         "-",
			Bottom:      "-",
			Left:        "|",
			Right:       "|",
			TopLeft:     "+",
			TopRight:    "+",
			BottomLeft:  "+",
			BottomRight: "+",
		}, nil
	case "block":
		return lipgloss.BlockBorder(), nil
	default:
		return lipgloss.Border{}, fmt.Errorf("border_style: unknown border style %q", value)
	}
}
