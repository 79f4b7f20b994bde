package theme

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the file format a user theme was read from. Builtins have none.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

var formatByExt = map[string]Format{
	".json": FormatJSON,
	".toml": FormatTOML,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
}

type Definition struct {
	Key         string
	DisplayName string
	Metadata    Metadata
	Theme       Theme
	Format      Format
	Path        string
}

// Builtin reports whether d ships with loxterm rather than coming from a
// theme file.
func (d Definition) Builtin() bool {
	return d.Path == ""
}

// Catalog holds the builtins first, then user themes ordered by display
// name.
type Catalog struct {
	defs  []Definition
	byKey map[string]int
}

func (c Catalog) All() []Definition {
	return slices.Clone(c.defs)
}

func (c Catalog) Get(key string) (Definition, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Lookup finds name as a key, then as the key a theme of that name would
// get. A blank name is the default theme.
func (c Catalog) Lookup(name string) (Definition, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	if def, ok := c.Get(name); ok {
		return def, true
	}
	return c.Get(slugify(name))
}

// Resolve returns the theme called name. Any other name is taken as a
// syntax style for the default theme, so chroma style names work without a
// theme file.
func (c Catalog) Resolve(name string) (Theme, bool) {
	if def, ok := c.Lookup(name); ok {
		return def.Theme, true
	}
	t := DefaultTheme()
	t.Syntax = strings.TrimSpace(name)
	return t, false
}

func (c *Catalog) add(def Definition) {
	if c.byKey == nil {
		c.byKey = make(map[string]int)
	}
	c.byKey[def.Key] = len(c.defs)
	c.defs = append(c.defs, def)
}

func builtins() []Definition {
	return []Definition{
		{
			Key:         "default",
			DisplayName: "Default",
			Metadata: Metadata{
				Name:        "Default",
				Description: "Colored carets by diagnostic kind",
			},
			Theme: DefaultTheme(),
		},
		{
			Key:         "mono",
			DisplayName: "Mono",
			Metadata: Metadata{
				Name:        "Mono",
				Description: "No colors, bold carets only",
			},
			Theme: MonoTheme(),
		},
	}
}

// LoadCatalog adds every theme file found in dirs to the builtins. Files
// that fail to load are left out and reported in the returned error; the
// catalog is usable either way.
func LoadCatalog(dirs []string) (Catalog, error) {
	defs := builtins()
	taken := make(map[string]bool, len(defs))
	for _, def := range defs {
		taken[def.Key] = true
	}

	var (
		user []Definition
		errs []error
	)
	for _, dir := range dirs {
		found, err := readThemeDir(dir)
		if err != nil {
			errs = append(errs, err)
		}
		for _, def := range found {
			def.Key = claimKey(def.Key, taken)
			user = append(user, def)
		}
	}
	slices.SortStableFunc(user, func(a, b Definition) int {
		if c := cmp.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	var catalog Catalog
	for _, def := range append(defs, user...) {
		catalog.add(def)
	}
	return catalog, errors.Join(errs...)
}

func readThemeDir(dir string) ([]Definition, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("themes: read directory %q: %w", dir, err)
	}

	var (
		defs []Definition
		errs []error
	)
	for _, entry := range entries {
		format, ok := formatByExt[strings.ToLower(filepath.Ext(entry.Name()))]
		if entry.IsDir() || !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		def, err := readTheme(path, format)
		if err != nil {
			errs = append(errs, fmt.Errorf("themes: load %q: %w", path, err))
			continue
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

// readTheme layers one theme file over the default theme. The theme is
// named by its metadata, or by its file name when the metadata has none.
func readTheme(path string, format Format) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	var spec ThemeSpec
	if err := decodeSpec(data, format, &spec); err != nil {
		return Definition{}, err
	}
	th, err := ApplySpec(DefaultTheme(), spec)
	if err != nil {
		return Definition{}, err
	}

	var meta Metadata
	if spec.Metadata != nil {
		meta = *spec.Metadata
	}
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Definition{
		Key:         slugify(name),
		DisplayName: name,
		Metadata:    meta,
		Theme:       th,
		Format:      format,
		Path:        path,
	}, nil
}

func decodeSpec(data []byte, format Format, spec *ThemeSpec) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(spec)
	case FormatTOML:
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(spec)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(spec); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("decode: unsupported format %q", format)
	}
}

// claimKey returns key, or key-N with the lowest free N once key is taken.
func claimKey(key string, taken map[string]bool) string {
	if key == "" {
		key = "theme"
	}
	out := key
	for n := 1; taken[out]; n++ {
		out = fmt.Sprintf("%s-%d", key, n)
	}
	taken[out] = true
	return out
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && (r == '-' || r == '_' || unicode.IsSpace(r)):
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
