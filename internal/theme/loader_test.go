package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"
)

func TestLoadCatalogIncludesBuiltinsAndUserThemes(t *testing.T) {
	dir := t.TempDir()

	tomlContent := []byte(heredoc.Doc(`
		syntax = "dracula"

		[metadata]
		name = "Oceanic"
		author = "QA"

		[styles.gutter]
		foreground = "#ddeeff"

		[colors]
		runtime = "#335577"
	`))
	if err := os.WriteFile(filepath.Join(dir, "oceanic.toml"), tomlContent, 0o644); err != nil {
		t.Fatalf("write toml theme: %v", err)
	}

	jsonContent := []byte(`{
  "metadata": {
    "name": "Oceanic",
    "author": "QA"
  },
  "colors": {
    "parse": "#ff9900"
  }
}`)
	if err := os.WriteFile(filepath.Join(dir, "sunset.json"), jsonContent, 0o644); err != nil {
		t.Fatalf("write json theme: %v", err)
	}

	yamlContent := []byte(heredoc.Doc(`
		styles:
		  caret:
		    underline: true
		colors:
		  type: "#00ff00"
	`))
	if err := os.WriteFile(filepath.Join(dir, "Night Owl.yaml"), yamlContent, 0o644); err != nil {
		t.Fatalf("write yaml theme: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	catalog, err := LoadCatalog([]string{dir})
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	var keys []string
	for _, def := range catalog.All() {
		keys = append(keys, def.Key)
	}
	want := []string{"default", "mono", "night-owl", "oceanic", "oceanic-1"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("expected builtins first then user themes by name, got %v", keys)
	}
	if !catalog.All()[0].Builtin() || catalog.All()[2].Builtin() {
		t.Fatalf("expected only the first two definitions to be builtins")
	}

	oceanic, ok := catalog.Get("oceanic")
	if !ok {
		t.Fatalf("expected oceanic theme to load")
	}
	if oceanic.Metadata.Author != "QA" {
		t.Fatalf("expected author QA, got %q", oceanic.Metadata.Author)
	}
	if oceanic.Theme.Kinds.Runtime != "#335577" {
		t.Fatalf("expected runtime color override, got %q", oceanic.Theme.Kinds.Runtime)
	}
	if oceanic.Theme.Syntax != "dracula" {
		t.Fatalf("expected syntax override, got %q", oceanic.Theme.Syntax)
	}

	duplicate, ok := catalog.Get("oceanic-1")
	if !ok {
		t.Fatalf("expected duplicate slug to be uniquified")
	}
	if duplicate.Theme.Kinds.Parse != "#ff9900" {
		t.Fatalf("expected JSON theme color override, got %q", duplicate.Theme.Kinds.Parse)
	}

	owl, ok := catalog.Get("night-owl")
	if !ok {
		t.Fatalf("expected the yaml theme keyed by file name")
	}
	if owl.DisplayName != "Night Owl" || owl.Format != FormatYAML || filepath.Base(owl.Path) != "Night Owl.yaml" {
		t.Fatalf("unexpected yaml definition %+v", owl)
	}
	if owl.Theme.Kinds.Type != "#00ff00" {
		t.Fatalf("expected yaml color override, got %q", owl.Theme.Kinds.Type)
	}
}

func TestLoadCatalogReportsBadThemes(t *testing.T) {
	dir := t.TempDir()
	bad := []byte(`{"colors": {"parse": "  "}}`)
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), bad, 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	catalog, err := LoadCatalog([]string{dir})
	if err == nil {
		t.Fatalf("expected an error for an empty color")
	}
	if _, ok := catalog.Get("default"); !ok {
		t.Fatalf("builtins must survive a broken user theme")
	}
}

func TestLoadCatalogHandlesMissingDirectory(t *testing.T) {
	catalog, err := LoadCatalog([]string{"/nonexistent/path"})
	if err != nil {
		t.Fatalf("LoadCatalog should not error on missing directories: %v", err)
	}
	if _, ok := catalog.Get("default"); !ok {
		t.Fatalf("expected default theme even when directories are missing")
	}
	if len(catalog.All()) != 2 {
		t.Fatalf("expected only the builtin themes, got %d", len(catalog.All()))
	}
}

func TestCatalogResolve(t *testing.T) {
	catalog, err := LoadCatalog(nil)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if th, ok := catalog.Resolve("Mono"); !ok || th.Syntax != "bw" {
		t.Fatalf("expected the mono theme, got %q %v", th.Syntax, ok)
	}
	if th, ok := catalog.Resolve(""); !ok || th.Syntax != DefaultTheme().Syntax {
		t.Fatalf("expected the default theme for a blank name")
	}
	th, ok := catalog.Resolve("solarized-dark")
	if ok {
		t.Fatalf("solarized-dark is not a catalog theme")
	}
	if th.Syntax != "solarized-dark" {
		t.Fatalf("expected unknown names to select a syntax style, got %q", th.Syntax)
	}
}

func TestLoadCatalogRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"typo.toml": "[styles.gutterr]\nbold = true\n",
		"typo.json": `{"colours": {}}`,
		"typo.yaml": "syntaxx: dracula\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	catalog, err := LoadCatalog([]string{dir})
	if err == nil {
		t.Fatalf("expected unknown keys to be rejected")
	}
	for name := range files {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected an error naming %s, got %v", name, err)
		}
	}
	if len(catalog.All()) != 2 {
		t.Fatalf("expected only the builtins, got %d definitions", len(catalog.All()))
	}
}

func TestCatalogLookupBySlug(t *testing.T) {
	dir := t.TempDir()
	body := "[metadata]\nname = \"Solar Flare\"\ndescription = \"warm\"\n"
	if err := os.WriteFile(filepath.Join(dir, "flare.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	catalog, err := LoadCatalog([]string{dir})
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	def, ok := catalog.Lookup("Solar Flare")
	if !ok || def.Key != "solar-flare" || def.Metadata.Description != "warm" {
		t.Fatalf("unexpected lookup result %+v %v", def, ok)
	}
	if _, ok := catalog.Lookup("monokai"); ok {
		t.Fatalf("chroma styles are not catalog themes")
	}
}
