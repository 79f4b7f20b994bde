// Package highlight colors source text for terminals using chroma.
package highlight

import (
	"bytes"
	"io"
	"slices"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"
	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/loxterm/internal/lox"
)

// Lexer tokenises loxterm source. It mirrors the scanner closely enough for
// display and never fails: anything it does not know becomes an Error token.
var Lexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "Lox",
		Aliases:   []string{"lox"},
		Filenames: []string{"*.lox"},
		MimeTypes: []string{"text/x-lox"},
	},
	chroma.Rules{"root": rootRules()},
)

var (
	declWords  = []string{"class", "fun", "var"}
	constWords = []string{"false", "nil", "true"}
	selfWords  = []string{"super", "this"}
)

func rootRules() []chroma.Rule {
	rules := []chroma.Rule{
		{Pattern: `\s+`, Type: chroma.Text},
		{Pattern: `//[^\n]*`, Type: chroma.CommentSingle},
		{Pattern: `"[^"]*"?`, Type: chroma.LiteralString},
		{Pattern: `\d+(\.\d+)?`, Type: chroma.LiteralNumber},
		{
			Pattern: `(fun)(\s+)([A-Za-z_]\w*)`,
			Type:    chroma.ByGroups(chroma.KeywordDeclaration, chroma.Text, chroma.NameFunction),
		},
		{
			Pattern: `(class)(\s+)([A-Za-z_]\w*)`,
			Type:    chroma.ByGroups(chroma.KeywordDeclaration, chroma.Text, chroma.NameClass),
		},
		{Pattern: chroma.Words(`\b`, `\b`, declWords...), Type: chroma.KeywordDeclaration},
		{Pattern: chroma.Words(`\b`, `\b`, constWords...), Type: chroma.KeywordConstant},
		{Pattern: chroma.Words(`\b`, `\b`, selfWords...), Type: chroma.NameBuiltinPseudo},
	}
	// every other reserved word of the scanner is a plain keyword
	var plain []string
	for _, w := range lox.Keywords() {
		if !slices.Contains(declWords, w) && !slices.Contains(constWords, w) && !slices.Contains(selfWords, w) {
			plain = append(plain, w)
		}
	}
	if len(plain) > 0 {
		rules = append(rules, chroma.Rule{Pattern: chroma.Words(`\b`, `\b`, plain...), Type: chroma.Keyword})
	}
	return append(rules,
		chroma.Rule{Pattern: `clock\b`, Type: chroma.NameBuiltin},
		chroma.Rule{Pattern: `[A-Za-z_]\w*`, Type: chroma.Name},
		chroma.Rule{Pattern: `==|!=|<=|>=|[-+*/=<>!]`, Type: chroma.Operator},
		chroma.Rule{Pattern: `[(){},.;]`, Type: chroma.Punctuation},
		chroma.Rule{Pattern: `.`, Type: chroma.Error},
	)
}

// HasStyle reports whether name is a registered chroma style.
func HasStyle(name string) bool {
	_, ok := styles.Registry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func formatterFor(p termenv.Profile) chroma.Formatter {
	switch p {
	case termenv.TrueColor:
		return formatters.TTY16m
	case termenv.ANSI256:
		return formatters.TTY256
	case termenv.ANSI:
		return formatters.TTY8
	default:
		return formatters.NoOp
	}
}

// Write highlights src with the named style for the given color profile.
// Unknown styles use chroma's fallback; the Ascii profile writes src as is.
func Write(w io.Writer, src, style string, p termenv.Profile) error {
	if src != "" && !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	it, err := Lexer.Tokenise(nil, src)
	if err != nil {
		return err
	}
	return formatterFor(p).Format(w, styles.Get(style), it)
}

// Line highlights a single line. On any error the line comes back plain.
func Line(s, style string, p termenv.Profile) string {
	if s == "" || p == termenv.Ascii {
		return s
	}
	var buf bytes.Buffer
	if err := Write(&buf, s, style, p); err != nil {
		return s
	}
	out := buf.String()
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		out = out[:i] + out[i+1:]
	}
	return out
}

// SourcePainter highlights the echoed source of a diagnostic and leaves
// every other piece to the wrapped painter.
type SourcePainter struct {
	lox.Painter
	Style   string
	Profile termenv.Profile
}

func (p SourcePainter) Source(s string) string {
	return Line(s, p.Style, p.Profile)
}
