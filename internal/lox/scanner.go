package lox

import (
	"iter"
	"strconv"
	"strings"
)

const eofRune rune = -1

// Scanner turns source lines into tokens on demand. Line breaks between
// lines act as whitespace; they are not characters of either line.
type Scanner struct {
	lines [][]rune
	ln    int
	col   int
	last  Pos
	rep   Reporter
	eof   *Tok
	cut   bool
}

func NewScanner(lines []string, rep Reporter) *Scanner {
	if rep == nil {
		rep = nopReporter{}
	}
	rs := make([][]rune, len(lines))
	for i, l := range lines {
		rs[i] = []rune(l)
	}
	return &Scanner{lines: rs, rep: rep}
}

// SplitLines breaks src into lines, dropping carriage returns and a single
// trailing newline.
func SplitLines(src string) []string {
	if src == "" {
		return nil
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.TrimSuffix(src, "\n")
	return strings.Split(src, "\n")
}

// All yields tokens up to and including EOF.
func (s *Scanner) All() iter.Seq[Tok] {
	return func(yield func(Tok) bool) {
		for {
			t := s.Next()
			if !yield(t) || t.K == EOF {
				return
			}
		}
	}
}

// Truncated reports whether input ended inside a token. The scanner has
// already reported that token.
func (s *Scanner) Truncated() bool {
	return s.cut
}

// Next returns the next token. Once input is exhausted it keeps returning
// the same EOF token.
func (s *Scanner) Next() Tok {
	for {
		if s.eof != nil {
			return *s.eof
		}

		ch := s.peek()
		if ch == eofRune {
			var p Pos
			if !s.last.IsZero() {
				p = Pos{Line: s.last.Line, Col: s.last.Col + 1}
			}
			s.eof = &Tok{K: EOF, P: p, End: p}
			continue
		}

		if isSpace(ch) {
			s.read()
			continue
		}

		p := s.pos()
		switch ch {
		case '(':
			s.read()
			return s.emit(LPAREN, p)
		case ')':
			s.read()
			return s.emit(RPAREN, p)
		case '{':
			s.read()
			return s.emit(LBRACE, p)
		case '}':
			s.read()
			return s.emit(RBRACE, p)
		case ',':
			s.read()
			return s.emit(COMMA, p)
		case '.':
			s.read()
			return s.emit(DOT, p)
		case '-':
			s.read()
			return s.emit(MINUS, p)
		case '+':
			s.read()
			return s.emit(PLUS, p)
		case ';':
			s.read()
			return s.emit(SEMI, p)
		case '*':
			s.read()
			return s.emit(STAR, p)
		case '!':
			s.read()
			if s.match('=') {
				return s.emit(NE, p)
			}
			return s.emit(BANG, p)
		case '=':
			s.read()
			if s.match('=') {
				return s.emit(EQ, p)
			}
			return s.emit(ASSIGN, p)
		case '<':
			s.read()
			if s.match('=') {
				return s.emit(LE, p)
			}
			return s.emit(LT, p)
		case '>':
			s.read()
			if s.match('=') {
				return s.emit(GE, p)
			}
			return s.emit(GT, p)
		case '/':
			s.read()
			if s.match('/') {
				s.skipComment()
				continue
			}
			return s.emit(SLASH, p)
		case '"':
			if t, ok := s.scanString(p); ok {
				return t
			}
			continue
		}

		if isDigit(ch) {
			return s.scanNumber(p)
		}

		if isIdentStart(ch) {
			name := s.scanIdent()
			k, ok := kw[name]
			if !ok {
				k = IDENT
			}
			t := s.emit(k, p)
			t.Lit = name
			return t
		}

		s.read()
		s.rep.Report(Diagnostic{
			Kind: ScanError,
			Span: At(p),
			Msg:  "`" + string(ch) + "`: unexpected character",
		})
	}
}

func (s *Scanner) pos() Pos {
	return Pos{Line: s.ln + 1, Col: s.col + 1}
}

func (s *Scanner) emit(k Kind, p Pos) Tok {
	return Tok{K: k, Lit: k.String(), P: p, End: s.last}
}

// peek returns the next rune, '\n' at a line break, or eofRune.
func (s *Scanner) peek() rune {
	if s.ln >= len(s.lines) {
		return eofRune
	}
	if s.col < len(s.lines[s.ln]) {
		return s.lines[s.ln][s.col]
	}
	if s.ln == len(s.lines)-1 {
		return eofRune
	}
	return '\n'
}

// peekNext looks one rune past peek without leaving the current line.
func (s *Scanner) peekNext() rune {
	if s.ln >= len(s.lines) || s.col+1 >= len(s.lines[s.ln]) {
		return eofRune
	}
	return s.lines[s.ln][s.col+1]
}

func (s *Scanner) read() rune {
	ch := s.peek()
	switch ch {
	case eofRune:
	case '\n':
		s.ln++
		s.col = 0
	default:
		s.last = s.pos()
		s.col++
	}
	return ch
}

func (s *Scanner) match(want rune) bool {
	if s.peek() != want {
		return false
	}
	s.read()
	return true
}

func (s *Scanner) skipComment() {
	for {
		ch := s.peek()
		if ch == eofRune || ch == '\n' {
			return
		}
		s.read()
	}
}

func (s *Scanner) scanIdent() string {
	var b strings.Builder
	b.WriteRune(s.read())
	for isIdent(s.peek()) {
		b.WriteRune(s.read())
	}
	return b.String()
}

func (s *Scanner) scanNumber(p Pos) Tok {
	var b strings.Builder
	b.WriteRune(s.read())
	for isDigit(s.peek()) {
		b.WriteRune(s.read())
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		b.WriteRune(s.read())
		for isDigit(s.peek()) {
			b.WriteRune(s.read())
		}
	}
	lit := b.String()
	n, _ := strconv.ParseFloat(lit, 64)
	t := s.emit(NUMBER, p)
	t.Lit = lit
	t.N = n
	return t
}

func (s *Scanner) scanString(p Pos) (Tok, bool) {
	s.read()
	var b strings.Builder
	for {
		ch := s.peek()
		if ch == eofRune {
			s.cut = true
			s.rep.Report(Diagnostic{
				Kind: ScanError,
				Span: Span{Start: p, End: s.last},
				Msg:  "Unterminated string",
			})
			return Tok{}, false
		}
		s.read()
		if ch == '"' {
			break
		}
		b.WriteRune(ch)
	}
	t := s.emit(STRING, p)
	t.Lit = b.String()
	return t, true
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdent(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
