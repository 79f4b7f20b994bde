package lox

import (
	"fmt"
	"slices"
	"strconv"
)

type Kind int

const (
	EOF Kind = iota

	IDENT
	NUMBER
	STRING

	KW_AND
	KW_CLASS
	KW_ELSE
	KW_FALSE
	KW_FUN
	KW_FOR
	KW_IF
	KW_NIL
	KW_OR
	KW_PRINT
	KW_RETURN
	KW_SUPER
	KW_THIS
	KW_TRUE
	KW_VAR
	KW_WHILE

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	COMMA
	DOT
	MINUS
	PLUS
	SEMI
	SLASH
	STAR

	BANG
	NE
	ASSIGN
	EQ
	GT
	GE
	LT
	LE
)

type Tok struct {
	K   Kind
	Lit string
	N   float64
	P   Pos
	End Pos
}

func (t Tok) Span() Span {
	return Span{Start: t.P, End: t.End}
}

// String renders t the way diagnostics quote it.
func (t Tok) String() string {
	switch t.K {
	case IDENT:
		return t.Lit
	case NUMBER:
		return strconv.FormatFloat(t.N, 'g', -1, 64)
	case STRING:
		return strconv.Quote(t.Lit)
	default:
		return t.K.String()
	}
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "<EOF>"
	case IDENT:
		return "IDENT"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case KW_AND:
		return "and"
	case KW_CLASS:
		return "class"
	case KW_ELSE:
		return "else"
	case KW_FALSE:
		return "false"
	case KW_FUN:
		return "fun"
	case KW_FOR:
		return "for"
	case KW_IF:
		return "if"
	case KW_NIL:
		return "nil"
	case KW_OR:
		return "or"
	case KW_PRINT:
		return "print"
	case KW_RETURN:
		return "return"
	case KW_SUPER:
		return "super"
	case KW_THIS:
		return "this"
	case KW_TRUE:
		return "true"
	case KW_VAR:
		return "var"
	case KW_WHILE:
		return "while"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case COMMA:
		return ","
	case DOT:
		return "."
	case MINUS:
		return "-"
	case PLUS:
		return "+"
	case SEMI:
		return ";"
	case SLASH:
		return "/"
	case STAR:
		return "*"
	case BANG:
		return "!"
	case NE:
		return "!="
	case ASSIGN:
		return "="
	case EQ:
		return "=="
	case GT:
		return ">"
	case GE:
		return ">="
	case LT:
		return "<"
	case LE:
		return "<="
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var kw = map[string]Kind{
	"and":    KW_AND,
	"class":  KW_CLASS,
	"else":   KW_ELSE,
	"false":  KW_FALSE,
	"fun":    KW_FUN,
	"for":    KW_FOR,
	"if":     KW_IF,
	"nil":    KW_NIL,
	"or":     KW_OR,
	"print":  KW_PRINT,
	"return": KW_RETURN,
	"super":  KW_SUPER,
	"this":   KW_THIS,
	"true":   KW_TRUE,
	"var":    KW_VAR,
	"while":  KW_WHILE,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string {
	out := make([]string, 0, len(kw))
	for k := range kw {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
