package lox

import (
	"fmt"
	"iter"
)

const maxArgs = 255

type TokenSource interface {
	Next() Tok
}

type truncater interface {
	Truncated() bool
}

// Parser pulls tokens with a single token of lookahead and hands out one
// statement at a time. A malformed declaration is reported and skipped.
type Parser struct {
	src TokenSource
	rep Reporter
	cur Tok
}

func NewParser(src TokenSource, rep Reporter) *Parser {
	if rep == nil {
		rep = nopReporter{}
	}
	p := &Parser{src: src, rep: rep}
	p.cur = src.Next()
	return p
}

// Parse scans and parses lines in one go.
func Parse(lines []string, rep Reporter) []Stmt {
	p := NewParser(NewScanner(lines, rep), rep)
	var out []Stmt
	for st := range p.All() {
		out = append(out, st)
	}
	return out
}

// Next returns the next well-formed statement, or false at end of input.
func (p *Parser) Next() (Stmt, bool) {
	for p.cur.K != EOF {
		if st := p.declaration(); st != nil {
			return st, true
		}
	}
	return nil, false
}

func (p *Parser) All() iter.Seq[Stmt] {
	return func(yield func(Stmt) bool) {
		for {
			st, ok := p.Next()
			if !ok || !yield(st) {
				return
			}
		}
	}
}

func (p *Parser) declaration() (st Stmt) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			if !p.endedInToken() {
				p.rep.Report(Diagnostic{Kind: pe.Kind, Span: pe.Span, Msg: pe.Msg})
			}
			p.sync()
			st = nil
		}
	}()

	switch p.cur.K {
	case KW_VAR:
		p.next()
		return p.varDecl()
	case KW_FUN:
		p.next()
		return p.funDecl()
	}
	return p.statement()
}

func (p *Parser) varDecl() Stmt {
	name := p.expect(IDENT, "Expected variable name")
	var init Expr
	if p.cur.K == ASSIGN {
		p.next()
		init = p.expression()
	} else {
		init = &Literal{Sp: name.Span(), Kind: LitNil}
	}
	p.expect(SEMI, fmt.Sprintf("Expected `;` after variable `%s` declaration", name.Lit))
	return &VarDecl{Sp: name.Span(), Name: name.Lit, Init: init}
}

func (p *Parser) funDecl() Stmt {
	name := p.expect(IDENT, "Expected function name")
	p.expect(LPAREN, "Expected `(` after function name")

	var params []string
	if p.cur.K != RPAREN {
		for {
			if len(params) >= maxArgs {
				p.fail(p.cur.Span(), "Can't have more than 255 parameters")
			}
			params = append(params, p.expect(IDENT, "Expected parameter name").Lit)
			if p.cur.K != COMMA {
				break
			}
			p.next()
		}
	}
	p.expect(RPAREN, "Expected `)` after parameters")

	if p.cur.K != LBRACE {
		p.fail(p.cur.Span(), "Expected `{` before function body")
	}
	body := p.block()
	return &FunDecl{Sp: name.Span(), Name: name.Lit, Params: params, Body: body}
}

func (p *Parser) statement() Stmt {
	switch p.cur.K {
	case KW_PRINT:
		kwt := p.next()
		x := p.expression()
		p.expect(SEMI, "Expected `;` after statement")
		return &Print{Sp: kwt.Span(), X: x}
	case KW_RETURN:
		kwt := p.next()
		var x Expr
		if p.cur.K != SEMI {
			x = p.expression()
		}
		p.expect(SEMI, "Expected `;` after return")
		return &Return{Sp: kwt.Span(), X: x}
	case KW_WHILE:
		kwt := p.next()
		p.expect(LPAREN, "Expected `(` after while")
		cond := p.expression()
		p.expect(RPAREN, "Expected `)` after condition")
		body := p.statement()
		return &While{Sp: kwt.Span(), Cond: cond, Body: body}
	case KW_FOR:
		return p.forStmt()
	case KW_IF:
		kwt := p.next()
		p.expect(LPAREN, "Expected `(` after if")
		cond := p.expression()
		p.expect(RPAREN, "Expected `)` after condition")
		then := p.statement()
		var els Stmt
		if p.cur.K == KW_ELSE {
			p.next()
			els = p.statement()
		}
		return &If{Sp: kwt.Span(), Cond: cond, Then: then, Else: els}
	case LBRACE:
		return p.block()
	}
	return p.exprStmt()
}

func (p *Parser) exprStmt() Stmt {
	x := p.expression()
	p.expect(SEMI, "Expected `;` after statement")
	return &ExprStmt{Sp: x.Span(), X: x}
}

// forStmt lowers a for loop onto Block and While.
func (p *Parser) forStmt() Stmt {
	kwt := p.next()
	p.expect(LPAREN, "Expected `(` after `for`")

	var init Stmt
	switch p.cur.K {
	case SEMI:
		p.next()
	case KW_VAR:
		p.next()
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond Expr
	if p.cur.K != SEMI {
		cond = p.expression()
	}
	p.expect(SEMI, "Expected `;` after loop condition")

	var post Expr
	if p.cur.K != RPAREN {
		post = p.expression()
	}
	p.expect(RPAREN, "Expected `)` after the clauses")

	body := p.statement()
	if post != nil {
		body = &Block{
			Sp:    body.Span(),
			Stmts: []Stmt{body, &ExprStmt{Sp: post.Span(), X: post}},
		}
	}
	if cond == nil {
		cond = &Literal{Sp: kwt.Span(), Kind: LitBool, B: true}
	}

	var loop Stmt = &While{Sp: kwt.Span(), Cond: cond, Body: body}
	if init != nil {
		loop = &Block{Sp: kwt.Span(), Stmts: []Stmt{init, loop}}
	}
	return loop
}

func (p *Parser) block() *Block {
	open := p.expect(LBRACE, "Expected `{`")
	var out []Stmt
	for p.cur.K != RBRACE && p.cur.K != EOF {
		if st := p.declaration(); st != nil {
			out = append(out, st)
		}
	}
	closing := p.expect(RBRACE, "Expected `}` after block")
	return &Block{Sp: open.Span().Join(closing.Span()), Stmts: out}
}

func (p *Parser) expression() Expr {
	return p.assignment()
}

func (p *Parser) assignment() Expr {
	ex := p.or()
	if p.cur.K != ASSIGN {
		return ex
	}

	eq := p.next()
	val := p.assignment()
	if v, ok := ex.(*Variable); ok {
		return &Assign{Sp: v.Sp, Name: v.Name, Value: val}
	}
	p.rep.Report(Diagnostic{Kind: ParseError, Span: eq.Span(), Msg: "Invalid assignment target"})
	return ex
}

func (p *Parser) or() Expr {
	left := p.and()
	for p.cur.K == KW_OR {
		op := p.next()
		right := p.and()
		left = &Logical{Sp: op.Span(), Op: OpOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) and() Expr {
	left := p.equality()
	for p.cur.K == KW_AND {
		op := p.next()
		right := p.equality()
		left = &Logical{Sp: op.Span(), Op: OpAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) equality() Expr {
	left := p.comparison()
	for p.cur.K == EQ || p.cur.K == NE {
		op := p.next()
		right := p.comparison()
		left = &Binary{Sp: op.Span(), Op: binOps[op.K], Left: left, Right: right}
	}
	return left
}

func (p *Parser) comparison() Expr {
	left := p.term()
	for p.cur.K == GT || p.cur.K == GE || p.cur.K == LT || p.cur.K == LE {
		op := p.next()
		right := p.term()
		left = &Binary{Sp: op.Span(), Op: binOps[op.K], Left: left, Right: right}
	}
	return left
}

func (p *Parser) term() Expr {
	left := p.factor()
	for p.cur.K == MINUS || p.cur.K == PLUS {
		op := p.next()
		right := p.factor()
		left = &Binary{Sp: op.Span(), Op: binOps[op.K], Left: left, Right: right}
	}
	return left
}

func (p *Parser) factor() Expr {
	left := p.unary()
	for p.cur.K == SLASH || p.cur.K == STAR {
		op := p.next()
		right := p.unary()
		left = &Binary{Sp: op.Span(), Op: binOps[op.K], Left: left, Right: right}
	}
	return left
}

var binOps = map[Kind]BinOp{
	PLUS:  OpAdd,
	MINUS: OpSub,
	STAR:  OpMul,
	SLASH: OpDiv,
	EQ:    OpEq,
	NE:    OpNe,
	LT:    OpLt,
	LE:    OpLe,
	GT:    OpGt,
	GE:    OpGe,
}

func (p *Parser) unary() Expr {
	switch p.cur.K {
	case BANG:
		op := p.next()
		return &Unary{Sp: op.Span(), Op: UnNot, X: p.unary()}
	case MINUS:
		op := p.next()
		return &Unary{Sp: op.Span(), Op: UnNeg, X: p.unary()}
	}
	return p.call()
}

func (p *Parser) call() Expr {
	ex := p.primary()
	for p.cur.K == LPAREN {
		p.next()
		args := p.args()
		rp := p.expect(RPAREN, "Expected `)` after arguments")
		ex = &Call{Sp: ex.Span().Join(rp.Span()), Callee: ex, Args: args}
	}
	return ex
}

func (p *Parser) args() []Expr {
	if p.cur.K == RPAREN {
		return nil
	}
	var out []Expr
	for {
		if len(out) >= maxArgs {
			p.fail(p.cur.Span(), "Cannot have more than 255 arguments")
		}
		out = append(out, p.expression())
		if p.cur.K != COMMA {
			return out
		}
		p.next()
	}
}

func (p *Parser) primary() Expr {
	t := p.cur
	switch t.K {
	case NUMBER:
		p.next()
		return &Literal{Sp: t.Span(), Kind: LitNum, N: t.N}
	case STRING:
		p.next()
		return &Literal{Sp: t.Span(), Kind: LitStr, S: t.Lit}
	case KW_TRUE, KW_FALSE:
		p.next()
		return &Literal{Sp: t.Span(), Kind: LitBool, B: t.K == KW_TRUE}
	case KW_NIL:
		p.next()
		return &Literal{Sp: t.Span(), Kind: LitNil}
	case IDENT:
		p.next()
		return &Variable{Sp: t.Span(), Name: t.Lit}
	case LPAREN:
		p.next()
		x := p.expression()
		rp := p.expect(RPAREN, "Expected `)` after expression")
		return &Grouping{Sp: t.Span().Join(rp.Span()), X: x}
	}
	p.fail(t.Span(), fmt.Sprintf("Expected expression. Found `%s`", t))
	return nil
}

// sync discards tokens until just past a `;` or just before a token that
// starts a declaration or statement.
func (p *Parser) sync() {
	for p.cur.K != EOF {
		if p.next().K == SEMI {
			return
		}
		switch p.cur.K {
		case KW_CLASS, KW_FUN, KW_VAR, KW_FOR, KW_IF, KW_WHILE, KW_PRINT, KW_RETURN:
			return
		}
	}
}

// endedInToken reports a statement cut off by input that stopped inside a
// token. The scanner's diagnostic covers it.
func (p *Parser) endedInToken() bool {
	if p.cur.K != EOF {
		return false
	}
	tr, ok := p.src.(truncater)
	return ok && tr.Truncated()
}

func (p *Parser) next() Tok {
	t := p.cur
	if t.K != EOF {
		p.cur = p.src.Next()
	}
	return t
}

func (p *Parser) expect(k Kind, msg string) Tok {
	if p.cur.K != k {
		p.fail(p.cur.Span(), msg)
	}
	return p.next()
}

func (p *Parser) fail(sp Span, msg string) {
	panic(&Error{Kind: ParseError, Span: sp, Msg: msg})
}
