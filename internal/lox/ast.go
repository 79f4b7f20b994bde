package lox

type Stmt interface {
	stmtNode()
	Span() Span
}

type Expr interface {
	exprNode()
	Span() Span
}

type LitKind int

const (
	LitNil LitKind = iota
	LitBool
	LitNum
	LitStr
)

type Literal struct {
	Sp   Span
	Kind LitKind
	B    bool
	N    float64
	S    string
}

func (*Literal) exprNode()    {}
func (e *Literal) Span() Span { return e.Sp }

type Variable struct {
	Sp   Span
	Name string
}

func (*Variable) exprNode()    {}
func (e *Variable) Span() Span { return e.Sp }

// Assign stores into an existing binding; Sp covers the target name.
type Assign struct {
	Sp    Span
	Name  string
	Value Expr
}

func (*Assign) exprNode()    {}
func (e *Assign) Span() Span { return e.Sp }

type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
)

type Unary struct {
	Sp Span
	Op UnOp
	X  Expr
}

func (*Unary) exprNode()    {}
func (e *Unary) Span() Span { return e.Sp }

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Binary carries the span of its operator token.
type Binary struct {
	Sp    Span
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode()    {}
func (e *Binary) Span() Span { return e.Sp }

type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
)

type Logical struct {
	Sp    Span
	Op    LogicOp
	Left  Expr
	Right Expr
}

func (*Logical) exprNode()    {}
func (e *Logical) Span() Span { return e.Sp }

type Grouping struct {
	Sp Span
	X  Expr
}

func (*Grouping) exprNode()    {}
func (e *Grouping) Span() Span { return e.Sp }

// Call keeps the span from the callee to the closing paren so arity and
// callee errors point at the whole call site.
type Call struct {
	Sp     Span
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode()    {}
func (e *Call) Span() Span { return e.Sp }

type ExprStmt struct {
	Sp Span
	X  Expr
}

func (*ExprStmt) stmtNode()    {}
func (s *ExprStmt) Span() Span { return s.Sp }

type Print struct {
	Sp Span
	X  Expr
}

func (*Print) stmtNode()    {}
func (s *Print) Span() Span { return s.Sp }

type Return struct {
	Sp Span
	X  Expr
}

func (*Return) stmtNode()    {}
func (s *Return) Span() Span { return s.Sp }

type VarDecl struct {
	Sp   Span
	Name string
	Init Expr
}

func (*VarDecl) stmtNode()    {}
func (s *VarDecl) Span() Span { return s.Sp }

type Block struct {
	Sp    Span
	Stmts []Stmt
}

func (*Block) stmtNode()    {}
func (s *Block) Span() Span { return s.Sp }

type If struct {
	Sp   Span
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*If) stmtNode()    {}
func (s *If) Span() Span { return s.Sp }

type While struct {
	Sp   Span
	Cond Expr
	Body Stmt
}

func (*While) stmtNode()    {}
func (s *While) Span() Span { return s.Sp }

type FunDecl struct {
	Sp     Span
	Name   string
	Params []string
	Body   *Block
}

func (*FunDecl) stmtNode()    {}
func (s *FunDecl) Span() Span { return s.Sp }
