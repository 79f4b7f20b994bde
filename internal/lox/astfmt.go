package lox

import (
	"strconv"
	"strings"
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

func (op UnOp) String() string {
	if op == UnNot {
		return "!"
	}
	return "-"
}

func (op LogicOp) String() string {
	if op == OpOr {
		return "or"
	}
	return "and"
}

// Dump renders a statement as an s-expression.
func Dump(st Stmt) string {
	var b strings.Builder
	dumpStmt(&b, st)
	return b.String()
}

// DumpExpr renders an expression as an s-expression.
func DumpExpr(ex Expr) string {
	var b strings.Builder
	dumpExpr(&b, ex)
	return b.String()
}

func dumpStmt(b *strings.Builder, st Stmt) {
	switch s := st.(type) {
	case *ExprStmt:
		dumpExpr(b, s.X)
	case *Print:
		b.WriteString("(print ")
		dumpExpr(b, s.X)
		b.WriteByte(')')
	case *Return:
		b.WriteString("(return")
		if s.X != nil {
			b.WriteByte(' ')
			dumpExpr(b, s.X)
		}
		b.WriteByte(')')
	case *VarDecl:
		b.WriteString("(var " + s.Name + " ")
		dumpExpr(b, s.Init)
		b.WriteByte(')')
	case *Block:
		b.WriteString("(block")
		for _, it := range s.Stmts {
			b.WriteByte(' ')
			dumpStmt(b, it)
		}
		b.WriteByte(')')
	case *If:
		b.WriteString("(if ")
		dumpExpr(b, s.Cond)
		b.WriteByte(' ')
		dumpStmt(b, s.Then)
		if s.Else != nil {
			b.WriteByte(' ')
			dumpStmt(b, s.Else)
		}
		b.WriteByte(')')
	case *While:
		b.WriteString("(while ")
		dumpExpr(b, s.Cond)
		b.WriteByte(' ')
		dumpStmt(b, s.Body)
		b.WriteByte(')')
	case *FunDecl:
		b.WriteString("(fun " + s.Name + " (" + strings.Join(s.Params, " ") + ") ")
		dumpStmt(b, s.Body)
		b.WriteByte(')')
	}
}

func dumpExpr(b *strings.Builder, ex Expr) {
	switch e := ex.(type) {
	case *Literal:
		switch e.Kind {
		case LitNum:
			b.WriteString(FormatNum(e.N))
		case LitStr:
			b.WriteString(strconv.Quote(e.S))
		case LitBool:
			b.WriteString(strconv.FormatBool(e.B))
		default:
			b.WriteString("nil")
		}
	case *Variable:
		b.WriteString(e.Name)
	case *Assign:
		b.WriteString("(= " + e.Name + " ")
		dumpExpr(b, e.Value)
		b.WriteByte(')')
	case *Unary:
		b.WriteString("(" + e.Op.String() + " ")
		dumpExpr(b, e.X)
		b.WriteByte(')')
	case *Binary:
		b.WriteString("(" + e.Op.String() + " ")
		dumpExpr(b, e.Left)
		b.WriteByte(' ')
		dumpExpr(b, e.Right)
		b.WriteByte(')')
	case *Logical:
		b.WriteString("(" + e.Op.String() + " ")
		dumpExpr(b, e.Left)
		b.WriteByte(' ')
		dumpExpr(b, e.Right)
		b.WriteByte(')')
	case *Grouping:
		b.WriteString("(group ")
		dumpExpr(b, e.X)
		b.WriteByte(')')
	case *Call:
		b.WriteString("(call ")
		dumpExpr(b, e.Callee)
		for _, a := range e.Args {
			b.WriteByte(' ')
			dumpExpr(b, a)
		}
		b.WriteByte(')')
	}
}
