package lox

import (
	"context"
	"fmt"
)

// Flow is the outcome of running a statement: either normal completion or
// a return in progress carrying its value.
type Flow struct {
	Ret bool
	V   Value
}

var Normal = Flow{}

func Returning(v Value) Flow {
	return Flow{Ret: true, V: v}
}

type Interp struct {
	cx *Ctx
}

func NewInterp(cx *Ctx) *Interp {
	if cx == nil {
		cx = NewCtx(context.Background(), DefaultLimits(), nil)
	}
	return &Interp{cx: cx}
}

func (in *Interp) Ctx() *Ctx {
	return in.cx
}

func (in *Interp) Exec(env *Env, st Stmt) (Flow, error) {
	if err := in.cx.tick(st.Span()); err != nil {
		return Normal, err
	}

	switch s := st.(type) {
	case *ExprStmt:
		_, err := in.Eval(env, s.X)
		return Normal, err
	case *Print:
		v, err := in.Eval(env, s.X)
		if err != nil {
			return Normal, err
		}
		if _, err := fmt.Fprintln(in.cx.Out, v.String()); err != nil {
			return Normal, errAt(InterpreterError, s.Sp, "print: %v", err)
		}
		return Normal, nil
	case *Return:
		if s.X == nil {
			return Returning(Nil()), nil
		}
		v, err := in.Eval(env, s.X)
		if err != nil {
			return Normal, err
		}
		return Returning(v), nil
	case *VarDecl:
		v, err := in.Eval(env, s.Init)
		if err != nil {
			return Normal, err
		}
		env.Define(s.Name, v)
		return Normal, nil
	case *Block:
		return in.ExecBlock(NewEnv(env), s.Stmts)
	case *If:
		c, err := in.Eval(env, s.Cond)
		if err != nil {
			return Normal, err
		}
		if c.IsTruthy() {
			return in.Exec(env, s.Then)
		}
		if s.Else != nil {
			return in.Exec(env, s.Else)
		}
		return Normal, nil
	case *While:
		for {
			c, err := in.Eval(env, s.Cond)
			if err != nil {
				return Normal, err
			}
			if !c.IsTruthy() {
				return Normal, nil
			}
			fl, err := in.Exec(env, s.Body)
			if err != nil || fl.Ret {
				return fl, err
			}
		}
	case *FunDecl:
		env.Define(s.Name, Fn(&Func{Decl: s, Closure: env}))
		return Normal, nil
	default:
		return Normal, errAt(InterpreterError, st.Span(), "unknown statement %T", st)
	}
}

// ExecBlock runs stmts in env and stops at the first error or return. The
// caller's scope is never replaced, so leaving early needs no cleanup.
func (in *Interp) ExecBlock(env *Env, stmts []Stmt) (Flow, error) {
	for _, st := range stmts {
		fl, err := in.Exec(env, st)
		if err != nil || fl.Ret {
			return fl, err
		}
	}
	return Normal, nil
}

func (in *Interp) Eval(env *Env, ex Expr) (Value, error) {
	switch e := ex.(type) {
	case *Literal:
		switch e.Kind {
		case LitBool:
			return Bool(e.B), nil
		case LitNum:
			return Num(e.N), nil
		case LitStr:
			return Str(e.S), nil
		default:
			return Nil(), nil
		}
	case *Grouping:
		return in.Eval(env, e.X)
	case *Variable:
		v, ok := env.Get(e.Name)
		if !ok {
			return Nil(), errAt(InterpreterError, e.Sp, "Undefined variable '%s'", e.Name)
		}
		return v, nil
	case *Assign:
		v, err := in.Eval(env, e.Value)
		if err != nil {
			return Nil(), err
		}
		if !env.Assign(e.Name, v) {
			return Nil(), errAt(InterpreterError, e.Sp, "Undefined variable '%s'", e.Name)
		}
		return v, nil
	case *Unary:
		x, err := in.Eval(env, e.X)
		if err != nil {
			return Nil(), err
		}
		if e.Op == UnNot {
			return Bool(!x.IsTruthy()), nil
		}
		if x.K != VNum {
			return Nil(), errAt(TypeError, e.Sp, "Operand must be a number")
		}
		return Num(-x.N), nil
	case *Logical:
		l, err := in.Eval(env, e.Left)
		if err != nil {
			return Nil(), err
		}
		if e.Op == OpOr && l.IsTruthy() {
			return l, nil
		}
		if e.Op == OpAnd && !l.IsTruthy() {
			return l, nil
		}
		return in.Eval(env, e.Right)
	case *Binary:
		return in.evalBin(env, e)
	case *Call:
		callee, err := in.Eval(env, e.Callee)
		if err != nil {
			return Nil(), err
		}
		args := make([]Value, 0, len(e.Args))
		for _, a := range e.Args {
			v, err := in.Eval(env, a)
			if err != nil {
				return Nil(), err
			}
			args = append(args, v)
		}
		return in.Call(e.Sp, callee, args)
	default:
		return Nil(), errAt(InterpreterError, ex.Span(), "unknown expression %T", ex)
	}
}

// Call invokes callee with already evaluated arguments. site is where
// arity and callee errors are reported.
func (in *Interp) Call(site Span, callee Value, args []Value) (Value, error) {
	if !callee.IsCallable() {
		return Nil(), errAt(InterpreterError, site, "Can only call functions, not %s", callee.K)
	}
	if n := callee.Arity(); n != len(args) {
		return Nil(), errAt(InterpreterError, site, "Expected %d arguments but got %d", n, len(args))
	}

	if callee.K == VNative {
		if err := in.cx.push(); err != nil {
			return Nil(), err
		}
		defer in.cx.pop()
		return callee.NF.Fn(in.cx, args)
	}

	fn := callee.F
	if err := in.cx.push(); err != nil {
		return Nil(), err
	}
	defer in.cx.pop()

	env := NewEnv(fn.Closure)
	for i, name := range fn.Decl.Params {
		env.Define(name, args[i])
	}
	fl, err := in.ExecBlock(env, fn.Decl.Body.Stmts)
	if err != nil {
		return Nil(), err
	}
	if fl.Ret {
		return fl.V, nil
	}
	return Nil(), nil
}

func (in *Interp) evalBin(env *Env, e *Binary) (Value, error) {
	l, err := in.Eval(env, e.Left)
	if err != nil {
		return Nil(), err
	}
	r, err := in.Eval(env, e.Right)
	if err != nil {
		return Nil(), err
	}

	switch e.Op {
	case OpEq:
		return Bool(ValueEqual(l, r)), nil
	case OpNe:
		return Bool(!ValueEqual(l, r)), nil
	case OpAdd:
		if l.K == VNum && r.K == VNum {
			return Num(l.N + r.N), nil
		}
		if l.K == VStr && r.K == VStr {
			return Str(l.S + r.S), nil
		}
		return Nil(), errAt(TypeError, e.Sp, "Operands must be two numbers or two strings")
	}

	if l.K != VNum || r.K != VNum {
		return Nil(), errAt(TypeError, e.Sp, "Operands must be numbers")
	}
	switch e.Op {
	case OpSub:
		return Num(l.N - r.N), nil
	case OpMul:
		return Num(l.N * r.N), nil
	case OpDiv:
		return Num(l.N / r.N), nil
	case OpLt:
		return Bool(l.N < r.N), nil
	case OpLe:
		return Bool(l.N <= r.N), nil
	case OpGt:
		return Bool(l.N > r.N), nil
	case OpGe:
		return Bool(l.N >= r.N), nil
	}
	return Nil(), errAt(InterpreterError, e.Sp, "bad operator")
}
