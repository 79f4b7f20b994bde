package lox

import (
	"math"
	"strconv"
)

type VKind int

const (
	VNil VKind = iota
	VBool
	VNum
	VStr
	VFunc
	VNative
)

func (k VKind) String() string {
	switch k {
	case VNil:
		return "nil"
	case VBool:
		return "bool"
	case VNum:
		return "number"
	case VStr:
		return "string"
	case VFunc, VNative:
		return "function"
	default:
		return "?"
	}
}

type Value struct {
	K VKind

	B bool
	N float64
	S string

	F  *Func
	NF *Native
}

// Func is a user function together with the scope it was declared in.
type Func struct {
	Decl    *FunDecl
	Closure *Env
}

type NativeFunc func(cx *Ctx, args []Value) (Value, error)

type Native struct {
	Name  string
	Arity int
	Fn    NativeFunc
}

func Nil() Value               { return Value{K: VNil} }
func Bool(v bool) Value        { return Value{K: VBool, B: v} }
func Num(v float64) Value      { return Value{K: VNum, N: v} }
func Str(v string) Value       { return Value{K: VStr, S: v} }
func Fn(v *Func) Value         { return Value{K: VFunc, F: v} }
func NativeFn(v *Native) Value { return Value{K: VNative, NF: v} }

func (v Value) IsCallable() bool {
	return v.K == VFunc || v.K == VNative
}

// IsTruthy treats nil and false as false and everything else as true.
func (v Value) IsTruthy() bool {
	switch v.K {
	case VNil:
		return false
	case VBool:
		return v.B
	default:
		return true
	}
}

// Arity returns the parameter count of a callable, or -1.
func (v Value) Arity() int {
	switch v.K {
	case VFunc:
		return len(v.F.Decl.Params)
	case VNative:
		return v.NF.Arity
	default:
		return -1
	}
}

// ValueEqual compares by value for primitives and by identity for
// functions. Values of different kinds are never equal.
func ValueEqual(a, b Value) bool {
	if a.K != b.K {
		return false
	}
	switch a.K {
	case VNil:
		return true
	case VBool:
		return a.B == b.B
	case VNum:
		return a.N == b.N
	case VStr:
		return a.S == b.S
	case VFunc:
		return a.F == b.F
	case VNative:
		return a.NF == b.NF
	default:
		return false
	}
}

// String is the form print writes.
func (v Value) String() string {
	switch v.K {
	case VNil:
		return "nil"
	case VBool:
		if v.B {
			return "true"
		}
		return "false"
	case VNum:
		return FormatNum(v.N)
	case VStr:
		return v.S
	case VFunc:
		return "<fn " + v.F.Decl.Name + ">"
	case VNative:
		return "<native fn " + v.NF.Name + ">"
	default:
		return "?"
	}
}

// FormatNum prints integral values without a fractional part and
// everything else in the shortest form that reads back the same.
func FormatNum(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', 0, 64)
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}
