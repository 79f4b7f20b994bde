package lox

import "time"

// Globals returns the native bindings every program starts with.
func Globals() map[string]Value {
	return map[string]Value{
		"clock": NativeFn(&Native{Name: "clock", Arity: 0, Fn: clock}),
	}
}

func clock(cx *Ctx, _ []Value) (Value, error) {
	now := time.Now
	if cx != nil && cx.Now != nil {
		now = cx.Now
	}
	return Num(float64(now().UnixNano()) / float64(time.Second)), nil
}
