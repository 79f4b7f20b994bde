package lox

// Env is one scope. Scopes are shared by pointer so a closure and the code
// that declared it see the same bindings.
type Env struct {
	Up   *Env
	Vars map[string]Value
}

func NewEnv(up *Env) *Env {
	return &Env{Up: up, Vars: map[string]Value{}}
}

// Define binds name in this scope, replacing any earlier binding here.
func (e *Env) Define(name string, v Value) {
	e.Vars[name] = v
}

func (e *Env) Get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.Up {
		if v, ok := cur.Vars[name]; ok {
			return v, true
		}
	}
	return Nil(), false
}

// Assign updates the nearest existing binding of name. It never creates
// one and reports false when no scope defines name.
func (e *Env) Assign(name string, v Value) bool {
	for cur := e; cur != nil; cur = cur.Up {
		if _, ok := cur.Vars[name]; ok {
			cur.Vars[name] = v
			return true
		}
	}
	return false
}
