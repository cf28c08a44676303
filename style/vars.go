package style

import "maps"

// Scope resolves custom properties during evaluation.
type Scope interface {
	Var(name string) any
}

// Vars maps custom property name to its accessor.
type Vars map[string]Accessor

// Clone returns shallow copy which can be overridden without touching v.
func (v Vars) Clone() Vars {
	c := make(Vars, len(v))
	maps.Copy(c, v)
	return c
}

// Merge installs all of other into v, replacing existing names.
func (v Vars) Merge(other Vars) {
	maps.Copy(v, other)
}

// Scope returns evaluation scope over v. Values are computed once per scope.
// Custom property which depends on itself evaluates to nil.
func (v Vars) Scope() Scope {
	return &scope{
		vars:     v,
		values:   make(map[string]any),
		visiting: make(map[string]bool),
	}
}

type scope struct {
	vars     Vars
	values   map[string]any
	visiting map[string]bool
}

func (s *scope) Var(name string) any {
	if val, ok := s.values[name]; ok {
		return val
	}
	acc, ok := s.vars[name]
	if !ok || acc == nil || s.visiting[name] {
		return nil
	}
	s.visiting[name] = true
	val := acc(s)
	delete(s.visiting, name)
	s.values[name] = val
	return val
}
