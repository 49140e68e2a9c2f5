package evaluator

import (
	"sort"

	"github.com/funvibe/zephyr/internal/config"
)

type Variable struct {
	Const bool
	Value Value
}

// Scope is one link of the lexical scope chain. Only the evaluator
// goroutine touches scopes.
type Scope struct {
	vars   map[string]*Variable
	parent *Scope
	// PureOnly forbids calls to functions that are not pure.
	PureOnly bool

	// exports maps an exported name to the local name it reads.
	exports map[string]string
	file    string
}

// NewScope opens a child of parent. Children inherit the parent's file
// and purity.
func NewScope(parent *Scope) *Scope {
	s := &Scope{vars: make(map[string]*Variable), parent: parent}
	if parent != nil {
		s.file = parent.file
		s.PureOnly = parent.PureOnly
	}
	return s
}

// NewModuleScope creates the top-level scope of the module at file.
func NewModuleScope(parent *Scope, file string) *Scope {
	s := NewScope(parent)
	s.file = file
	s.exports = make(map[string]string)
	return s
}

func (s *Scope) Parent() *Scope { return s.parent }

// File is the path of the module the scope belongs to.
func (s *Scope) File() string { return s.file }

func (s *Scope) Global() *Scope {
	g := s
	for g.parent != nil {
		g = g.parent
	}
	return g
}

func (s *Scope) Lookup(name string) (Value, error) {
	if v := s.find(name); v != nil {
		return v.Value, nil
	}
	return nil, newError(UnknownReference, "%s is not defined", name)
}

func (s *Scope) find(name string) *Variable {
	if name == config.DiscardName {
		return nil
	}
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

// Insert declares name in this scope. Shadowing a parent is allowed.
func (s *Scope) Insert(name string, v Variable) error {
	if name == config.DiscardName {
		return nil
	}
	if _, ok := s.vars[name]; ok {
		return newError(AlreadyDefined, "%s is already defined", name)
	}
	s.vars[name] = &Variable{Const: v.Const, Value: v.Value}
	return nil
}

// Modify assigns to the nearest existing binding of name.
func (s *Scope) Modify(name string, val Value) error {
	v := s.find(name)
	if v == nil {
		return newError(UnknownReference, "%s is not defined", name)
	}
	if v.Const {
		return newError(ConstantAssignment, "cannot assign to constant %s", name)
	}
	v.Value = val
	return nil
}

// Names lists the names declared in this scope.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vars))
	for n := range s.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Export publishes local as alias, or under its own name when alias is
// empty.
func (s *Scope) Export(local, alias string) error {
	if s.exports == nil {
		return newError(InvalidOperation, "exports are only allowed at the top level of a module")
	}
	if _, ok := s.vars[local]; !ok {
		return newError(UnknownReference, "cannot export %s: it is not defined", local)
	}
	if alias == "" {
		alias = local
	}
	if _, ok := s.exports[alias]; ok {
		return newError(AlreadyDefined, "%s is already exported", alias)
	}
	s.exports[alias] = local
	return nil
}

// Exported returns a copy of the export table, exported name to local name.
func (s *Scope) Exported() map[string]string {
	out := make(map[string]string, len(s.exports))
	for k, v := range s.exports {
		out[k] = v
	}
	return out
}

func (s *Scope) IsExported(name string) bool {
	_, ok := s.exports[name]
	return ok
}

// ExportedValue reads an exported binding.
func (s *Scope) ExportedValue(name string) (Value, error) {
	local, ok := s.exports[name]
	if !ok {
		return nil, newError(Unresolved,
			"exported variable %s has not been resolved; move the expression after the export or break the import cycle", name)
	}
	v, ok := s.vars[local]
	if !ok {
		return nil, newError(Unresolved, "exported variable %s has no value", name)
	}
	return v.Value, nil
}
