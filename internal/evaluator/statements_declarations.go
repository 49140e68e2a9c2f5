package evaluator

import (
	"github.com/google/uuid"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/config"
)

// evalDeclaration binds a let or const. An array pattern takes the items
// of the value in order; names without an item get Null.
func (e *Evaluator) evalDeclaration(node *ast.Declaration, s *Scope) Outcome {
	var v Value = NewNull()
	if node.Value != nil {
		out := e.Eval(node.Value, s)
		if out.Interrupted() {
			return out
		}
		v = out.Value
	}

	if node.Name != nil {
		if err := s.Insert(node.Name.Value, Variable{Const: node.Const, Value: v}); err != nil {
			return fail(asError(err).at(node.Name.Location()))
		}
		return outcome(v)
	}

	v, uerr := e.unexport(v)
	if uerr != nil {
		return fail(uerr.at(node.Location()))
	}
	items, err := v.Iterate(e.heap)
	if err != nil {
		return fail(asError(err).at(node.Location()))
	}
	for i, id := range node.Pattern {
		var item Value = NewNull()
		if i < len(items) {
			item = items[i]
		}
		if err := s.Insert(id.Value, Variable{Const: node.Const, Value: item}); err != nil {
			return fail(asError(err).at(id.Location()))
		}
	}
	return outcome(v)
}

// evalEnum builds the enum object. Every enum gets a fresh id, so
// variants of two enums with the same names never compare equal.
func (e *Evaluator) evalEnum(node *ast.EnumDeclaration, s *Scope) Outcome {
	id := uuid.NewString()
	obj := NewObject()
	obj.SetTag(config.EnumBaseTag, id)
	obj.SetTag(config.EnumNameTag, node.Name.Value)
	for _, variant := range node.Variants {
		v := &EnumVariant{Enum: id, Inner: NewString(variant.Value)}
		v.SetTag(config.EnumBaseTag, id)
		v.SetTag(config.EnumNameTag, node.Name.Value)
		obj.Set(variant.Value, v)
	}

	ref := e.allocate(obj)
	if err := s.Insert(node.Name.Value, Variable{Const: true, Value: ref}); err != nil {
		return fail(asError(err).at(node.Name.Location()))
	}
	return outcome(ref)
}
