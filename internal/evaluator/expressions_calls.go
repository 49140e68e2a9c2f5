package evaluator

import (
	"strings"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/token"
)

// restParam collects all remaining arguments when it is the last
// parameter.
const restParam = "__args__"

func (e *Evaluator) evalFunctionLiteral(node *ast.FunctionLiteral, s *Scope) Outcome {
	fn := &Function{Literal: node, Scope: s}
	if node.Name != nil {
		if err := s.Insert(node.Name.Value, Variable{Value: fn}); err != nil {
			return fail(asError(err).at(node.Name.Location()))
		}
	}
	return outcome(fn)
}

// evalCall checks the callee against the caller's purity, then evaluates
// the arguments with the check lifted.
func (e *Evaluator) evalCall(node *ast.CallExpression, s *Scope) Outcome {
	callee := e.Eval(node.Function, s)
	if callee.Interrupted() {
		return callee
	}
	if s.PureOnly {
		fn, err := e.unexport(callee.Value)
		if err == nil {
			err = checkPure(fn)
		}
		if err != nil {
			return fail(err.at(node.Location()))
		}
	}

	pure := s.PureOnly
	s.PureOnly = false
	args := make([]Value, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		out := e.Eval(arg, s)
		if out.Interrupted() {
			s.PureOnly = pure
			return out
		}
		args = append(args, out.Value)
	}
	s.PureOnly = pure
	return e.callValue(callee.Value, args, s, node.Location())
}

// checkPure rejects functions a pure scope may not call. Natives are
// always allowed.
func checkPure(fn Value) *Error {
	f, ok := fn.(*Function)
	if !ok || f.Pure() {
		return nil
	}
	name := f.Name()
	if name == "" {
		name = "anonymous function"
	}
	return newError(TypeError, "cannot call impure %s from a pure function", name)
}

func (e *Evaluator) callValue(fn Value, args []Value, caller *Scope, loc token.Location) Outcome {
	target, uerr := e.unexport(fn)
	if uerr != nil {
		return fail(uerr.at(loc))
	}
	switch f := target.(type) {
	case *Function:
		return e.callFunction(f, args, loc)
	case *NativeFunction:
		if f.Bound != nil {
			args = append([]Value{f.Bound}, args...)
		}
		v, err := f.Fn(&NativeContext{Args: args, Location: loc, File: caller.File(), Interp: e})
		if err != nil {
			return fail(asError(err).at(loc))
		}
		if v == nil {
			v = NewNull()
		}
		return outcome(v)
	}
	return fail(newError(InvalidOperation, "cannot call a %s", fn.TypeName()).at(loc))
}

// moduleRoot is the top-level scope of the module s belongs to.
func (e *Evaluator) moduleRoot(s *Scope) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.exports != nil {
			return cur
		}
	}
	return e.global
}

func (e *Evaluator) callFunction(fn *Function, args []Value, loc token.Location) Outcome {
	if fn.Bound != nil {
		args = append([]Value{fn.Bound}, args...)
	}

	// Pure functions only see the top level of their module, never the
	// locals around their definition.
	parent := fn.Scope
	if fn.Pure() {
		parent = e.moduleRoot(fn.Scope)
	}
	scope := NewScope(parent)
	scope.PureOnly = fn.Pure()

	params := fn.Literal.Parameters
	for i, p := range params {
		var v Value = NewNull()
		switch {
		case p.Value == restParam && i == len(params)-1:
			var rest []Value
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			v = e.allocate(NewArray(rest))
		case i < len(args):
			v = args[i]
		}
		if err := scope.Insert(p.Value, Variable{Value: v}); err != nil {
			return fail(asError(err).at(p.Location()))
		}
	}
	if name := fn.Name(); name != "" && fn.Pure() {
		// Lets a pure function defined inside another one recurse.
		_ = scope.Insert(name, Variable{Value: fn})
	}

	for _, clause := range fn.Literal.Where {
		out := e.Eval(clause.Test, scope)
		if out.Err != nil {
			return out
		}
		if out.Signal != nil {
			return fail(escaped(out.Signal))
		}
		ok, terr := e.truthy(out.Value)
		if terr != nil {
			return fail(terr.at(loc))
		}
		if !ok {
			got, _ := Display(e.heap, out.Value, false, false)
			return fail(newError(InvalidOperation, "call failed where clause %s at %s, received %s",
				clause.String(), clause.Location(), got).at(loc))
		}
	}

	out := e.evalBlock(fn.Literal.Body, scope)
	if out.Err != nil {
		return out
	}
	result := out.Value
	if sig := out.Signal; sig != nil {
		if sig.Kind != SignalReturn {
			return fail(escaped(sig))
		}
		result = sig.Value
	}

	if name := fn.Name(); strings.HasSuffix(name, "?") {
		v, uerr := e.unexport(result)
		if uerr != nil {
			return fail(uerr.at(loc))
		}
		if _, ok := v.(*Boolean); !ok {
			return fail(newError(TypeError, "predicate %s must return a boolean, returned %s", name, result.TypeName()).at(loc))
		}
	}
	return outcome(result)
}
