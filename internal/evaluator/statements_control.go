package evaluator

import (
	"fmt"

	"github.com/funvibe/zephyr/internal/ast"
)

func (e *Evaluator) evalIf(node *ast.IfExpression, s *Scope) Outcome {
	cond := e.Eval(node.Condition, s)
	if cond.Interrupted() {
		return cond
	}
	ok, err := e.truthy(cond.Value)
	if err != nil {
		return fail(err.at(node.Location()))
	}
	if ok {
		return e.evalBlock(node.Consequence, NewScope(s))
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, s)
	}
	return outcome(NewNull())
}

// loopControl decides what a loop does with a body outcome: stop and
// propagate, break, or carry on.
func loopControl(out Outcome, label string) (stop, brk bool) {
	if out.Err != nil {
		return true, false
	}
	if sig := out.Signal; sig != nil {
		if sig.Kind == SignalReturn || !sig.matches(label) {
			return true, false
		}
		return false, sig.Kind == SignalBreak
	}
	return false, false
}

// evalWhile yields the value of the last completed iteration, or Null.
// The else block runs when the condition fails on the first test.
func (e *Evaluator) evalWhile(node *ast.WhileExpression, s *Scope) Outcome {
	var result Value = NewNull()
	ran := false
	for {
		cond := e.Eval(node.Condition, s)
		if cond.Interrupted() {
			return cond
		}
		ok, err := e.truthy(cond.Value)
		if err != nil {
			return fail(err.at(node.Location()))
		}
		if !ok {
			break
		}
		ran = true
		out := e.evalBlock(node.Body, NewScope(s))
		stop, brk := loopControl(out, node.Label)
		if stop {
			return out
		}
		if brk {
			break
		}
		if out.Signal == nil {
			result = out.Value
		}
	}
	if !ran && node.Else != nil {
		return e.evalBlock(node.Else, NewScope(s))
	}
	return outcome(result)
}

// evalFor materializes the iterable, then runs the body once per item in
// a fresh scope binding the index and, optionally, the item. The result
// is an array of the body values; iterations cut short by continue
// contribute nothing.
func (e *Evaluator) evalFor(node *ast.ForExpression, s *Scope) Outcome {
	iterable := e.Eval(node.Iterable, s)
	if iterable.Interrupted() {
		return iterable
	}
	items, err := iterable.Value.Iterate(e.heap)
	if err != nil {
		return fail(asError(err).at(node.Iterable.Location()))
	}
	if len(items) == 0 && node.Else != nil {
		return e.evalBlock(node.Else, NewScope(s))
	}

	results := make([]Value, 0, len(items))
	for i, item := range items {
		scope := NewScope(s)
		_ = scope.Insert(node.Index.Value, Variable{Value: NewNumber(float64(i))})
		if node.Value != nil {
			if err := scope.Insert(node.Value.Value, Variable{Value: item}); err != nil {
				return fail(asError(err).at(node.Value.Location()))
			}
		}

		out := e.evalBlock(node.Body, scope)
		stop, brk := loopControl(out, node.Label)
		if stop {
			return out
		}
		if brk {
			break
		}
		if out.Signal == nil {
			results = append(results, out.Value)
		}
	}
	return outcome(e.allocate(NewArray(results)))
}

func (e *Evaluator) evalReturn(node *ast.ReturnStatement, s *Scope) Outcome {
	var v Value = NewNull()
	if node.Value != nil {
		out := e.Eval(node.Value, s)
		if out.Interrupted() {
			return out
		}
		v = out.Value
	}
	return interrupt(&Signal{Kind: SignalReturn, Value: v, Location: node.Location()})
}

func (e *Evaluator) evalThrow(node *ast.ThrowStatement, s *Scope) Outcome {
	out := e.Eval(node.Value, s)
	if out.Interrupted() {
		return out
	}
	msg, err := Display(e.heap, out.Value, false, false)
	if err != nil {
		msg = out.Value.TypeName()
	}
	v, uerr := e.unexport(out.Value)
	if uerr != nil {
		return fail(uerr.at(node.Location()))
	}
	if str, ok := v.(*String); ok {
		msg = str.Value
	}
	return fail(&Error{Kind: Thrown, Message: msg, Location: node.Location(), Thrown: out.Value})
}

// evalTry catches runtime errors. Control signals pass through untouched,
// and the finally block runs on every path.
func (e *Evaluator) evalTry(node *ast.TryExpression, s *Scope) Outcome {
	out := e.evalBlock(node.Body, NewScope(s))
	if out.Err != nil && node.Catch != nil {
		scope := NewScope(s)
		_ = scope.Insert(node.CatchName.Value, Variable{Value: e.errorValue(out.Err)})
		out = e.evalBlock(node.Catch, scope)
	}
	if node.Finally != nil {
		fin := e.evalBlock(node.Finally, NewScope(s))
		if fin.Interrupted() {
			return fin
		}
	}
	return out
}

// errorValue is what a catch block sees: the thrown value, or an object
// describing the error.
func (e *Evaluator) errorValue(err *Error) Value {
	if err.Thrown != nil {
		return err.Thrown
	}
	obj := NewObject()
	obj.Set("kind", NewString(string(err.Kind)))
	obj.Set("message", NewString(err.Message))
	obj.Set("line", NewNumber(float64(err.Location.Line)))
	obj.Set("column", NewNumber(float64(err.Location.Column)))
	obj.Set("file", NewString(err.Location.File))
	return e.allocate(obj)
}

// evalMatch runs the body of the first arm whose test passes.
func (e *Evaluator) evalMatch(node *ast.MatchExpression, s *Scope) Outcome {
	subject := e.Eval(node.Subject, s)
	if subject.Interrupted() {
		return subject
	}
	for _, arm := range node.Cases {
		if arm.Operator == "else" {
			return e.Eval(arm.Body, s)
		}
		val := e.Eval(arm.Value, s)
		if val.Interrupted() {
			return val
		}
		var matched bool
		if arm.Operator == "is" {
			res, err := e.is(subject.Value, val.Value)
			if err != nil {
				return fail(err.at(arm.Token.Location()))
			}
			matched = res
		} else {
			res, err := e.binary(arm.Operator, subject.Value, val.Value)
			if err != nil {
				return fail(err.at(arm.Token.Location()))
			}
			matched = IsTruthy(res)
		}
		if matched {
			return e.Eval(arm.Body, s)
		}
	}
	return outcome(NewNull())
}

func (e *Evaluator) evalAssert(node *ast.AssertStatement, s *Scope) Outcome {
	out := e.Eval(node.Value, s)
	if out.Interrupted() {
		return out
	}
	ok, err := e.truthy(out.Value)
	if err != nil {
		return fail(err.at(node.Location()))
	}
	if ok {
		return out
	}
	msg := fmt.Sprintf("assertion failed: %s", node.Value.String())
	if node.Message != nil {
		m := e.Eval(node.Message, s)
		if m.Interrupted() {
			return m
		}
		text, err := m.Value.ToString(e.heap, false, false)
		if err != nil {
			return fail(asError(err))
		}
		msg = text
	}
	return failf(AssertionFailed, "%s", msg)
}

// evalDebug prints a value with its tags and yields it.
func (e *Evaluator) evalDebug(node *ast.DebugStatement, s *Scope) Outcome {
	out := e.Eval(node.Value, s)
	if out.Interrupted() {
		return out
	}
	text, err := Display(e.heap, out.Value, e.Color, true)
	if err != nil {
		return fail(asError(err))
	}
	fmt.Fprintf(e.Out, "%s %s\n", paint(node.Location().String(), colorGray, e.Color), text)
	return out
}
