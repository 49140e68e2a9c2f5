package evaluator

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/config"
)

func (e *Evaluator) evalInfix(node *ast.InfixExpression, s *Scope) Outcome {
	left := e.Eval(node.Left, s)
	if left.Interrupted() {
		return left
	}
	right := e.Eval(node.Right, s)
	if right.Interrupted() {
		return right
	}
	v, err := e.binary(node.Operator, left.Value, right.Value)
	if err != nil {
		return fail(err)
	}
	return outcome(v)
}

// binary applies an infix operator. It also serves compound assignment.
func (e *Evaluator) binary(op string, left, right Value) (Value, *Error) {
	switch op {
	case "==":
		return NewBoolean(Equal(e.heap, left, right)), nil
	case "!=":
		return NewBoolean(!Equal(e.heap, left, right)), nil
	case "<", ">", "<=", ">=":
		return e.compare(op, left, right)
	case "+":
		return e.add(left, right)
	}

	l, err := e.deref(left)
	if err != nil {
		return nil, err
	}
	r, err := e.deref(right)
	if err != nil {
		return nil, err
	}
	ln, lok := l.(*Number)
	rn, rok := r.(*Number)
	if !lok || !rok {
		return nil, newError(InvalidOperation, "cannot apply %s to %s and %s", op, l.TypeName(), r.TypeName())
	}
	return arithmetic(op, ln.Value, rn.Value)
}

func arithmetic(op string, l, r float64) (Value, *Error) {
	switch op {
	case "+":
		return NewNumber(l + r), nil
	case "-":
		return NewNumber(l - r), nil
	case "*":
		return NewNumber(l * r), nil
	case "/":
		return NewNumber(l / r), nil
	case "%":
		return NewNumber(math.Mod(l, r)), nil
	case "//":
		if r == 0 {
			return nil, newError(InvalidOperation, "integer division by zero")
		}
		return NewNumber(float64(int64(l / r))), nil
	case "**":
		return NewNumber(math.Pow(l, r)), nil
	}
	return nil, newError(InvalidOperation, "unknown operator %s", op)
}

// add handles the overloaded +: appending to an array in place, string
// concatenation and numeric addition.
func (e *Evaluator) add(left, right Value) (Value, *Error) {
	left, uerr := e.unexport(left)
	if uerr != nil {
		return nil, uerr
	}
	if ref, ok := left.(*Reference); ok && !ref.IsExport() {
		if arr, ok := e.heap.slotValue(ref.Addr).(*Array); ok {
			arr.Items = append(arr.Items, right)
			if err := e.heap.Set(ref.Addr, arr); err != nil {
				return nil, asError(err)
			}
			return ref, nil
		}
	}

	l, err := e.deref(left)
	if err != nil {
		return nil, err
	}
	if ls, ok := l.(*String); ok {
		text, err := right.ToString(e.heap, false, false)
		if err != nil {
			return nil, asError(err)
		}
		return NewString(ls.Value + text), nil
	}
	r, err := e.deref(right)
	if err != nil {
		return nil, err
	}
	ln, lok := l.(*Number)
	rn, rok := r.(*Number)
	if !lok || !rok {
		return nil, newError(InvalidOperation, "cannot apply + to %s and %s", l.TypeName(), r.TypeName())
	}
	return NewNumber(ln.Value + rn.Value), nil
}

func (e *Evaluator) compare(op string, left, right Value) (Value, *Error) {
	l, err := e.deref(left)
	if err != nil {
		return nil, err
	}
	r, err := e.deref(right)
	if err != nil {
		return nil, err
	}
	ln, lok := l.(*Number)
	rn, rok := r.(*Number)
	if !lok || !rok {
		return nil, newError(TypeError, "cannot compare %s and %s with %s", l.TypeName(), r.TypeName(), op)
	}
	var res bool
	switch op {
	case "<":
		res = ln.Value < rn.Value
	case ">":
		res = ln.Value > rn.Value
	case "<=":
		res = ln.Value <= rn.Value
	case ">=":
		res = ln.Value >= rn.Value
	}
	return NewBoolean(res), nil
}

// evalLogical short-circuits: the right operand is only evaluated when
// the left one does not decide the result.
func (e *Evaluator) evalLogical(node *ast.LogicalExpression, s *Scope) Outcome {
	left := e.Eval(node.Left, s)
	if left.Interrupted() {
		return left
	}
	truthy, err := e.truthy(left.Value)
	if err != nil {
		return fail(err.at(node.Location()))
	}
	switch node.Operator {
	case "&&":
		if !truthy {
			return left
		}
		return e.Eval(node.Right, s)
	default:
		if truthy {
			return left
		}
		right := e.Eval(node.Right, s)
		if right.Interrupted() {
			return right
		}
		ok, err := e.truthy(right.Value)
		if err != nil {
			return fail(err.at(node.Location()))
		}
		if ok {
			return right
		}
		return left
	}
}

func (e *Evaluator) evalPrefix(node *ast.PrefixExpression, s *Scope) Outcome {
	switch node.Operator {
	case "++", "--":
		return e.evalStep(node.Right, node.Operator, true, s)
	}

	right := e.Eval(node.Right, s)
	if right.Interrupted() {
		return right
	}
	switch node.Operator {
	case "!", "not":
		ok, err := e.truthy(right.Value)
		if err != nil {
			return fail(err.at(node.Location()))
		}
		return outcome(NewBoolean(!ok))
	case "$":
		n, err := e.length(right.Value)
		if err != nil {
			return fail(err)
		}
		return outcome(NewNumber(float64(n)))
	}

	v, err := e.deref(right.Value)
	if err != nil {
		return fail(err)
	}
	n, ok := v.(*Number)
	if !ok {
		return failf(InvalidOperation, "cannot apply unary %s to %s", node.Operator, v.TypeName())
	}
	if node.Operator == "-" {
		return outcome(NewNumber(-n.Value))
	}
	return outcome(NewNumber(math.Abs(n.Value)))
}

func (e *Evaluator) evalPostfix(node *ast.PostfixExpression, s *Scope) Outcome {
	return e.evalStep(node.Left, node.Operator, false, s)
}

// evalStep implements ++ and --. Prefix forms yield the new value,
// postfix forms the old one.
func (e *Evaluator) evalStep(target ast.Node, op string, prefix bool, s *Scope) Outcome {
	switch target.(type) {
	case *ast.Identifier, *ast.MemberExpression:
	default:
		return failf(InvalidOperation, "cannot apply %s to %s", op, target.String())
	}
	cur := e.Eval(target, s)
	if cur.Interrupted() {
		return cur
	}
	old, err := e.deref(cur.Value)
	if err != nil {
		return fail(err)
	}
	n, ok := old.(*Number)
	if !ok {
		return failf(InvalidOperation, "cannot apply %s to %s", op, old.TypeName())
	}
	delta := 1.0
	if op == "--" {
		delta = -1
	}
	next := NewNumber(n.Value + delta)
	if out := e.assignTo(target, next, s); out.Interrupted() {
		return out
	}
	if prefix {
		return outcome(next)
	}
	return outcome(NewNumber(n.Value))
}

// length is the $ operator and the len native.
func (e *Evaluator) length(v Value) (int, *Error) {
	target, err := e.deref(v)
	if err != nil {
		return 0, err
	}
	switch t := target.(type) {
	case *String:
		return utf8.RuneCountInString(t.Value), nil
	case *Array:
		return len(t.Items), nil
	case *Object:
		return t.Len(), nil
	case *Range:
		items, err := t.Iterate(e.heap)
		if err != nil {
			return 0, asError(err)
		}
		return len(items), nil
	}
	return 0, newError(InvalidOperation, "a %s has no length", target.TypeName())
}

func (e *Evaluator) evalAssign(node *ast.AssignExpression, s *Scope) Outcome {
	val := e.Eval(node.Value, s)
	if val.Interrupted() {
		return val
	}
	v := val.Value
	if node.Operator != "=" {
		cur := e.Eval(node.Target, s)
		if cur.Interrupted() {
			return cur
		}
		next, err := e.binary(strings.TrimSuffix(node.Operator, "="), cur.Value, v)
		if err != nil {
			return fail(err)
		}
		v = next
	}
	if out := e.assignTo(node.Target, v, s); out.Interrupted() {
		return out
	}
	return outcome(v)
}

func (e *Evaluator) assignTo(target ast.Node, v Value, s *Scope) Outcome {
	switch t := target.(type) {
	case *ast.Identifier:
		if err := s.Modify(t.Value, v); err != nil {
			return fail(asError(err).at(t.Location()))
		}
		return outcome(v)
	case *ast.MemberExpression:
		return e.setMember(t, v, s)
	}
	return failf(InvalidOperation, "invalid assignment target %s", target.String())
}

func (e *Evaluator) evalTernary(node *ast.TernaryExpression, s *Scope) Outcome {
	cond := e.Eval(node.Condition, s)
	if cond.Interrupted() {
		return cond
	}
	ok, err := e.truthy(cond.Value)
	if err != nil {
		return fail(err.at(node.Location()))
	}
	if ok {
		return e.Eval(node.Consequence, s)
	}
	return e.Eval(node.Alternative, s)
}

func (e *Evaluator) evalIs(node *ast.IsExpression, s *Scope) Outcome {
	left := e.Eval(node.Left, s)
	if left.Interrupted() {
		return left
	}
	right := e.Eval(node.Right, s)
	if right.Interrupted() {
		return right
	}
	res, err := e.is(left.Value, right.Value)
	if err != nil {
		return fail(err)
	}
	return outcome(NewBoolean(res))
}

// is tests a value against an enum variant or a whole enum.
func (e *Evaluator) is(left, right Value) (bool, *Error) {
	l, err := e.deref(left)
	if err != nil {
		return false, err
	}
	r, err := e.deref(right)
	if err != nil {
		return false, err
	}
	switch r := r.(type) {
	case *EnumVariant:
		lv, ok := l.(*EnumVariant)
		return ok && lv.Enum == r.Enum && Equal(e.heap, lv.Inner, r.Inner), nil
	case *Object:
		if id, ok := r.Tag(config.EnumBaseTag); ok {
			lv, isVariant := l.(*EnumVariant)
			return isVariant && lv.Enum == id, nil
		}
	}
	return false, newError(TypeError, "is expects an enum or an enum variant on the right, got %s", r.TypeName())
}

func (e *Evaluator) evalIn(node *ast.InExpression, s *Scope) Outcome {
	left := e.Eval(node.Left, s)
	if left.Interrupted() {
		return left
	}
	right := e.Eval(node.Right, s)
	if right.Interrupted() {
		return right
	}
	container, err := e.deref(right.Value)
	if err != nil {
		return fail(err)
	}
	switch c := container.(type) {
	case *Object:
		key, err := e.deref(left.Value)
		if err != nil {
			return fail(err)
		}
		ks, ok := key.(*String)
		if !ok {
			return failf(InvalidKey, "object keys are strings, got %s", key.TypeName())
		}
		_, found := c.Get(ks.Value)
		return outcome(NewBoolean(found))
	case *String:
		sub, err := e.deref(left.Value)
		if err != nil {
			return fail(err)
		}
		ss, ok := sub.(*String)
		if !ok {
			return failf(TypeError, "cannot search a string for a %s", sub.TypeName())
		}
		return outcome(NewBoolean(strings.Contains(c.Value, ss.Value)))
	case *Array, *Range:
		items, iterErr := c.Iterate(e.heap)
		if iterErr != nil {
			return fail(asError(iterErr))
		}
		for _, item := range items {
			if Equal(e.heap, item, left.Value) {
				return outcome(NewBoolean(true))
			}
		}
		return outcome(NewBoolean(false))
	}
	return failf(InvalidOperation, "cannot test membership in a %s", container.TypeName())
}

func (e *Evaluator) evalTypeof(node *ast.TypeofExpression, s *Scope) Outcome {
	val := e.Eval(node.Value, s)
	if val.Interrupted() {
		return val
	}
	v, err := e.deref(val.Value)
	if err != nil {
		return fail(err)
	}
	return outcome(NewString(v.TypeName()))
}

func (e *Evaluator) evalRange(node *ast.RangeExpression, s *Scope) Outcome {
	bounds := []ast.Node{node.Start, node.End}
	if node.Step != nil {
		bounds = append(bounds, node.Step)
	}
	nums := make([]float64, len(bounds))
	for i, b := range bounds {
		out := e.Eval(b, s)
		if out.Interrupted() {
			return out
		}
		v, err := e.deref(out.Value)
		if err != nil {
			return fail(err)
		}
		n, ok := v.(*Number)
		if !ok {
			return fail(newError(TypeError, "range bounds must be numbers, got %s", v.TypeName()).at(b.Location()))
		}
		nums[i] = n.Value
	}
	r := &Range{Start: nums[0], End: nums[1], Inclusive: node.Inclusive}
	if node.Step != nil {
		r.Step, r.HasStep = nums[2], true
	}
	if err := r.Validate(); err != nil {
		return fail(asError(err))
	}
	return outcome(r)
}
