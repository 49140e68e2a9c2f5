package evaluator

import (
	"math"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/config"
)

const protoProperty = "__proto"

// unexport follows module export references down to the value they
// stand for, which may itself be a heap reference. An export that has no
// value yet fails with Unresolved.
func (e *Evaluator) unexport(v Value) (Value, *Error) {
	for {
		ref, ok := v.(*Reference)
		if !ok || !ref.IsExport() || ref.Export == "" {
			return v, nil
		}
		next, err := ref.Module.ExportedValue(ref.Export)
		if err != nil {
			return nil, asError(err)
		}
		v = next
	}
}

func (e *Evaluator) truthy(v Value) (bool, *Error) {
	v, err := e.unexport(v)
	if err != nil {
		return false, err
	}
	return IsTruthy(v), nil
}

func (e *Evaluator) evalArrayLiteral(node *ast.ArrayLiteral, s *Scope) Outcome {
	items := make([]Value, 0, len(node.Items))
	for _, item := range node.Items {
		out := e.Eval(item, s)
		if out.Interrupted() {
			return out
		}
		items = append(items, out.Value)
	}
	return outcome(e.allocate(NewArray(items)))
}

func (e *Evaluator) evalObjectLiteral(node *ast.ObjectLiteral, s *Scope) Outcome {
	obj := NewObject()
	for i, key := range node.Keys {
		out := e.Eval(node.Values[i], s)
		if out.Interrupted() {
			return out
		}
		obj.Set(key, out.Value)
	}
	return outcome(e.allocate(obj))
}

// memberKey evaluates the property of a member expression.
func (e *Evaluator) memberKey(node *ast.MemberExpression, s *Scope) Outcome {
	if !node.Computed {
		id, ok := node.Property.(*ast.Identifier)
		if !ok {
			return failf(InvalidProperty, "invalid property %s", node.Property.String())
		}
		return outcome(NewString(id.Value))
	}
	out := e.Eval(node.Property, s)
	if out.Interrupted() {
		return out
	}
	key, err := e.deref(out.Value)
	if err != nil {
		return fail(err)
	}
	return outcome(key)
}

func (e *Evaluator) evalMember(node *ast.MemberExpression, s *Scope) Outcome {
	obj := e.Eval(node.Object, s)
	if obj.Interrupted() {
		return obj
	}
	key := e.memberKey(node, s)
	if key.Interrupted() {
		return key
	}
	v, err := e.getMember(obj.Value, key.Value)
	if err != nil {
		return fail(err.at(node.Location()))
	}
	return outcome(v)
}

// getMember resolves obj[key]: pseudo properties, own properties,
// the value's prototype, the any prototype and finally Null.
func (e *Evaluator) getMember(obj, key Value) (Value, *Error) {
	if name, ok := key.(*String); ok {
		switch name.Value {
		case config.TagsProperty:
			return tagsOf(e.heap, obj), nil
		case protoProperty:
			return NewReference(e.protos.AddressOf(obj)), nil
		}
		if ref, ok := obj.(*Reference); ok && ref.IsExport() && ref.Export == "" {
			return e.moduleMember(ref, name.Value)
		}
	}

	receiver, uerr := e.unexport(obj)
	if uerr != nil {
		return nil, uerr
	}
	container := receiver
	if ref, ok := receiver.(*Reference); ok {
		target, err := ref.Deref(e.heap)
		if err != nil {
			return nil, asError(err)
		}
		container = target
	}

	switch c := container.(type) {
	case *Object:
		if prop, ok := objectKey(key); ok {
			if v, found := c.Get(prop); found {
				return v, nil
			}
		}
	case *Array:
		switch k := key.(type) {
		case *Number:
			i, err := index(k.Value, len(c.Items))
			if err != nil {
				return nil, err
			}
			return c.Items[i], nil
		case *Range:
			items, err := slice(k, c.Items)
			if err != nil {
				return nil, err
			}
			return e.allocate(NewArray(items)), nil
		case *String:
		default:
			return nil, newError(InvalidKey, "arrays are indexed by numbers, got %s", key.TypeName())
		}
	case *String:
		runes := []rune(c.Value)
		switch k := key.(type) {
		case *Number:
			i, err := index(k.Value, len(runes))
			if err != nil {
				return nil, err
			}
			return NewString(string(runes[i])), nil
		case *Range:
			chars := make([]Value, len(runes))
			for i, r := range runes {
				chars[i] = NewString(string(r))
			}
			picked, err := slice(k, chars)
			if err != nil {
				return nil, err
			}
			out := make([]rune, len(picked))
			for i, p := range picked {
				out[i] = []rune(p.(*String).Value)[0]
			}
			return NewString(string(out)), nil
		}
	}

	if name, ok := key.(*String); ok {
		if m, found := e.protos.Lookup(receiver, name.Value); found {
			return bind(m, receiver), nil
		}
	}
	return NewNull(), nil
}

// moduleMember reads an export through a whole-module reference.
func (e *Evaluator) moduleMember(ref *Reference, name string) (Value, *Error) {
	if !ref.Module.IsExported(name) {
		if m := e.moduleOf(ref.Module); m != nil && !m.done {
			return nil, newError(Unresolved,
				"exported variable %s has not been resolved; move the expression after the export or break the import cycle", name)
		}
		return nil, newError(NotExported, "module %s does not export %s", ref.Module.File(), name)
	}
	v, err := ref.Module.ExportedValue(name)
	if err != nil {
		return nil, asError(err)
	}
	return v, nil
}

func objectKey(key Value) (string, bool) {
	switch k := key.(type) {
	case *String:
		return k.Value, true
	case *Number:
		return formatNumber(k.Value), true
	}
	return "", false
}

// bind attaches the receiver to a method found on a prototype.
func bind(m, receiver Value) Value {
	switch fn := m.(type) {
	case *Function:
		c := copyValue(fn).(*Function)
		c.Bound = receiver
		return c
	case *NativeFunction:
		c := copyValue(fn).(*NativeFunction)
		c.Bound = receiver
		return c
	}
	return m
}

func tagsOf(h *Heap, v Value) Value {
	tags := v.details().Tags
	if len(tags) == 0 {
		if ref, ok := v.(*Reference); ok {
			if target, err := ref.Deref(h); err == nil {
				tags = target.details().Tags
			}
		}
	}
	obj := NewObject()
	for _, k := range sortedKeys(tags) {
		obj.Set(k, NewString(tags[k]))
	}
	return obj
}

func index(f float64, length int) (int, *Error) {
	if f != math.Trunc(f) {
		return 0, newError(InvalidKey, "index %s is not an integer", formatNumber(f))
	}
	if f < 0 || f >= float64(length) {
		return 0, newError(OutOfBounds, "index %s is out of bounds for length %d", formatNumber(f), length)
	}
	return int(f), nil
}

// slice picks the items whose indices the range produces.
func slice(r *Range, items []Value) ([]Value, *Error) {
	indices, err := r.Iterate(nil)
	if err != nil {
		return nil, asError(err)
	}
	out := make([]Value, 0, len(indices))
	for _, iv := range indices {
		i, err := index(iv.(*Number).Value, len(items))
		if err != nil {
			return nil, err
		}
		out = append(out, items[i])
	}
	return out, nil
}

// setMember writes obj[key] = v in place, keeping the container's address.
func (e *Evaluator) setMember(node *ast.MemberExpression, v Value, s *Scope) Outcome {
	obj := e.Eval(node.Object, s)
	if obj.Interrupted() {
		return obj
	}
	key := e.memberKey(node, s)
	if key.Interrupted() {
		return key
	}
	if name, ok := key.Value.(*String); ok && (name.Value == config.TagsProperty || name.Value == protoProperty) {
		return failf(InvalidOperation, "%s is read-only", name.Value)
	}

	target, uerr := e.unexport(obj.Value)
	if uerr != nil {
		return fail(uerr.at(node.Location()))
	}
	ref, ok := target.(*Reference)
	if !ok || ref.IsExport() {
		return failf(InvalidOperation, "cannot set a property on a %s", obj.Value.TypeName())
	}
	container, err := e.heap.Get(ref.Addr)
	if err != nil {
		return fail(asError(err))
	}

	switch c := container.(type) {
	case *Object:
		prop, ok := objectKey(key.Value)
		if !ok {
			return failf(InvalidKey, "object keys are strings, got %s", key.Value.TypeName())
		}
		c.Set(prop, v)
	case *Array:
		n, ok := key.Value.(*Number)
		if !ok {
			return failf(InvalidKey, "arrays are indexed by numbers, got %s", key.Value.TypeName())
		}
		if n.Value == float64(len(c.Items)) {
			c.Items = append(c.Items, v)
			break
		}
		i, err := index(n.Value, len(c.Items))
		if err != nil {
			return fail(err)
		}
		c.Items[i] = v
	default:
		return failf(InvalidOperation, "cannot set a property on a %s", container.TypeName())
	}
	if err := e.heap.Set(ref.Addr, container); err != nil {
		return fail(asError(err))
	}
	return outcome(v)
}
