package evaluator

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is a runtime value. The set of implementations is closed.
type Value interface {
	// TypeName is the name used by typeof and in error messages.
	TypeName() string
	// ToString renders the value. display selects the debug form used by
	// print and the REPL; otherwise the value is coerced, which fails for
	// values without a textual form.
	ToString(h *Heap, display, color bool) (string, error)
	// Iterate materializes the values a for loop walks over.
	Iterate(h *Heap) ([]Value, error)

	details() *Details
}

// Details is metadata carried by every value. It never takes part in
// equality.
type Details struct {
	Tags map[string]string
	// Proto is the heap address of the prototype object, if one was set.
	Proto    int
	HasProto bool
}

func (d *Details) details() *Details { return d }

// Tag returns the value of a tag.
func (d *Details) Tag(key string) (string, bool) {
	v, ok := d.Tags[key]
	return v, ok
}

func (d *Details) SetTag(key, value string) {
	if d.Tags == nil {
		d.Tags = make(map[string]string)
	}
	d.Tags[key] = value
}

func (d *Details) DeleteTag(key string) {
	delete(d.Tags, key)
}

// SetProto points method lookup at the object stored at addr.
func (d *Details) SetProto(addr int) {
	d.Proto = addr
	d.HasProto = true
}

func (d *Details) copyFrom(o *Details) {
	if len(o.Tags) > 0 {
		d.Tags = make(map[string]string, len(o.Tags))
		for k, v := range o.Tags {
			d.Tags[k] = v
		}
	}
	d.Proto, d.HasProto = o.Proto, o.HasProto
}

const (
	colorReset  = "\x1b[0m"
	colorGray   = "\x1b[90m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
)

func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return code + s + colorReset
}

func cannotIterate(v Value) error {
	return newError(CannotIterate, "cannot iterate a %s", v.TypeName())
}

type Number struct {
	Details
	Value float64
}

func NewNumber(n float64) *Number { return &Number{Value: n} }

func (n *Number) TypeName() string { return "number" }
func (n *Number) ToString(_ *Heap, display, color bool) (string, error) {
	s := formatNumber(n.Value)
	if display {
		return paint(s, colorYellow, color), nil
	}
	return s, nil
}
func (n *Number) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(n) }

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type Null struct {
	Details
}

func NewNull() *Null { return &Null{} }

func (n *Null) TypeName() string { return "null" }
func (n *Null) ToString(_ *Heap, display, color bool) (string, error) {
	if display {
		return paint("null", colorGray, color), nil
	}
	return "null", nil
}
func (n *Null) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(n) }

type String struct {
	Details
	Value string
}

func NewString(s string) *String { return &String{Value: s} }

func (s *String) TypeName() string                           { return "string" }
func (s *String) ToString(*Heap, bool, bool) (string, error) { return s.Value, nil }
func (s *String) Iterate(*Heap) ([]Value, error)             { return nil, cannotIterate(s) }

type Boolean struct {
	Details
	Value bool
}

func NewBoolean(b bool) *Boolean { return &Boolean{Value: b} }

func (b *Boolean) TypeName() string { return "boolean" }
func (b *Boolean) ToString(_ *Heap, display, color bool) (string, error) {
	s := strconv.FormatBool(b.Value)
	if !display {
		return s, nil
	}
	if b.Value {
		return paint(s, colorGreen, color), nil
	}
	return paint(s, colorRed, color), nil
}
func (b *Boolean) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(b) }

// Array lives in the heap; programs hold a Reference to it.
type Array struct {
	Details
	Items []Value
}

func NewArray(items []Value) *Array { return &Array{Items: items} }

func (a *Array) TypeName() string { return "array" }
func (a *Array) ToString(h *Heap, _ bool, color bool) (string, error) {
	parts := make([]string, len(a.Items))
	for i, item := range a.Items {
		s, err := nested(h, item, color)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}
func (a *Array) Iterate(*Heap) ([]Value, error) {
	out := make([]Value, len(a.Items))
	copy(out, a.Items)
	return out, nil
}

// Object lives in the heap; programs hold a Reference to it. Keys keep
// insertion order.
type Object struct {
	Details
	items map[string]Value
	keys  []string
}

func NewObject() *Object { return &Object{items: make(map[string]Value)} }

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.items[key]
	return v, ok
}

func (o *Object) Set(key string, v Value) {
	if _, ok := o.items[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.items[key] = v
}

func (o *Object) Delete(key string) {
	if _, ok := o.items[key]; !ok {
		return
	}
	delete(o.items, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) TypeName() string { return "object" }
func (o *Object) ToString(h *Heap, display, color bool) (string, error) {
	parts := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		s, err := nested(h, o.items[k], color)
		if err != nil {
			return "", err
		}
		parts = append(parts, k+": "+s)
	}
	body := "{" + strings.Join(parts, ", ") + "}"
	if display {
		return "." + body, nil
	}
	return body, nil
}
func (o *Object) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(o) }

// nested renders a value inside a container, where strings are quoted.
func nested(h *Heap, v Value, color bool) (string, error) {
	if s, ok := v.(*String); ok {
		return paint(strconv.Quote(s.Value), colorGreen, color), nil
	}
	return v.ToString(h, true, color)
}

// Range is start..end, expanded eagerly when iterated.
type Range struct {
	Details
	Start     float64
	End       float64
	Step      float64
	HasStep   bool
	Inclusive bool
}

func (r *Range) TypeName() string { return "range" }
func (r *Range) ToString(_ *Heap, display, color bool) (string, error) {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	s := formatNumber(r.Start) + op + formatNumber(r.End)
	if r.HasStep {
		s += ":" + formatNumber(r.Step)
	}
	return s, nil
}

// step reports the effective step: the explicit one, or one unit towards
// End.
func (r *Range) step() float64 {
	if r.HasStep {
		return r.Step
	}
	if r.End < r.Start {
		return -1
	}
	return 1
}

// Validate rejects ranges that would never terminate.
func (r *Range) Validate() error {
	step := r.step()
	for _, f := range []float64{r.Start, r.End, step} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return newError(RangeError, "range bounds and step must be finite, got %s", formatNumber(f))
		}
	}
	if step == 0 {
		return newError(RangeError, "range step cannot be zero")
	}
	if (r.End > r.Start && step < 0) || (r.End < r.Start && step > 0) {
		return newError(RangeError, "range %s..%s with step %s would never end",
			formatNumber(r.Start), formatNumber(r.End), formatNumber(step))
	}
	return nil
}

func (r *Range) Iterate(*Heap) ([]Value, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	step := r.step()
	var out []Value
	for i := 0; ; i++ {
		x := r.Start + float64(i)*step
		if r.past(x, step) {
			break
		}
		out = append(out, NewNumber(x))
	}
	return out, nil
}

// past reports whether x lies beyond the end of the range. An exclusive
// range keeps every value short of End.
func (r *Range) past(x, step float64) bool {
	if step > 0 {
		return x > r.End || (!r.Inclusive && x == r.End)
	}
	return x < r.End || (!r.Inclusive && x == r.End)
}

// EnumVariant is a member of an enum declaration.
type EnumVariant struct {
	Details
	Enum  string
	Inner Value
}

func (e *EnumVariant) TypeName() string { return "enum_variant" }
func (e *EnumVariant) ToString(h *Heap, display, color bool) (string, error) {
	inner, err := e.Inner.ToString(h, true, color)
	if err != nil {
		return "", err
	}
	return "EnumVariant<" + e.Enum + "(" + inner + ")>", nil
}
func (e *EnumVariant) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(e) }

// IsTruthy reports how v behaves in a condition.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case *Boolean:
		return v.Value
	case *Null:
		return false
	case *String:
		return v.Value != ""
	case *Number:
		return v.Value > 0
	}
	return true
}

// Display renders v the way print shows it, followed by its tags when
// full is set.
func Display(h *Heap, v Value, color, full bool) (string, error) {
	s, err := v.ToString(h, true, color)
	if err != nil {
		return "", err
	}
	if tags := v.details().Tags; full && len(tags) > 0 {
		keys := sortedKeys(tags)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + strconv.Quote(tags[k])
		}
		s += "\n" + paint("# {"+strings.Join(parts, ", ")+"}", colorGray, color)
	}
	return s, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal compares two values. Values of different types are never equal;
// arrays and objects compare by address.
func Equal(h *Heap, a, b Value) bool {
	if ra, ok := a.(*Reference); ok {
		if rb, ok := b.(*Reference); ok && !ra.IsExport() && !rb.IsExport() {
			return ra.Addr == rb.Addr
		}
		target, err := ra.Deref(h)
		if err != nil {
			return false
		}
		return Equal(h, target, b)
	}
	if rb, ok := b.(*Reference); ok {
		target, err := rb.Deref(h)
		if err != nil {
			return false
		}
		return Equal(h, a, target)
	}

	switch a := a.(type) {
	case *Number:
		b, ok := b.(*Number)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Range:
		b, ok := b.(*Range)
		return ok && a.Start == b.Start && a.End == b.End && a.step() == b.step() && a.Inclusive == b.Inclusive
	case *EnumVariant:
		b, ok := b.(*EnumVariant)
		return ok && a.Enum == b.Enum && Equal(h, a.Inner, b.Inner)
	case *Function:
		b, ok := b.(*Function)
		return ok && a.Literal == b.Literal && a.Scope == b.Scope
	case *NativeFunction:
		b, ok := b.(*NativeFunction)
		return ok && a.Name == b.Name
	case *EventEmitter:
		b, ok := b.(*EventEmitter)
		return ok && a.listeners == b.listeners
	case *Array, *Object:
		// Only reachable for values that were never allocated.
		return a == b
	}
	return false
}

// copyValue returns a shallow copy of v with its own Details.
func copyValue(v Value) Value {
	switch v := v.(type) {
	case *Number:
		c := *v
		c.Details = Details{}
		c.copyFrom(&v.Details)
		return &c
	case *String:
		c := *v
		c.Details = Details{}
		c.copyFrom(&v.Details)
		return &c
	case *Boolean:
		c := *v
		c.Details = Details{}
		c.copyFrom(&v.Details)
		return &c
	case *Null:
		c := &Null{}
		c.copyFrom(&v.Details)
		return c
	case *Reference:
		c := *v
		c.Details = Details{}
		c.copyFrom(&v.Details)
		return &c
	case *Function:
		c := *v
		c.Details = Details{}
		c.copyFrom(&v.Details)
		return &c
	case *NativeFunction:
		c := *v
		c.Details = Details{}
		c.copyFrom(&v.Details)
		return &c
	}
	return v
}
