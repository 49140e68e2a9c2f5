package evaluator

import (
	"strconv"
	"strings"
	"sync"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/bridge"
	"github.com/funvibe/zephyr/internal/token"
)

// Function is a closure over the scope it was defined in.
type Function struct {
	Details
	Literal *ast.FunctionLiteral
	Scope   *Scope
	// Bound is the receiver of a method found on a prototype. It is passed
	// as the first argument.
	Bound Value
}

func (f *Function) Name() string {
	if f.Literal.Name == nil {
		return ""
	}
	return f.Literal.Name.Value
}

func (f *Function) Pure() bool { return f.Literal.Pure }

func (f *Function) TypeName() string { return "function" }
func (f *Function) ToString(_ *Heap, display, color bool) (string, error) {
	if !display {
		return "", newError(CannotCoerce, "cannot coerce a function to a string")
	}
	params := make([]string, len(f.Literal.Parameters))
	for i, p := range f.Literal.Parameters {
		params[i] = strconv.Quote(p.Value)
	}
	return paint("Function<"+strings.Join(params, ", ")+">", colorCyan, color), nil
}
func (f *Function) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(f) }

// NativeContext is handed to every native call.
type NativeContext struct {
	Args     []Value
	Location token.Location
	// File is the path of the module the call appears in.
	File   string
	Interp *Evaluator
}

// Arg returns the i-th argument, or Null when it was not given.
func (c *NativeContext) Arg(i int) Value {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return NewNull()
}

type NativeFn func(ctx *NativeContext) (Value, error)

type NativeFunction struct {
	Details
	Name  string
	Fn    NativeFn
	Bound Value
}

func NewNative(name string, fn NativeFn) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn}
}

func (n *NativeFunction) TypeName() string { return "native_function" }
func (n *NativeFunction) ToString(_ *Heap, display, color bool) (string, error) {
	if !display {
		return "", newError(CannotCoerce, "cannot coerce a native function to a string")
	}
	return paint("NativeFunction<"+n.Name+">", colorCyan, color), nil
}
func (n *NativeFunction) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(n) }

// Reference points at a heap slot, or at a name exported by a module.
// A module reference with an empty Export stands for the whole module.
type Reference struct {
	Details
	Addr   int
	Module *Scope
	Export string
}

func NewReference(addr int) *Reference { return &Reference{Addr: addr} }

func (r *Reference) IsExport() bool { return r.Module != nil }

// Deref follows the reference until it reaches a value that is not one.
func (r *Reference) Deref(h *Heap) (Value, error) {
	var cur Value = r
	for {
		ref, ok := cur.(*Reference)
		if !ok {
			return cur, nil
		}
		next, err := ref.target(h)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}

func (r *Reference) target(h *Heap) (Value, error) {
	if !r.IsExport() {
		return h.Get(r.Addr)
	}
	if r.Export == "" {
		obj := NewObject()
		for name := range r.Module.Exported() {
			v, err := r.Module.ExportedValue(name)
			if err != nil {
				return nil, err
			}
			obj.Set(name, v)
		}
		return obj, nil
	}
	return r.Module.ExportedValue(r.Export)
}

func (r *Reference) TypeName() string { return "reference" }
func (r *Reference) ToString(h *Heap, display, color bool) (string, error) {
	v, err := r.Deref(h)
	if err != nil {
		return "", err
	}
	return v.ToString(h, display, color)
}
func (r *Reference) Iterate(h *Heap) ([]Value, error) {
	v, err := r.Deref(h)
	if err != nil {
		return nil, err
	}
	return v.Iterate(h)
}

// EventEmitter declares a fixed set of events. Its listener table holds
// only handles and is safe to read from worker goroutines.
type EventEmitter struct {
	Details
	Events    []string
	listeners *listenerTable
}

type listenerTable struct {
	mu      sync.Mutex
	byEvent map[string][]bridge.Handle
}

func NewEventEmitter(events ...string) *EventEmitter {
	return &EventEmitter{
		Events:    events,
		listeners: &listenerTable{byEvent: make(map[string][]bridge.Handle)},
	}
}

func (e *EventEmitter) Declares(event string) bool {
	for _, ev := range e.Events {
		if ev == event {
			return true
		}
	}
	return false
}

// AddListener subscribes handle to event.
func (e *EventEmitter) AddListener(event string, handle bridge.Handle) error {
	if !e.Declares(event) {
		return newError(UndefinedEventMessage, "event emitter does not have a %s event", event)
	}
	e.listeners.mu.Lock()
	e.listeners.byEvent[event] = append(e.listeners.byEvent[event], handle)
	e.listeners.mu.Unlock()
	return nil
}

// Listeners returns the handles subscribed to event.
func (e *EventEmitter) Listeners(event string) []bridge.Handle {
	e.listeners.mu.Lock()
	defer e.listeners.mu.Unlock()
	out := make([]bridge.Handle, len(e.listeners.byEvent[event]))
	copy(out, e.listeners.byEvent[event])
	return out
}

// EmitFrom queues a call of every listener of event. It is meant for
// worker goroutines.
func (e *EventEmitter) EmitFrom(s *bridge.Sender, event string, args ...bridge.Snapshot) error {
	for _, h := range e.Listeners(event) {
		if err := s.Emit(h, args...); err != nil {
			return err
		}
	}
	return nil
}

func (e *EventEmitter) TypeName() string { return "event_emitter" }
func (e *EventEmitter) ToString(_ *Heap, display, color bool) (string, error) {
	if !display {
		return "", newError(CannotCoerce, "cannot coerce an event emitter to a string")
	}
	events := make([]string, len(e.Events))
	for i, ev := range e.Events {
		events[i] = strconv.Quote(ev)
	}
	return paint("EventEmitter<"+strings.Join(events, ", ")+">", colorYellow, color), nil
}
func (e *EventEmitter) Iterate(*Heap) ([]Value, error) { return nil, cannotIterate(e) }
