package evaluator

import (
	"github.com/funvibe/zephyr/internal/config"
)

// Prototypes holds the method table of every built-in type. Tables are
// ordinary objects in the heap, so scripts can extend them through
// get_proto_obj.
type Prototypes struct {
	heap  *Heap
	addrs map[string]int
}

func NewPrototypes(h *Heap) *Prototypes {
	p := &Prototypes{heap: h, addrs: make(map[string]int, len(config.PrototypeNames))}
	for _, name := range config.PrototypeNames {
		p.addrs[name] = h.Allocate(NewObject())
	}
	return p
}

// Address returns the heap address of the named prototype.
func (p *Prototypes) Address(name string) (int, bool) {
	addr, ok := p.addrs[name]
	return addr, ok
}

// Ref returns a reference to the named prototype.
func (p *Prototypes) Ref(name string) (*Reference, error) {
	addr, ok := p.addrs[name]
	if !ok {
		return nil, newError(InvalidKey, "there is no %s prototype", name)
	}
	return NewReference(addr), nil
}

// Define adds a method to the named prototype.
func (p *Prototypes) Define(name, method string, v Value) error {
	obj, err := p.object(p.addrs[name])
	if err != nil {
		return err
	}
	obj.Set(method, v)
	return nil
}

func (p *Prototypes) object(addr int) (*Object, error) {
	v, err := p.heap.Get(addr)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, newError(TypeError, "prototype at %d is a %s, not an object", addr, v.TypeName())
	}
	return obj, nil
}

// defaultFor names the prototype a value of this type starts with.
func defaultFor(v Value) string {
	switch v.(type) {
	case *String:
		return config.StringProto
	case *Array:
		return config.ArrayProto
	case *Number:
		return config.NumberProto
	case *Object:
		return config.ObjectProto
	case *EventEmitter:
		return config.EventEmitterProto
	case *EnumVariant:
		return config.EnumProto
	}
	return ""
}

// AddressOf returns the prototype consulted for v: one set explicitly on
// the value (or on the reference holding it), else the default of its
// type, else any.
func (p *Prototypes) AddressOf(v Value) int {
	if d := v.details(); d.HasProto {
		return d.Proto
	}
	if ref, ok := v.(*Reference); ok {
		if target, err := ref.Deref(p.heap); err == nil {
			return p.AddressOf(target)
		}
	}
	if addr, ok := p.addrs[defaultFor(v)]; ok {
		return addr
	}
	return p.addrs[config.AnyProto]
}

// Lookup finds a method for v, trying its own prototype first and then
// the any prototype.
func (p *Prototypes) Lookup(v Value, name string) (Value, bool) {
	addrs := []int{p.AddressOf(v)}
	if anyAddr := p.addrs[config.AnyProto]; addrs[0] != anyAddr {
		addrs = append(addrs, anyAddr)
	}
	for _, addr := range addrs {
		obj, err := p.object(addr)
		if err != nil {
			continue
		}
		if m, ok := obj.Get(name); ok {
			return m, true
		}
	}
	return nil, false
}

// Roots returns references to every prototype, for Sweep.
func (p *Prototypes) Roots() []Value {
	out := make([]Value, 0, len(p.addrs))
	for _, addr := range p.addrs {
		out = append(out, NewReference(addr))
	}
	return out
}
