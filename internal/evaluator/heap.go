package evaluator

// Heap stores arrays and objects behind integer addresses. Freed slots
// are reused before the heap grows. Deallocation is explicit, so cycles
// are only reclaimed by Sweep.
type Heap struct {
	slots []Value
	free  []int
}

func NewHeap() *Heap {
	return &Heap{}
}

// Allocate stores v and returns its address.
func (h *Heap) Allocate(v Value) int {
	if n := len(h.free); n > 0 {
		addr := h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[addr] = v
		return addr
	}
	h.slots = append(h.slots, v)
	return len(h.slots) - 1
}

// Deallocate frees addr. Freeing a free slot does nothing.
func (h *Heap) Deallocate(addr int) {
	if addr < 0 || addr >= len(h.slots) || h.slots[addr] == nil {
		return
	}
	h.slots[addr] = nil
	h.free = append(h.free, addr)
}

func (h *Heap) Get(addr int) (Value, error) {
	if addr < 0 || addr >= len(h.slots) || h.slots[addr] == nil {
		return nil, newError(UnknownReference, "no value at address %d", addr)
	}
	return h.slots[addr], nil
}

// slotValue returns the value at addr, or nil.
func (h *Heap) slotValue(addr int) Value {
	if addr < 0 || addr >= len(h.slots) {
		return nil
	}
	return h.slots[addr]
}

// Set replaces the value at addr in place.
func (h *Heap) Set(addr int, v Value) error {
	if addr < 0 || addr >= len(h.slots) || h.slots[addr] == nil {
		return newError(UnknownReference, "no value at address %d", addr)
	}
	h.slots[addr] = v
	return nil
}

// Len is the number of slots, free or not.
func (h *Heap) Len() int { return len(h.slots) }

// Live is the number of occupied slots.
func (h *Heap) Live() int { return len(h.slots) - len(h.free) }

// Sweep frees every slot that cannot be reached from the given scopes and
// values, and returns how many were freed. Scopes captured by reachable
// functions are followed.
func (h *Heap) Sweep(scopes []*Scope, roots ...Value) int {
	m := &marker{heap: h, slots: make([]bool, len(h.slots)), scopes: make(map[*Scope]bool)}
	for _, s := range scopes {
		m.scope(s)
	}
	for _, v := range roots {
		m.value(v)
	}
	freed := 0
	for addr, v := range h.slots {
		if v != nil && !m.slots[addr] {
			h.Deallocate(addr)
			freed++
		}
	}
	return freed
}

type marker struct {
	heap   *Heap
	slots  []bool
	scopes map[*Scope]bool
}

func (m *marker) addr(addr int) {
	if addr < 0 || addr >= len(m.slots) || m.slots[addr] {
		return
	}
	m.slots[addr] = true
	if v := m.heap.slots[addr]; v != nil {
		m.value(v)
	}
}

func (m *marker) scope(s *Scope) {
	for ; s != nil; s = s.parent {
		if m.scopes[s] {
			return
		}
		m.scopes[s] = true
		for _, v := range s.vars {
			m.value(v.Value)
		}
	}
}

func (m *marker) value(v Value) {
	if v == nil {
		return
	}
	if d := v.details(); d.HasProto {
		m.addr(d.Proto)
	}
	switch v := v.(type) {
	case *Reference:
		if v.IsExport() {
			m.scope(v.Module)
		} else {
			m.addr(v.Addr)
		}
	case *Array:
		for _, item := range v.Items {
			m.value(item)
		}
	case *Object:
		for _, item := range v.items {
			m.value(item)
		}
	case *Function:
		m.scope(v.Scope)
		m.value(v.Bound)
	case *NativeFunction:
		m.value(v.Bound)
	case *EnumVariant:
		m.value(v.Inner)
	}
}
