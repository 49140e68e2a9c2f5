package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapReusesFreedSlots(t *testing.T) {
	h := NewHeap()
	a := h.Allocate(NewNumber(1))
	b := h.Allocate(NewNumber(2))
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)

	h.Deallocate(a)
	require.Equal(t, 1, h.Live())
	require.Equal(t, 2, h.Len())

	c := h.Allocate(NewString("reused"))
	require.Equal(t, a, c)
	v, err := h.Get(c)
	require.NoError(t, err)
	require.Equal(t, "reused", v.(*String).Value)
	require.Equal(t, 2, h.Len())
}

func TestHeapFreedSlot(t *testing.T) {
	h := NewHeap()
	addr := h.Allocate(NewNull())
	h.Deallocate(addr)
	h.Deallocate(addr)
	require.Equal(t, 0, h.Live())

	_, err := h.Get(addr)
	require.Equal(t, UnknownReference, asError(err).Kind)
	require.Equal(t, UnknownReference, asError(h.Set(addr, NewNull())).Kind)

	// A double free must not hand the slot out twice.
	first := h.Allocate(NewNumber(1))
	second := h.Allocate(NewNumber(2))
	require.NotEqual(t, first, second)
}

func TestHeapOutOfRange(t *testing.T) {
	h := NewHeap()
	_, err := h.Get(-1)
	require.Error(t, err)
	_, err = h.Get(3)
	require.Error(t, err)
	h.Deallocate(7)
	require.Equal(t, 0, h.Len())
}

func TestSweep(t *testing.T) {
	h := NewHeap()
	s := NewScope(nil)

	kept := h.Allocate(NewArray([]Value{NewNumber(1)}))
	require.NoError(t, s.Insert("kept", Variable{Value: NewReference(kept)}))

	inner := h.Allocate(NewObject())
	outer := h.Allocate(NewArray([]Value{NewReference(inner)}))
	require.NoError(t, s.Insert("nested", Variable{Value: NewReference(outer)}))

	// Two arrays that only point at each other.
	x := h.Allocate(NewArray(nil))
	y := h.Allocate(NewArray([]Value{NewReference(x)}))
	xv, err := h.Get(x)
	require.NoError(t, err)
	xv.(*Array).Items = append(xv.(*Array).Items, NewReference(y))

	rooted := h.Allocate(NewArray(nil))

	freed := h.Sweep([]*Scope{s}, NewReference(rooted))
	require.Equal(t, 2, freed)
	for _, addr := range []int{kept, inner, outer, rooted} {
		_, err := h.Get(addr)
		require.NoError(t, err, "address %d", addr)
	}
	for _, addr := range []int{x, y} {
		_, err := h.Get(addr)
		require.Error(t, err, "address %d", addr)
	}
}

func TestSweepFollowsClosures(t *testing.T) {
	h := NewHeap()
	global := NewScope(nil)
	captured := NewScope(global)
	addr := h.Allocate(NewArray(nil))
	require.NoError(t, captured.Insert("items", Variable{Value: NewReference(addr)}))
	require.NoError(t, global.Insert("f", Variable{Value: &Function{Scope: captured}}))

	require.Equal(t, 0, h.Sweep([]*Scope{global}))
	_, err := h.Get(addr)
	require.NoError(t, err)
}

func TestSweepFollowsPrototypes(t *testing.T) {
	h := NewHeap()
	proto := h.Allocate(NewObject())
	n := NewNumber(1)
	n.SetProto(proto)

	require.Equal(t, 0, h.Sweep(nil, n))
	require.Equal(t, 1, h.Sweep(nil))
}
