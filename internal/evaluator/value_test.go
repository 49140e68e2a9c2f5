package evaluator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDisplay(t *testing.T) {
	h := NewHeap()
	obj := NewObject()
	obj.Set("b", NewString("two"))
	obj.Set("a", NewNumber(1))
	objRef := NewReference(h.Allocate(obj))
	arr := NewReference(h.Allocate(NewArray([]Value{NewNumber(1.5), NewString("x"), NewNull(), objRef})))

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer", NewNumber(3), "3"},
		{"fraction", NewNumber(0.25), "0.25"},
		{"inf", NewNumber(math.Inf(1)), "inf"},
		{"nan", NewNumber(math.NaN()), "NaN"},
		{"string", NewString("hi"), "hi"},
		{"bool", NewBoolean(false), "false"},
		{"null", NewNull(), "null"},
		{"object_keeps_order", objRef, `.{b: "two", a: 1}`},
		{"array", arr, `[1.5, "x", null, .{b: "two", a: 1}]`},
		{"range", &Range{Start: 1, End: 5, Inclusive: true}, "1..=5"},
		{"stepped_range", &Range{Start: 0, End: 10, Step: 2, HasStep: true}, "0..10:2"},
		{"native", NewNative("len", builtinLen), "NativeFunction<len>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Display(h, tt.v, false, false)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDisplayColorAndTags(t *testing.T) {
	n := NewNumber(7)
	n.SetTag("unit", "cm")
	got, err := Display(NewHeap(), n, true, true)
	require.NoError(t, err)
	require.Equal(t, colorYellow+"7"+colorReset+"\n"+colorGray+`# {"unit": "cm"}`+colorReset, got)
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NewBoolean(true), true},
		{NewBoolean(false), false},
		{NewNull(), false},
		{NewString(""), false},
		{NewString("0"), true},
		{NewNumber(0), false},
		{NewNumber(-1), false},
		{NewNumber(0.5), true},
		{NewReference(0), true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsTruthy(tt.v), "%s %#v", tt.v.TypeName(), tt.v)
	}
}

func TestEqual(t *testing.T) {
	h := NewHeap()
	a := h.Allocate(NewArray(nil))
	b := h.Allocate(NewArray(nil))

	require.True(t, Equal(h, NewNumber(1), NewNumber(1)))
	require.False(t, Equal(h, NewNumber(1), NewString("1")))
	require.True(t, Equal(h, NewNull(), NewNull()))
	require.True(t, Equal(h, NewReference(a), NewReference(a)))
	require.False(t, Equal(h, NewReference(a), NewReference(b)), "arrays compare by address")
	require.True(t, Equal(h, &Range{Start: 1, End: 3}, &Range{Start: 1, End: 3, Step: 1, HasStep: true}))

	red := &EnumVariant{Enum: "e1", Inner: NewString("Red")}
	require.True(t, Equal(h, red, &EnumVariant{Enum: "e1", Inner: NewString("Red")}))
	require.False(t, Equal(h, red, &EnumVariant{Enum: "e2", Inner: NewString("Red")}))
}

func TestRangeIterate(t *testing.T) {
	numbers := func(t *testing.T, r *Range) []float64 {
		t.Helper()
		items, err := r.Iterate(nil)
		require.NoError(t, err)
		out := make([]float64, len(items))
		for i, item := range items {
			out[i] = item.(*Number).Value
		}
		return out
	}

	tests := []struct {
		name string
		r    *Range
		want []float64
	}{
		{"exclusive", &Range{Start: 1, End: 4}, []float64{1, 2, 3}},
		{"inclusive", &Range{Start: 1, End: 4, Inclusive: true}, []float64{1, 2, 3, 4}},
		{"descending", &Range{Start: 5, End: 1}, []float64{5, 4, 3, 2}},
		{"step", &Range{Start: 0, End: 10, Step: 3, HasStep: true}, []float64{0, 3, 6, 9}},
		{"empty", &Range{Start: 2, End: 2}, []float64{}},
		{"step_past_end", &Range{Start: 1, End: 10, Step: 4, HasStep: true}, []float64{1, 5, 9}},
		{"step_inclusive_hits_end", &Range{Start: 0, End: 9, Step: 3, HasStep: true, Inclusive: true}, []float64{0, 3, 6, 9}},
		{"step_exclusive_hits_end", &Range{Start: 0, End: 9, Step: 3, HasStep: true}, []float64{0, 3, 6}},
		{"descending_step_past_end", &Range{Start: 10, End: 0, Step: -4, HasStep: true}, []float64{10, 6, 2}},
		{"fractional", &Range{Start: 0, End: 1, Step: 0.25, HasStep: true}, []float64{0, 0.25, 0.5, 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, numbers(t, tt.r)); diff != "" {
				t.Errorf("range items mismatch (-want +got):\n%s", diff)
			}
		})
	}

	invalid := []struct {
		name string
		r    *Range
	}{
		{"zero_step", &Range{Start: 0, End: 3, Step: 0, HasStep: true}},
		{"wrong_sign", &Range{Start: 0, End: 3, Step: -1, HasStep: true}},
		{"nan_end", &Range{Start: 0, End: math.NaN()}},
		{"nan_start", &Range{Start: math.NaN(), End: 3}},
		{"infinite_end", &Range{Start: 0, End: math.Inf(1)}},
		{"infinite_start", &Range{Start: math.Inf(-1), End: 0}},
		{"nan_step", &Range{Start: 0, End: 3, Step: math.NaN(), HasStep: true}},
		{"infinite_step", &Range{Start: 0, End: 3, Step: math.Inf(1), HasStep: true}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, RangeError, asError(tt.r.Validate()).Kind)
			_, err := tt.r.Iterate(nil)
			require.Equal(t, RangeError, asError(err).Kind)
		})
	}
}

func TestObjectDeleteKeepsOrder(t *testing.T) {
	o := NewObject()
	for _, k := range []string{"a", "b", "c"} {
		o.Set(k, NewNull())
	}
	o.Delete("b")
	o.Delete("missing")
	o.Set("a", NewNumber(1))
	require.Equal(t, []string{"a", "c"}, o.Keys())
	require.Equal(t, 2, o.Len())
}
