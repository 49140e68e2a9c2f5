package evaluator

import (
	"strings"

	"github.com/funvibe/zephyr/internal/config"
)

// Methods start out on the prototypes. The receiver arrives as the first
// argument.
var prototypeMethods = map[string]map[string]NativeFn{
	config.StringProto: {
		"upper":    stringMethod(strings.ToUpper),
		"lower":    stringMethod(strings.ToLower),
		"trim":     stringMethod(strings.TrimSpace),
		"split":    methodSplit,
		"contains": methodContains,
		"len":      builtinLen,
	},
	config.ArrayProto: {
		"push":   builtinPush,
		"pop":    methodPop,
		"join":   methodJoin,
		"len":    builtinLen,
		"map":    methodMap,
		"filter": methodFilter,
		"each":   methodEach,
	},
	config.ObjectProto: {
		"keys": builtinKeys,
		"len":  builtinLen,
	},
	config.EventEmitterProto: {
		"on":   builtinOn,
		"emit": builtinEmit,
	},
	config.AnyProto: {
		"str":  builtinStr,
		"tags": methodTags,
	},
}

func (e *Evaluator) installPrototypeMethods() {
	for proto, methods := range prototypeMethods {
		for name, fn := range methods {
			if err := e.protos.Define(proto, name, NewNative(name, fn)); err != nil {
				e.logger.Error("cannot install prototype method", "proto", proto, "method", name, "error", err)
			}
		}
	}
}

func stringMethod(f func(string) string) NativeFn {
	return func(c *NativeContext) (Value, error) {
		s, err := c.str(0, "string method")
		if err != nil {
			return nil, err
		}
		return NewString(f(s)), nil
	}
}

func methodSplit(c *NativeContext) (Value, error) {
	s, err := c.str(0, "split")
	if err != nil {
		return nil, err
	}
	sep, err := c.str(1, "split")
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	items := make([]Value, len(parts))
	for i, p := range parts {
		items[i] = NewString(p)
	}
	return c.Interp.allocate(NewArray(items)), nil
}

func methodContains(c *NativeContext) (Value, error) {
	s, err := c.str(0, "contains")
	if err != nil {
		return nil, err
	}
	sub, err := c.str(1, "contains")
	if err != nil {
		return nil, err
	}
	return NewBoolean(strings.Contains(s, sub)), nil
}

// methodPop removes and returns the last item, or Null for an empty array.
func methodPop(c *NativeContext) (Value, error) {
	arr, _, err := c.array(0, "pop")
	if err != nil {
		return nil, err
	}
	n := len(arr.Items)
	if n == 0 {
		return NewNull(), nil
	}
	last := arr.Items[n-1]
	arr.Items = arr.Items[:n-1]
	return last, nil
}

func methodJoin(c *NativeContext) (Value, error) {
	arr, _, err := c.array(0, "join")
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(c.Args) > 1 {
		if sep, err = c.str(1, "join"); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(arr.Items))
	for i, item := range arr.Items {
		s, err := item.ToString(c.Interp.heap, true, false)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	return NewString(strings.Join(parts, sep)), nil
}

// eachItem calls fn with every item and its index, stopping at the first
// error.
func (c *NativeContext) eachItem(name string, fn func(item, result Value) error) error {
	arr, _, err := c.array(0, name)
	if err != nil {
		return err
	}
	callback := c.Arg(1)
	items := append([]Value(nil), arr.Items...)
	for i, item := range items {
		res, err := c.Interp.Call(callback, []Value{item, NewNumber(float64(i))}, c.Location)
		if err != nil {
			return err
		}
		if err := fn(item, res); err != nil {
			return err
		}
	}
	return nil
}

func methodMap(c *NativeContext) (Value, error) {
	var out []Value
	err := c.eachItem("map", func(_, res Value) error {
		out = append(out, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Interp.allocate(NewArray(out)), nil
}

func methodFilter(c *NativeContext) (Value, error) {
	var out []Value
	err := c.eachItem("filter", func(item, res Value) error {
		ok, err := c.Interp.truthy(res)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Interp.allocate(NewArray(out)), nil
}

func methodEach(c *NativeContext) (Value, error) {
	if err := c.eachItem("each", func(_, _ Value) error { return nil }); err != nil {
		return nil, err
	}
	return NewNull(), nil
}

func methodTags(c *NativeContext) (Value, error) {
	return tagsOf(c.Interp.heap, c.Arg(0)), nil
}
