package evaluator

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/zephyr/internal/config"
)

// toPlain converts a value into the plain Go form structpb accepts.
// Containers on the current path are tracked so cycles fail instead of
// recursing forever.
func (e *Evaluator) toPlain(v Value, path map[int]bool) (interface{}, error) {
	v, uerr := e.unexport(v)
	if uerr != nil {
		return nil, uerr
	}
	if ref, ok := v.(*Reference); ok {
		if !ref.IsExport() {
			if path[ref.Addr] {
				return nil, newError(TypeError, "cannot serialize a cyclic value")
			}
			path[ref.Addr] = true
			defer delete(path, ref.Addr)
		}
		target, err := ref.Deref(e.heap)
		if err != nil {
			return nil, err
		}
		v = target
	}

	switch v := v.(type) {
	case *Null:
		return nil, nil
	case *Boolean:
		return v.Value, nil
	case *Number:
		return v.Value, nil
	case *String:
		return v.Value, nil
	case *Array:
		out := make([]interface{}, len(v.Items))
		for i, item := range v.Items {
			p, err := e.toPlain(item, path)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case *Object:
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.Keys() {
			item, _ := v.Get(k)
			p, err := e.toPlain(item, path)
			if err != nil {
				return nil, err
			}
			out[k] = p
		}
		return out, nil
	}
	return nil, newError(CannotCoerce, "cannot serialize a %s", v.TypeName())
}

// fromStruct builds values from a decoded JSON document. Struct keys have
// no order, so object keys come out sorted.
func (e *Evaluator) fromStruct(v *structpb.Value) Value {
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return NewBoolean(k.BoolValue)
	case *structpb.Value_NumberValue:
		return NewNumber(k.NumberValue)
	case *structpb.Value_StringValue:
		return NewString(k.StringValue)
	case *structpb.Value_ListValue:
		items := make([]Value, len(k.ListValue.GetValues()))
		for i, item := range k.ListValue.GetValues() {
			items[i] = e.fromStruct(item)
		}
		return e.allocate(NewArray(items))
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, key := range keys {
			obj.Set(key, e.fromStruct(fields[key]))
		}
		return e.allocate(obj)
	}
	return NewNull()
}

// builtinJSONStringify encodes a value as JSON. A second argument turns on
// indentation with that many spaces.
func builtinJSONStringify(c *NativeContext) (Value, error) {
	plain, err := c.Interp.toPlain(c.Arg(0), make(map[int]bool))
	if err != nil {
		return nil, err
	}
	pv, err := structpb.NewValue(plain)
	if err != nil {
		return nil, newError(CannotCoerce, "%v", err)
	}
	opts := protojson.MarshalOptions{}
	if len(c.Args) > 1 {
		n, err := c.number(1, config.JSONStringifyFuncName)
		if err != nil {
			return nil, err
		}
		opts.Multiline = true
		opts.Indent = fmt.Sprintf("%*s", int(n), "")
	}
	data, err := opts.Marshal(pv)
	if err != nil {
		return nil, newError(CannotCoerce, "%v", err)
	}
	return NewString(string(data)), nil
}

func builtinJSONParse(c *NativeContext) (Value, error) {
	text, err := c.str(0, config.JSONParseFuncName)
	if err != nil {
		return nil, err
	}
	var pv structpb.Value
	if err := protojson.Unmarshal([]byte(text), &pv); err != nil {
		return nil, newError(CannotCoerce, "invalid JSON: %v", err)
	}
	return c.Interp.fromStruct(&pv), nil
}

// builtinYAMLParse decodes the first YAML document, keeping mapping order.
func builtinYAMLParse(c *NativeContext) (Value, error) {
	text, err := c.str(0, config.YAMLParseFuncName)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, newError(CannotCoerce, "invalid YAML: %v", err)
	}
	return c.Interp.fromYAML(&doc)
}

func (e *Evaluator) fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case 0:
		return NewNull(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(), nil
		}
		return e.fromYAML(n.Content[0])
	case yaml.AliasNode:
		return e.fromYAML(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, len(n.Content))
		for i, child := range n.Content {
			v, err := e.fromYAML(child)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return e.allocate(NewArray(items)), nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := e.fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return e.allocate(obj), nil
	}

	var scalar interface{}
	if err := n.Decode(&scalar); err != nil {
		return nil, newError(CannotCoerce, "invalid YAML scalar %q: %v", n.Value, err)
	}
	switch s := scalar.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBoolean(s), nil
	case int:
		return NewNumber(float64(s)), nil
	case int64:
		return NewNumber(float64(s)), nil
	case uint64:
		return NewNumber(float64(s)), nil
	case float64:
		return NewNumber(s), nil
	case string:
		return NewString(s), nil
	}
	return NewString(n.Value), nil
}
