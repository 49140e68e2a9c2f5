package evaluator

import (
	"github.com/funvibe/zephyr/internal/config"
)

// Tags and prototypes live on the value passed in, not on a copy.

func builtinAddTag(c *NativeContext) (Value, error) {
	key, err := c.str(1, config.AddTagFuncName)
	if err != nil {
		return nil, err
	}
	val, err := c.str(2, config.AddTagFuncName)
	if err != nil {
		return nil, err
	}
	c.Arg(0).details().SetTag(key, val)
	return NewNull(), nil
}

// builtinSetTag replaces a tag, creating it if needed.
func builtinSetTag(c *NativeContext) (Value, error) {
	key, err := c.str(1, config.SetTagFuncName)
	if err != nil {
		return nil, err
	}
	val, err := c.str(2, config.SetTagFuncName)
	if err != nil {
		return nil, err
	}
	d := c.Arg(0).details()
	d.DeleteTag(key)
	d.SetTag(key, val)
	return NewNull(), nil
}

func builtinDeleteTag(c *NativeContext) (Value, error) {
	key, err := c.str(1, config.DeleteTagFuncName)
	if err != nil {
		return nil, err
	}
	c.Arg(0).details().DeleteTag(key)
	return NewNull(), nil
}

// builtinGetProtoObj returns the method table of a built-in type by name.
func builtinGetProtoObj(c *NativeContext) (Value, error) {
	name, err := c.str(0, config.GetProtoObjFuncName)
	if err != nil {
		return nil, err
	}
	ref, err := c.Interp.protos.Ref(name)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func builtinGetProtoObjOf(c *NativeContext) (Value, error) {
	if len(c.Args) != 1 {
		return nil, invalidArgs(config.GetProtoObjOfFuncName)
	}
	return NewReference(c.Interp.protos.AddressOf(c.Args[0])), nil
}

// builtinSetProtoRef points method lookup for a value at an object in the
// heap.
func builtinSetProtoRef(c *NativeContext) (Value, error) {
	if len(c.Args) != 2 {
		return nil, invalidArgs(config.SetProtoRefFuncName)
	}
	v, uerr := c.Interp.unexport(c.Args[1])
	if uerr != nil {
		return nil, uerr
	}
	ref, ok := v.(*Reference)
	if !ok || ref.IsExport() {
		return nil, invalidArgs(config.SetProtoRefFuncName)
	}
	if _, err := c.Interp.protos.object(ref.Addr); err != nil {
		return nil, err
	}
	c.Args[0].details().SetProto(ref.Addr)
	return NewNull(), nil
}
