package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/zephyr/internal/config"
)

// Builtins are bound in the global scope and collected on the
// __zephyr_native object.
var Builtins = map[string]NativeFn{
	config.PrintFuncName:  builtinPrint,
	config.TypeOfFuncName: builtinTypeof,
	config.LenFuncName:    builtinLen,
	config.StrFuncName:    builtinStr,
	config.NumFuncName:    builtinNum,
	config.PushFuncName:   builtinPush,
	config.KeysFuncName:   builtinKeys,
	config.IterFuncName:   builtinIter,

	config.AddTagFuncName:        builtinAddTag,
	config.SetTagFuncName:        builtinSetTag,
	config.DeleteTagFuncName:     builtinDeleteTag,
	config.GetProtoObjFuncName:   builtinGetProtoObj,
	config.GetProtoObjOfFuncName: builtinGetProtoObjOf,
	config.SetProtoRefFuncName:   builtinSetProtoRef,

	config.EventEmitterFuncName: builtinEventEmitter,
	config.OnFuncName:           builtinOn,
	config.EmitFuncName:         builtinEmit,
	config.TCPConnectFuncName:   builtinTCPConnect,
	config.SleepEmitFuncName:    builtinSleepEmit,

	config.JSONStringifyFuncName: builtinJSONStringify,
	config.JSONParseFuncName:     builtinJSONParse,
	config.YAMLParseFuncName:     builtinYAMLParse,

	config.DBOpenFuncName:  builtinDBOpen,
	config.DBExecFuncName:  builtinDBExec,
	config.DBQueryFuncName: builtinDBQuery,
	config.DBCloseFuncName: builtinDBClose,

	config.FileExistsFuncName: builtinFileExists,
	config.FilenameFuncName:   builtinFilename,
	config.DirnameFuncName:    builtinDirname,

	config.CollectFuncName:   builtinCollect,
	config.ErrorCallFuncName: builtinErrorCall,
}

func builtinNames() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func invalidArgs(name string) error {
	return newError(TypeError, "invalid arguments to %s", name)
}

// value returns argument i with references followed.
func (c *NativeContext) value(i int) (Value, error) {
	v, err := c.Interp.unexport(c.Arg(i))
	if err != nil {
		return nil, err
	}
	v, err = c.Interp.deref(v)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *NativeContext) str(i int, name string) (string, error) {
	v, err := c.value(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(*String)
	if !ok {
		return "", invalidArgs(name)
	}
	return s.Value, nil
}

func (c *NativeContext) number(i int, name string) (float64, error) {
	v, err := c.value(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(*Number)
	if !ok {
		return 0, invalidArgs(name)
	}
	return n.Value, nil
}

// array returns the heap array argument i points at, with its reference.
func (c *NativeContext) array(i int, name string) (*Array, *Reference, error) {
	v, uerr := c.Interp.unexport(c.Arg(i))
	if uerr != nil {
		return nil, nil, uerr
	}
	ref, ok := v.(*Reference)
	if !ok || ref.IsExport() {
		return nil, nil, invalidArgs(name)
	}
	v, err := c.Interp.heap.Get(ref.Addr)
	if err != nil {
		return nil, nil, err
	}
	arr, ok := v.(*Array)
	if !ok {
		return nil, nil, invalidArgs(name)
	}
	return arr, ref, nil
}

func builtinPrint(c *NativeContext) (Value, error) {
	parts := make([]string, len(c.Args))
	for i, arg := range c.Args {
		s, err := Display(c.Interp.heap, arg, c.Interp.Color, false)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	fmt.Fprintln(c.Interp.Out, strings.Join(parts, " "))
	return NewNull(), nil
}

func builtinTypeof(c *NativeContext) (Value, error) {
	v, err := c.value(0)
	if err != nil {
		return nil, err
	}
	return NewString(v.TypeName()), nil
}

func builtinLen(c *NativeContext) (Value, error) {
	n, err := c.Interp.length(c.Arg(0))
	if err != nil {
		return nil, err
	}
	return NewNumber(float64(n)), nil
}

func builtinStr(c *NativeContext) (Value, error) {
	s, err := c.Arg(0).ToString(c.Interp.heap, true, false)
	if err != nil {
		return nil, err
	}
	return NewString(s), nil
}

func builtinNum(c *NativeContext) (Value, error) {
	v, err := c.value(0)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case *Number:
		return v, nil
	case *Boolean:
		if v.Value {
			return NewNumber(1), nil
		}
		return NewNumber(0), nil
	case *String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, newError(CannotCoerce, "cannot convert %q to a number", v.Value)
		}
		return NewNumber(f), nil
	}
	return nil, newError(CannotCoerce, "cannot convert a %s to a number", v.TypeName())
}

// builtinPush appends to an array in place and returns it.
func builtinPush(c *NativeContext) (Value, error) {
	arr, ref, err := c.array(0, config.PushFuncName)
	if err != nil {
		return nil, err
	}
	arr.Items = append(arr.Items, c.Args[1:]...)
	return ref, nil
}

func builtinKeys(c *NativeContext) (Value, error) {
	v, err := c.value(0)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, invalidArgs(config.KeysFuncName)
	}
	keys := obj.Keys()
	items := make([]Value, len(keys))
	for i, k := range keys {
		items[i] = NewString(k)
	}
	return c.Interp.allocate(NewArray(items)), nil
}

// builtinIter materializes anything a for loop can walk.
func builtinIter(c *NativeContext) (Value, error) {
	items, err := c.Arg(0).Iterate(c.Interp.heap)
	if err != nil {
		return nil, err
	}
	return c.Interp.allocate(NewArray(items)), nil
}

// builtinCollect schedules a heap sweep for the next safe point.
func builtinCollect(c *NativeContext) (Value, error) {
	c.Interp.RequestSweep()
	return NewNull(), nil
}

func builtinErrorCall(c *NativeContext) (Value, error) {
	msg := "error_call was called"
	if s, err := c.str(0, config.ErrorCallFuncName); err == nil {
		msg = s
	}
	return nil, newError(InvalidOperation, "%s", msg)
}
