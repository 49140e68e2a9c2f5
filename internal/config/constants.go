package config

import "strings"

const SourceFileExt = ".zr"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".zr", ".zephyr"}

// ConfigFileName is looked up from the working directory upwards.
const ConfigFileName = "zephyr.yaml"

// PackagePrefix marks an import specifier resolved under the package root.
const PackagePrefix = "pkg:"

// Names pre-bound in the root scope.
const (
	NativeObjectName = "__zephyr_native"
	DirnameName      = "__dirname"
	DiscardName      = "_"
)

// Tags attached to values.
const (
	TagsProperty = "__tags"
	EnumBaseTag  = "__enum_base"
	EnumNameTag  = "__enum_name"
)

// Prototype names. Every built-in type has a method table; "any" is the
// fallback for all values.
const (
	AnyProto          = "any"
	EventEmitterProto = "event_emitter"
	StringProto       = "string"
	ArrayProto        = "array"
	NumberProto       = "number"
	EnumProto         = "enum"
	ObjectProto       = "object"
)

// PrototypeNames lists every prototype created at interpreter start.
var PrototypeNames = []string{AnyProto, EventEmitterProto, StringProto, ArrayProto, NumberProto, EnumProto, ObjectProto}

// Built-in function names
const (
	PrintFuncName         = "print"
	TypeOfFuncName        = "typeof"
	LenFuncName           = "len"
	StrFuncName           = "str"
	NumFuncName           = "num"
	PushFuncName          = "push"
	KeysFuncName          = "keys"
	IterFuncName          = "iter"
	AddTagFuncName        = "add_tag"
	SetTagFuncName        = "set_tag"
	DeleteTagFuncName     = "delete_tag"
	GetProtoObjFuncName   = "get_proto_obj"
	GetProtoObjOfFuncName = "get_proto_obj_of"
	SetProtoRefFuncName   = "set_proto_ref"
	EventEmitterFuncName  = "event_emitter"
	OnFuncName            = "on"
	EmitFuncName          = "emit"
	TCPConnectFuncName    = "tcp_connect"
	SleepEmitFuncName     = "sleep_emit"
	JSONStringifyFuncName = "json_stringify"
	JSONParseFuncName     = "json_parse"
	YAMLParseFuncName     = "yaml_parse"
	DBOpenFuncName        = "db_open"
	DBExecFuncName        = "db_exec"
	DBQueryFuncName       = "db_query"
	DBCloseFuncName       = "db_close"
	CollectFuncName       = "collect"
	ErrorCallFuncName     = "error_call"
	FileExistsFuncName    = "file_exists"
	FilenameFuncName      = "filename"
	DirnameFuncName       = "dirname"
)

// Events emitted by stream natives.
const (
	ReceiveEvent = "receive"
	CloseEvent   = "close"
	TickEvent    = "tick"
)

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
