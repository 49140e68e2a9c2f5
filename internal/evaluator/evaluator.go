package evaluator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/bridge"
	"github.com/funvibe/zephyr/internal/config"
	"github.com/funvibe/zephyr/internal/modules"
	"github.com/funvibe/zephyr/internal/token"
)

// Options configure a new Evaluator. Zero values pick defaults.
type Options struct {
	Context  context.Context
	Out      io.Writer
	Logger   *slog.Logger
	Resolver *modules.Resolver
	// Color enables ANSI colors in print and debug output.
	Color bool
	// MaxDepth bounds nested evaluation.
	MaxDepth int
}

// Evaluator walks the AST. It is single threaded: only native workers run
// on other goroutines, and they talk to it through the bridge.
type Evaluator struct {
	ctx    context.Context
	cancel context.CancelFunc
	Out    io.Writer
	Color  bool
	logger *slog.Logger

	heap     *Heap
	protos   *Prototypes
	global   *Scope
	consts   map[Value]bool
	resolver *modules.Resolver
	modules  map[string]*module

	bridge      *bridge.Bridge
	workers     *bridge.Group
	queued      []queuedWorker
	listeners   *bridge.Registry[Value]
	outstanding int

	dbs *databases

	// top is the scope of the outermost running program.
	top            *Scope
	sweepRequested bool

	maxDepth  int
	evalDepth int
}

func New(opts Options) *Evaluator {
	e := &Evaluator{
		Out:       opts.Out,
		Color:     opts.Color,
		logger:    opts.Logger,
		resolver:  opts.Resolver,
		maxDepth:  opts.MaxDepth,
		heap:      NewHeap(),
		modules:   make(map[string]*module),
		bridge:    bridge.New(bridge.DefaultBuffer),
		listeners: bridge.NewRegistry[Value](),
		dbs:       newDatabases(),
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	e.ctx, e.cancel = context.WithCancel(parent)
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.resolver == nil {
		e.resolver = modules.NewResolver("")
	}
	if e.maxDepth <= 0 {
		e.maxDepth = config.DefaultMaxDepth
	}
	e.protos = NewPrototypes(e.heap)
	e.global = NewScope(nil)
	e.installGlobals()
	return e
}

func (e *Evaluator) Heap() *Heap              { return e.heap }
func (e *Evaluator) Global() *Scope           { return e.global }
func (e *Evaluator) Prototypes() *Prototypes  { return e.protos }
func (e *Evaluator) Logger() *slog.Logger     { return e.logger }
func (e *Evaluator) Context() context.Context { return e.ctx }

func (e *Evaluator) installGlobals() {
	consts := map[string]Value{
		"true":  NewBoolean(true),
		"false": NewBoolean(false),
		"null":  NewNull(),
	}
	e.consts = make(map[Value]bool, len(consts))
	for name, v := range consts {
		e.consts[v] = true
		_ = e.global.Insert(name, Variable{Const: true, Value: v})
	}

	natives := NewObject()
	for _, name := range builtinNames() {
		fn := NewNative(name, Builtins[name])
		natives.Set(name, fn)
		_ = e.global.Insert(name, Variable{Value: fn})
	}
	_ = e.global.Insert(config.NativeObjectName, Variable{Const: true, Value: NewReference(e.heap.Allocate(natives))})
	e.installPrototypeMethods()
}

// NewModuleScope creates the top-level scope for the source file at path.
// __dirname is bound to the file's directory.
func (e *Evaluator) NewModuleScope(path string) *Scope {
	s := NewModuleScope(e.global, path)
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	_ = s.Insert(config.DirnameName, Variable{Const: true, Value: NewString(dir)})
	return s
}

// Eval evaluates node in scope s.
func (e *Evaluator) Eval(node ast.Node, s *Scope) Outcome {
	e.evalDepth++
	defer func() { e.evalDepth-- }()

	if e.evalDepth > e.maxDepth {
		return failf(Internal, "maximum recursion depth exceeded").withLocation(node)
	}
	select {
	case <-e.ctx.Done():
		return failf(Internal, "execution cancelled: %v", e.ctx.Err()).withLocation(node)
	default:
	}

	out := e.evalCore(node, s)
	if out.Err != nil && node != nil {
		out.Err.at(node.Location())
	}
	return out
}

func (o Outcome) withLocation(node ast.Node) Outcome {
	if o.Err != nil && node != nil {
		o.Err.at(node.Location())
	}
	return o
}

func (e *Evaluator) evalCore(node ast.Node, s *Scope) Outcome {
	switch node := node.(type) {
	case *ast.Program:
		return e.evalProgram(node, s)
	case *ast.Block:
		return e.evalBlock(node, NewScope(s))

	// Literals
	case *ast.NumberLiteral:
		return outcome(NewNumber(node.Value))
	case *ast.StringLiteral:
		return outcome(NewString(node.Value))
	case *ast.Identifier:
		v, err := s.Lookup(node.Value)
		if err != nil {
			return fail(asError(err))
		}
		// true, false and null are shared; every read gets its own copy
		// so tags stay with the binding they were written on.
		if e.consts[v] {
			v = copyValue(v)
		}
		return outcome(v)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(node, s)
	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(node, s)
	case *ast.FunctionLiteral:
		return e.evalFunctionLiteral(node, s)
	case *ast.RangeExpression:
		return e.evalRange(node, s)

	// Operators
	case *ast.PrefixExpression:
		return e.evalPrefix(node, s)
	case *ast.PostfixExpression:
		return e.evalPostfix(node, s)
	case *ast.InfixExpression:
		return e.evalInfix(node, s)
	case *ast.LogicalExpression:
		return e.evalLogical(node, s)
	case *ast.AssignExpression:
		return e.evalAssign(node, s)
	case *ast.TernaryExpression:
		return e.evalTernary(node, s)
	case *ast.IsExpression:
		return e.evalIs(node, s)
	case *ast.InExpression:
		return e.evalIn(node, s)
	case *ast.TypeofExpression:
		return e.evalTypeof(node, s)

	// Access and calls
	case *ast.MemberExpression:
		return e.evalMember(node, s)
	case *ast.CallExpression:
		return e.evalCall(node, s)

	// Control flow
	case *ast.IfExpression:
		return e.evalIf(node, s)
	case *ast.WhileExpression:
		return e.evalWhile(node, s)
	case *ast.ForExpression:
		return e.evalFor(node, s)
	case *ast.TryExpression:
		return e.evalTry(node, s)
	case *ast.MatchExpression:
		return e.evalMatch(node, s)
	case *ast.BreakStatement:
		return interrupt(&Signal{Kind: SignalBreak, Label: node.Label, Location: node.Location()})
	case *ast.ContinueStatement:
		return interrupt(&Signal{Kind: SignalContinue, Label: node.Label, Location: node.Location()})
	case *ast.ReturnStatement:
		return e.evalReturn(node, s)
	case *ast.ThrowStatement:
		return e.evalThrow(node, s)
	case *ast.AssertStatement:
		return e.evalAssert(node, s)
	case *ast.DebugStatement:
		return e.evalDebug(node, s)

	// Declarations and modules
	case *ast.Declaration:
		return e.evalDeclaration(node, s)
	case *ast.EnumDeclaration:
		return e.evalEnum(node, s)
	case *ast.ImportStatement:
		return e.evalImport(node, s)
	case *ast.ExportStatement:
		return e.evalExport(node, s)
	}
	if node == nil {
		return failf(Internal, "cannot evaluate an empty node")
	}
	return failf(Internal, "cannot evaluate %T", node)
}

// evalProgram runs statements directly in s. A signal that reaches the
// top of a program is an error. A sweep requested by collect runs between
// statements of the outermost program.
func (e *Evaluator) evalProgram(program *ast.Program, s *Scope) Outcome {
	outermost := e.evalDepth == 1
	var result Value = NewNull()
	for _, stmt := range program.Statements {
		out := e.Eval(stmt, s)
		if out.Err != nil {
			return out
		}
		if out.Signal != nil {
			return fail(escaped(out.Signal))
		}
		result = out.Value
		if outermost {
			e.sweepIfRequested(result)
		}
	}
	return outcome(result)
}

func (e *Evaluator) evalBlock(block *ast.Block, s *Scope) Outcome {
	return e.evalStatements(block.Statements, s)
}

func (e *Evaluator) evalStatements(stmts []ast.Node, s *Scope) Outcome {
	var result Value = NewNull()
	for _, stmt := range stmts {
		out := e.Eval(stmt, s)
		if out.Interrupted() {
			return out
		}
		result = out.Value
	}
	return outcome(result)
}

// deref resolves references; other values are returned as is.
func (e *Evaluator) deref(v Value) (Value, *Error) {
	ref, ok := v.(*Reference)
	if !ok {
		return v, nil
	}
	target, err := ref.Deref(e.heap)
	if err != nil {
		return nil, asError(err)
	}
	return target, nil
}

// allocate stores a container in the heap and returns a reference to it.
func (e *Evaluator) allocate(v Value) *Reference {
	return NewReference(e.heap.Allocate(v))
}

// RunProgram evaluates an already parsed program as the module at path and
// waits for background workers.
func (e *Evaluator) RunProgram(program *ast.Program, path string) (Value, error) {
	s := e.NewModuleScope(path)
	e.top = s
	m := &module{scope: s}
	if path != "" {
		e.modules[path] = m
	}
	out := e.Eval(program, s)
	if out.Err != nil {
		return nil, out.Err
	}
	if err := e.finishModule(m); err != nil {
		return nil, err
	}
	if err := e.Drain(e.ctx); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// RunSource parses and runs source as if it were the file at path.
func (e *Evaluator) RunSource(source, path string) (Value, error) {
	program, err := modules.ParseSource(source, path)
	if err != nil {
		return nil, err
	}
	return e.RunProgram(program, path)
}

// RunFile runs the file at path.
func (e *Evaluator) RunFile(path string) (Value, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	program, err := modules.ParseFile(abs)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("running file", "path", abs)
	return e.RunProgram(program, abs)
}

// EvalIn evaluates source in an existing scope, as the REPL does, and
// drains background work afterwards.
func (e *Evaluator) EvalIn(source string, s *Scope) (Value, error) {
	program, err := modules.ParseSource(source, s.File())
	if err != nil {
		return nil, err
	}
	e.top = s
	out := e.Eval(program, s)
	if out.Err != nil {
		return nil, out.Err
	}
	if err := e.Drain(e.ctx); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// Call invokes a function value with args from outside any script scope.
func (e *Evaluator) Call(fn Value, args []Value, loc token.Location) (Value, error) {
	out := e.callValue(fn, args, e.global, loc)
	if out.Signal != nil {
		return nil, escaped(out.Signal)
	}
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Value, nil
}

// RequestSweep asks for a Collect at the next safe point: between
// statements of the outermost program or after a listener call.
func (e *Evaluator) RequestSweep() { e.sweepRequested = true }

func (e *Evaluator) sweepIfRequested(live ...Value) {
	if !e.sweepRequested {
		return
	}
	e.sweepRequested = false
	e.Collect(live...)
}

// Collect frees heap slots unreachable from the global scope, the running
// program, loaded modules, prototypes, registered listeners and live.
func (e *Evaluator) Collect(live ...Value) int {
	all := []*Scope{e.global}
	if e.top != nil {
		all = append(all, e.top)
	}
	for _, m := range e.modules {
		all = append(all, m.scope)
	}
	roots := append(e.protos.Roots(), live...)
	e.listeners.Each(func(_ bridge.Handle, v Value) {
		roots = append(roots, v)
	})
	freed := e.heap.Sweep(all, roots...)
	e.logger.Debug("heap swept", "freed", freed, "live", e.heap.Live())
	return freed
}

// Close stops background workers and releases resources held by natives.
func (e *Evaluator) Close() error {
	e.cancel()
	e.queued = nil
	e.bridge.Close()
	return e.dbs.closeAll()
}
