package evaluator

import (
	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/diagnostics"
	"github.com/funvibe/zephyr/internal/modules"
	"github.com/funvibe/zephyr/internal/token"
)

// module is a loaded source file. Names imported from it while it is
// still running are checked once it is done.
type module struct {
	scope  *Scope
	done   bool
	wanted []wantedName
}

type wantedName struct {
	name string
	loc  token.Location
}

func (e *Evaluator) moduleOf(s *Scope) *module {
	for _, m := range e.modules {
		if m.scope == s {
			return m
		}
	}
	return nil
}

// finishModule marks m as evaluated and checks the names other modules
// asked for in the meantime.
func (e *Evaluator) finishModule(m *module) *Error {
	m.done = true
	wanted := m.wanted
	m.wanted = nil
	for _, w := range wanted {
		if !m.scope.IsExported(w.name) {
			return newError(NotExported, "module %s does not export %s", m.scope.File(), w.name).at(w.loc)
		}
	}
	return nil
}

// load returns the module at the canonical path, evaluating it on first
// use. A module that fails is dropped from the cache.
func (e *Evaluator) load(path string) (*module, *Error) {
	if m, ok := e.modules[path]; ok {
		return m, nil
	}

	program, err := modules.ParseFile(path)
	if err != nil {
		return nil, parseError(err)
	}
	e.logger.Debug("loading module", "path", path)

	m := &module{scope: e.NewModuleScope(path)}
	e.modules[path] = m
	out := e.Eval(program, m.scope)
	if out.Err != nil {
		delete(e.modules, path)
		return nil, out.Err
	}
	if err := e.finishModule(m); err != nil {
		delete(e.modules, path)
		return nil, err
	}
	return m, nil
}

// parseError turns a lexer or parser failure into a runtime error.
func parseError(err error) *Error {
	diag, ok := modules.AsDiagnostic(err)
	if !ok {
		return newError(CannotResolve, "%v", err)
	}
	kind := UnexpectedToken
	if diag.Code == diagnostics.ErrInvalidNumber {
		kind = InvalidNumber
	}
	return newError(kind, "%s", diag.Message).at(diag.Token.Location())
}

func (e *Evaluator) evalImport(node *ast.ImportStatement, s *Scope) Outcome {
	path, err := e.resolver.Resolve(s.File(), node.Path)
	if err != nil {
		return fail(newError(CannotResolve, "cannot resolve %q from %s: %v", node.Path, s.File(), err))
	}
	m, loadErr := e.load(path)
	if loadErr != nil {
		return fail(loadErr)
	}

	if node.StarAlias != "" {
		ref := &Reference{Module: m.scope}
		if err := s.Insert(node.StarAlias, Variable{Const: true, Value: ref}); err != nil {
			return fail(asError(err))
		}
		return outcome(ref)
	}

	var last Value = NewNull()
	for _, item := range node.Items {
		if !m.scope.IsExported(item.Name) {
			if m.done {
				return failf(NotExported, "module %s does not export %s", path, item.Name)
			}
			m.wanted = append(m.wanted, wantedName{name: item.Name, loc: node.Location()})
		}
		local := item.Name
		if item.Alias != "" {
			local = item.Alias
		}
		ref := &Reference{Module: m.scope, Export: item.Name}
		if err := s.Insert(local, Variable{Const: true, Value: ref}); err != nil {
			return fail(asError(err))
		}
		last = ref
	}
	return outcome(last)
}

func (e *Evaluator) evalExport(node *ast.ExportStatement, s *Scope) Outcome {
	if decl := node.Declaration; decl != nil {
		out := e.evalDeclaration(decl, s)
		if out.Interrupted() {
			return out
		}
		if decl.Name == nil {
			return failf(InvalidOperation, "only single names can be exported")
		}
		if err := s.Export(decl.Name.Value, node.Alias); err != nil {
			return fail(asError(err))
		}
		return out
	}

	if err := s.Export(node.Name.Value, node.Alias); err != nil {
		return fail(asError(err))
	}
	v, err := s.Lookup(node.Name.Value)
	if err != nil {
		return fail(asError(err))
	}
	return outcome(v)
}
