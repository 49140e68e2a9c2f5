package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/zephyr/internal/token"
)

// ImportItem is one requested name, optionally renamed.
type ImportItem struct {
	Name  string
	Alias string
}

// ImportStatement is either `import "path" as name` (StarAlias set) or
// `from "path" import a, b as c` (Items set).
type ImportStatement struct {
	Token     token.Token
	Path      string
	Items     []ImportItem
	StarAlias string
}

func (is *ImportStatement) GetToken() token.Token    { return is.Token }
func (is *ImportStatement) TokenLiteral() string     { return is.Token.Lexeme }
func (is *ImportStatement) Location() token.Location { return location(is.Token) }
func (is *ImportStatement) String() string {
	if is.StarAlias != "" {
		return "import " + strconv.Quote(is.Path) + " as " + is.StarAlias
	}
	items := make([]string, len(is.Items))
	for i, it := range is.Items {
		items[i] = it.Name
		if it.Alias != "" && it.Alias != it.Name {
			items[i] += " as " + it.Alias
		}
	}
	return "from " + strconv.Quote(is.Path) + " import " + strings.Join(items, ", ")
}

// ExportStatement exports an existing name or a declaration, optionally under an alias.
type ExportStatement struct {
	Token       token.Token
	Name        *Identifier
	Declaration *Declaration
	Alias       string
}

func (es *ExportStatement) GetToken() token.Token    { return es.Token }
func (es *ExportStatement) TokenLiteral() string     { return es.Token.Lexeme }
func (es *ExportStatement) Location() token.Location { return location(es.Token) }
func (es *ExportStatement) String() string {
	var s string
	if es.Declaration != nil {
		s = "export " + es.Declaration.String()
	} else {
		s = "export " + es.Name.Value
	}
	if es.Alias != "" {
		s += " as " + es.Alias
	}
	return s
}

// EnumDeclaration is enum Name { A, B, C }.
type EnumDeclaration struct {
	Token    token.Token
	Name     *Identifier
	Variants []*Identifier
}

func (ed *EnumDeclaration) GetToken() token.Token    { return ed.Token }
func (ed *EnumDeclaration) TokenLiteral() string     { return ed.Token.Lexeme }
func (ed *EnumDeclaration) Location() token.Location { return location(ed.Token) }
func (ed *EnumDeclaration) String() string {
	names := make([]string, len(ed.Variants))
	for i, v := range ed.Variants {
		names[i] = v.Value
	}
	return "enum " + ed.Name.Value + " { " + strings.Join(names, ", ") + " }"
}
