package types

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// typeExpr is the root of the type expression grammar
type typeExpr struct {
	Base *baseExpr `parser:"@@"`
	Dims []string  `parser:"@Brackets*"`
}

type baseExpr struct {
	Wildcard *wildcardExpr `parser:"  @@"`
	Named    *namedExpr    `parser:"| @@"`
}

type wildcardExpr struct {
	Mark  string         `parser:"@'?'"`
	Bound *wildcardBound `parser:"@@?"`
}

type wildcardBound struct {
	Kind string    `parser:"@( 'extends' | 'super' )"`
	Type *typeExpr `parser:"@@"`
}

type namedExpr struct {
	Name []string    `parser:"@Ident ( '.' @Ident )*"`
	Args []*typeExpr `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
}

var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Brackets", Pattern: `\[\s*\]`},
	{Name: "Punct", Pattern: `[.,<>?]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var typeParser = participle.MustBuild[typeExpr](
	participle.Lexer(typeLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses a type expression such as "Map<String, Provider<app.Foo>>" or
// "app.Foo[]". Single-segment names listed in typeVars become type variables.
func Parse(s string, typeVars ...string) (TypeRef, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return TypeRef{}, fmt.Errorf("empty type expression")
	}
	expr, err := typeParser.ParseString("", src)
	if err != nil {
		return TypeRef{}, fmt.Errorf("failed to parse type %q: %w", s, err)
	}
	vars := make(map[string]bool, len(typeVars))
	for _, v := range typeVars {
		vars[v] = true
	}
	return expr.toRef(vars), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// canonical strings produced by TypeRef.String.
func MustParse(s string, typeVars ...string) TypeRef {
	t, err := Parse(s, typeVars...)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *typeExpr) toRef(vars map[string]bool) TypeRef {
	var base TypeRef
	switch {
	case e.Base.Wildcard != nil:
		base = TypeRef{Kind: Wildcard}
		if w := e.Base.Wildcard; w.Bound != nil {
			bound := w.Bound.Type.toRef(vars)
			base.Elem = &bound
			base.Bound = w.Bound.Kind
		}
	case e.Base.Named != nil:
		base = e.Base.Named.toRef(vars)
	}
	for range e.Dims {
		base = ArrayOf(base)
	}
	return base
}

func (n *namedExpr) toRef(vars map[string]bool) TypeRef {
	name := strings.Join(n.Name, ".")
	if len(n.Args) == 0 {
		switch {
		case name == "void":
			return TypeRef{Kind: Void}
		case primitives[name]:
			return TypeRef{Kind: Primitive, Name: name}
		case vars[name]:
			return TypeRef{Kind: TypeVariable, Name: name}
		}
	}
	ref := TypeRef{Kind: Declared, Name: name}
	for _, arg := range n.Args {
		ref.Args = append(ref.Args, arg.toRef(vars))
	}
	return ref
}

// Aliases maps alias names to the types they stand for
type Aliases map[string]TypeRef

// maxAliasDepth bounds alias expansion so alias cycles terminate
const maxAliasDepth = 32

// Canonicalize expands every alias occurring in t, recursively, producing
// the alias-free form used for key identity.
func (a Aliases) Canonicalize(t TypeRef) (TypeRef, error) {
	return a.canonicalize(t, 0)
}

func (a Aliases) canonicalize(t TypeRef, depth int) (TypeRef, error) {
	if depth > maxAliasDepth {
		return TypeRef{}, fmt.Errorf("alias expansion of %s does not terminate", t)
	}
	switch t.Kind {
	case Declared:
		if target, ok := a[t.Name]; ok && len(t.Args) == 0 {
			return a.canonicalize(target, depth+1)
		}
		if len(t.Args) == 0 {
			return t, nil
		}
		args := make([]TypeRef, len(t.Args))
		for i, arg := range t.Args {
			c, err := a.canonicalize(arg, depth)
			if err != nil {
				return TypeRef{}, err
			}
			args[i] = c
		}
		return TypeRef{Kind: Declared, Name: t.Name, Args: args}, nil
	case Array, Wildcard:
		if t.Elem == nil {
			return t, nil
		}
		elem, err := a.canonicalize(*t.Elem, depth)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: t.Kind, Elem: &elem, Bound: t.Bound}, nil
	default:
		return t, nil
	}
}
