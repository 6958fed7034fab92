package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/bindgraph/internal/types"
)

// annotationExpr represents the root of an annotation literal such as
// @app.Named("x") or @MapKey(value = {1, 2}, type = app.Foo.class)
type annotationExpr struct {
	Name []string `parser:"'@' @Ident ( '.' @Ident )*"`
	Args *argList `parser:"( '(' @@? ')' )?"`
}

// argList is either a list of name=value pairs or a single value
type argList struct {
	Named  []*namedArg `parser:"  @@ ( ',' @@ )*"`
	Single *valueExpr  `parser:"| @@"`
}

type namedArg struct {
	Name  string     `parser:"@Ident '='"`
	Value *valueExpr `parser:"@@"`
}

type valueExpr struct {
	String *string         `parser:"  @String"`
	Number *string         `parser:"| @Number"`
	Array  *arrayExpr      `parser:"| @@"`
	Nested *annotationExpr `parser:"| @@"`
	Ref    []string        `parser:"| @Ident ( '.' @Ident )*"`
}

type arrayExpr struct {
	Elems []*valueExpr `parser:"'{' ( @@ ( ',' @@ )* ','? )? '}'"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?[LlFfDd]?`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Punct", Pattern: `[@(){}.,=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var annotationParser = participle.MustBuild[annotationExpr](
	participle.Lexer(annotationLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses an annotation literal into its canonical structural form
func Parse(s string) (AnnotationRef, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return AnnotationRef{}, fmt.Errorf("empty annotation")
	}
	if !strings.HasPrefix(src, "@") {
		return AnnotationRef{}, fmt.Errorf("annotation must start with '@': %q", s)
	}
	expr, err := annotationParser.ParseString("", src)
	if err != nil {
		return AnnotationRef{}, fmt.Errorf("failed to parse annotation %q: %w", s, err)
	}
	return expr.toRef()
}

// MustParse is like Parse but panics on error
func MustParse(s string) AnnotationRef {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAll parses a list of annotation literals
func ParseAll(list []string) ([]AnnotationRef, error) {
	out := make([]AnnotationRef, 0, len(list))
	for _, s := range list {
		a, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (e *annotationExpr) toRef() (AnnotationRef, error) {
	name := strings.Join(e.Name, ".")
	if e.Args == nil {
		return Marker(name), nil
	}
	if e.Args.Single != nil {
		v, err := e.Args.Single.toValue()
		if err != nil {
			return AnnotationRef{}, err
		}
		return New(name, Element{Name: "value", Value: v}), nil
	}
	elements := make([]Element, 0, len(e.Args.Named))
	seen := make(map[string]bool, len(e.Args.Named))
	for _, arg := range e.Args.Named {
		if seen[arg.Name] {
			return AnnotationRef{}, fmt.Errorf("duplicate element '%s' in @%s", arg.Name, name)
		}
		seen[arg.Name] = true
		v, err := arg.Value.toValue()
		if err != nil {
			return AnnotationRef{}, err
		}
		elements = append(elements, Element{Name: arg.Name, Value: v})
	}
	return New(name, elements...), nil
}

func (v *valueExpr) toValue() (Value, error) {
	switch {
	case v.String != nil:
		raw, err := strconv.Unquote(*v.String)
		if err != nil {
			return Value{}, fmt.Errorf("invalid string literal %s: %w", *v.String, err)
		}
		return Value{Kind: StringValue, Text: quote(raw)}, nil
	case v.Number != nil:
		return Value{Kind: NumberValue, Text: normalizeNumber(*v.Number)}, nil
	case v.Array != nil:
		elems := make([]Value, 0, len(v.Array.Elems))
		for _, e := range v.Array.Elems {
			ev, err := e.toValue()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		return Value{Kind: ArrayValue, Elems: elems}, nil
	case v.Nested != nil:
		nested, err := v.Nested.toRef()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: AnnotationValue, Annotation: &nested}, nil
	case len(v.Ref) > 0:
		return refValue(v.Ref)
	}
	return Value{}, fmt.Errorf("empty annotation value")
}

// refValue classifies a dotted reference as a boolean, a class literal
// (trailing ".class") or an enum constant.
func refValue(parts []string) (Value, error) {
	if len(parts) == 1 && (parts[0] == "true" || parts[0] == "false") {
		return Value{Kind: BoolValue, Text: parts[0]}, nil
	}
	if len(parts) > 1 && parts[len(parts)-1] == "class" {
		t, err := types.Parse(strings.Join(parts[:len(parts)-1], "."))
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ClassValue, Type: &t}, nil
	}
	return Value{Kind: EnumValue, Text: strings.Join(parts, ".")}, nil
}

// normalizeNumber drops type suffixes so 1L and 1 compare equal
func normalizeNumber(n string) string {
	return strings.TrimRight(n, "LlFfDd")
}

func quote(s string) string {
	return strconv.Quote(s)
}
