package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CanonicalForms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     []string
		expected string
		kind     Kind
	}{
		{name: "primitive", input: "int", expected: "int", kind: Primitive},
		{name: "void", input: "void", expected: "void", kind: Void},
		{name: "qualified", input: "app.Foo", expected: "app.Foo", kind: Declared},
		{name: "generic with spacing", input: "Map< String ,Provider<app.Foo> >", expected: "Map<String, Provider<app.Foo>>", kind: Declared},
		{name: "nested closers", input: "List<List<app.Foo>>", expected: "List<List<app.Foo>>", kind: Declared},
		{name: "array", input: "app.Foo[]", expected: "app.Foo[]", kind: Array},
		{name: "array of arrays", input: "int[] []", expected: "int[][]", kind: Array},
		{name: "wildcard", input: "Class<?>", expected: "Class<?>", kind: Declared},
		{name: "bounded wildcard", input: "List<? extends app.Foo>", expected: "List<? extends app.Foo>", kind: Declared},
		{name: "type variable", input: "T", vars: []string{"T"}, expected: "T", kind: TypeVariable},
		{name: "type variable inside", input: "Repo<T>", vars: []string{"T"}, expected: "Repo<T>", kind: Declared},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.input, tt.vars...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref.String())
			assert.Equal(t, tt.kind, ref.Kind)

			// The canonical form must round-trip.
			again, err := Parse(ref.String(), tt.vars...)
			require.NoError(t, err)
			assert.True(t, Equal(ref, again))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "List<", "Map<String,>", "<Foo>"} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestEqual_IsAnEquivalenceRelation(t *testing.T) {
	a := MustParse("Map<String, List<app.Foo>>")
	b := MustParse("Map<String,List<app.Foo>>")
	c := MapOf(Named("String"), Named("List", Named("app.Foo")))

	assert.True(t, Equal(a, a))
	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))
	assert.True(t, Equal(b, c))
	assert.True(t, Equal(a, c))
	assert.False(t, Equal(a, MustParse("Map<String, List<app.Bar>>")))
}

func TestAliases_Canonicalize(t *testing.T) {
	aliases := Aliases{
		"app.UserId":  MustParse("long"),
		"app.Users":   MustParse("List<app.User>"),
		"app.Indirect": MustParse("app.Users"),
	}

	got, err := aliases.Canonicalize(MustParse("Map<app.UserId, app.Indirect>"))
	require.NoError(t, err)
	assert.Equal(t, "Map<long, List<app.User>>", got.String())

	cyclic := Aliases{"a.A": MustParse("a.B"), "a.B": MustParse("a.A")}
	_, err = cyclic.Canonicalize(MustParse("a.A"))
	assert.Error(t, err)
}

func TestSubstitute(t *testing.T) {
	param := MustParse("Map<K, List<V>>", "K", "V")
	bindings, err := Bind([]string{"K", "V"}, []TypeRef{Named("String"), Named("app.Foo")})
	require.NoError(t, err)

	assert.Equal(t, "Map<String, List<app.Foo>>", Substitute(param, bindings).String())
	assert.False(t, Substitute(param, bindings).ContainsTypeVariable())
	assert.True(t, param.ContainsTypeVariable())

	_, err = Bind([]string{"T"}, nil)
	assert.Error(t, err)
}

func TestUnwrapAndPredicates(t *testing.T) {
	inner, ok := MustParse("Provider<Lazy<app.Foo>>").Unwrap(ProviderName)
	require.True(t, ok)
	assert.Equal(t, "Lazy<app.Foo>", inner.String())

	_, ok = MustParse("app.Foo").Unwrap(ProviderName)
	assert.False(t, ok)

	assert.True(t, MustParse("Provider").IsRawFramework())
	assert.True(t, MustParse("?").HasWildcardArgs())
	assert.True(t, MustParse("List<?>").HasWildcardArgs())
	assert.False(t, MustParse("Map<Class<?>, app.Foo>").HasWildcardArgs())
	assert.False(t, MustParse("?").IsValidBindingType())
	assert.False(t, MustParse("void").IsValidBindingType())
	assert.Equal(t, "Foo", MustParse("app.Foo").SimpleName())
}
