package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/bindgraph/internal/types"
)

func TestParse_CanonicalRendering(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "marker", input: "@Provides", expected: "@Provides"},
		{name: "marker with parens", input: "@Provides()", expected: "@Provides"},
		{name: "single value", input: `@Named("db")`, expected: `@Named(value="db")`},
		{name: "qualified type", input: `@app.Named( "db" )`, expected: `@app.Named(value="db")`},
		{name: "elements sorted", input: `@Key(b = 2, a = 1)`, expected: `@Key(a=1, b=2)`},
		{name: "number suffix dropped", input: `@LongKey(42L)`, expected: `@LongKey(value=42)`},
		{name: "array", input: `@Tags({"a", "b"})`, expected: `@Tags(value={"a", "b"})`},
		{name: "enum", input: `@Mode(app.Mode.FAST)`, expected: `@Mode(value=app.Mode.FAST)`},
		{name: "class literal", input: `@ClassKey(app.Foo.class)`, expected: `@ClassKey(value=app.Foo.class)`},
		{name: "bool", input: `@Flag(enabled = true)`, expected: `@Flag(enabled=true)`},
		{name: "nested", input: `@Outer(inner = @Inner("x"))`, expected: `@Outer(inner=@Inner(value="x"))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref.String())

			again, err := Parse(ref.String())
			require.NoError(t, err)
			assert.True(t, Equal(ref, again))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "Named", "@", `@Named(`, `@Key(a=1, a=2)`} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestEqual_Structural(t *testing.T) {
	a := MustParse(`@Key(name = "x", values = {1, 2}, type = app.Foo.class)`)
	b := MustParse(`@Key(type=app.Foo.class, values={1,2}, name="x")`)
	c := MustParse(`@Key(type=app.Foo.class, values={2,1}, name="x")`)

	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))
	assert.False(t, Equal(a, c))
	assert.True(t, Equal(NamedQualifier("db"), MustParse(`@Named("db")`)))
}

func TestCanonicalize_ClassLiterals(t *testing.T) {
	aliases := types.Aliases{"app.Alias": types.MustParse("app.Real")}
	ref := MustParse(`@ClassKey({app.Alias.class})`)

	got, err := ref.Canonicalize(aliases)
	require.NoError(t, err)
	assert.Equal(t, `@ClassKey(value={app.Real.class})`, got.String())
}

func TestLookupHelpers(t *testing.T) {
	list := []AnnotationRef{MustParse("@javax.inject.Singleton"), MustParse(`@Named("x")`)}

	assert.True(t, Has(list, Singleton))
	assert.True(t, Has(list, "javax.inject.Singleton"))
	assert.False(t, Has(list, Provides))
	assert.Equal(t, 2, Count(list, Singleton, Named))

	named, ok := Find(list, Named)
	require.True(t, ok)
	v, ok := named.Element("value")
	require.True(t, ok)
	assert.Equal(t, StringValue, v.Kind)
	assert.Equal(t, `"x"`, v.Text)
}
