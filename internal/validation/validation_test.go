package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/graph"
	"github.com/toyz/bindgraph/internal/source"
)

type fixture struct {
	src        *source.MemorySource
	bindings   *bindings.Factory
	components *descriptors.ComponentFactory
	validator  *Validator
}

func newFixture(t *testing.T, manifest string, config Config) *fixture {
	t.Helper()
	m, err := source.Parse([]byte(manifest))
	require.NoError(t, err)
	src, err := source.FromManifests(m)
	require.NoError(t, err)
	b := bindings.NewFactory(src)
	return &fixture{
		src:        src,
		bindings:   b,
		components: descriptors.NewComponentFactory(b, descriptors.NewModuleFactory(b)),
		validator:  New(b, config),
	}
}

func (f *fixture) descriptor(t *testing.T, name string) *descriptors.ComponentDescriptor {
	t.Helper()
	r := f.components.ForComponent(name)
	require.True(t, r.IsResolved(), "descriptor %s: %+v", name, r)
	return r.Value
}

func (f *fixture) graph(t *testing.T, name string) *graph.BindingGraph {
	t.Helper()
	r := graph.NewFactory(f.bindings).Create(f.descriptor(t, name), false)
	require.True(t, r.IsResolved(), "graph %s: %+v", name, r)
	return r.Value
}

func (f *fixture) module(t *testing.T, name string) *Report {
	t.Helper()
	mod, st := f.src.Module(name)
	require.Equal(t, source.Found, st)
	return f.validator.ValidateModule(mod)
}

func (f *fixture) class(t *testing.T, name string) *Report {
	t.Helper()
	c, st := f.src.Class(name)
	require.Equal(t, source.Found, st)
	return f.validator.ValidateClass(c)
}

func TestReport_Cleanliness(t *testing.T) {
	r := NewReport("root")
	assert.True(t, r.IsClean())

	sub := NewReport("child")
	sub.Warning("x", "just a warning")
	r.AddSubreport(sub)
	assert.True(t, r.IsClean())

	sub.Error("x", "broken %d", 1)
	assert.False(t, r.IsClean())
	assert.Equal(t, []string{"broken 1"}, r.Errors())

	dirty := NewReport("dirty")
	dirty.MarkDirty()
	assert.False(t, dirty.IsClean())
	assert.Equal(t, 0, dirty.ErrorCount())
}

func TestDedupSink(t *testing.T) {
	collector := &CollectingSink{}
	sink := NewDedupSink(collector)

	r := NewReport("a")
	r.Error("a#foo", "bad")
	r.Warning("a#foo", "bad")
	Emit(sink, r)
	Emit(sink, r)
	assert.Len(t, collector.Diagnostics, 2)
	assert.Len(t, collector.Errors(), 1)

	sink.Reset()
	Emit(sink, r)
	assert.Len(t, collector.Diagnostics, 4)
}

func TestValidateBindingMethod(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		abstract bool
		expected string
	}{
		{name: "provides", method: `{name: foo, returns: app.Foo, annotations: ["@Provides"]}`},
		{name: "private", method: `{name: foo, returns: app.Foo, annotations: ["@Provides"], modifiers: [private]}`, expected: "may not be private"},
		{name: "abstract provides", method: `{name: foo, returns: app.Foo, annotations: ["@Provides"], modifiers: [abstract]}`, expected: "cannot be abstract"},
		{name: "void", method: `{name: foo, annotations: ["@Provides"]}`, expected: "must return a value"},
		{name: "type parameters", method: `{name: foo, returns: app.Foo, typeParams: [T], annotations: ["@Provides"]}`, expected: "may not have type parameters"},
		{name: "framework return", method: `{name: foo, returns: "Provider<app.Foo>", annotations: ["@Provides"]}`, expected: "must not return framework types"},
		{name: "two qualifiers", method: `{name: foo, returns: app.Foo, annotations: ["@Provides", '@Named("a")', '@Named("b")']}`, expected: "more than one qualifier"},
		{name: "two scopes", method: `{name: foo, returns: app.Foo, annotations: ["@Provides", "@Singleton", "@Reusable"]}`, expected: "more than one scope"},
		{name: "into map without key", method: `{name: foo, returns: app.Foo, annotations: ["@Provides", "@IntoMap"]}`, expected: "must have a map key"},
		{name: "map key without into map", method: `{name: foo, returns: app.Foo, annotations: ["@Provides", '@StringKey("a")']}`, expected: "only allowed on @IntoMap"},
		{name: "two multibinding annotations", method: `{name: foo, returns: "Set<app.Foo>", annotations: ["@Provides", "@IntoSet", "@ElementsIntoSet"]}`, expected: "more than one multibinding annotation"},
		{name: "elements into set", method: `{name: foo, returns: app.Foo, annotations: ["@Provides", "@ElementsIntoSet"]}`, expected: "must return a Set"},
		{name: "provides and binds", method: `{name: foo, returns: app.Foo, annotations: ["@Provides", "@Binds"]}`, expected: "more than one of @Provides, @Binds and @Multibinds"},
		{name: "binds", method: `{name: bind, returns: app.Iface, annotations: ["@Binds"], modifiers: [abstract], params: [{name: impl, type: app.Impl}]}`},
		{name: "binds concrete", method: `{name: bind, returns: app.Iface, annotations: ["@Binds"], params: [{name: impl, type: app.Impl}]}`, expected: "must be abstract"},
		{name: "binds two params", method: `{name: bind, returns: app.Iface, annotations: ["@Binds"], modifiers: [abstract], params: [{name: a, type: app.Impl}, {name: b, type: app.Impl}]}`, expected: "exactly one parameter"},
		{name: "binds unrelated", method: `{name: bind, returns: app.Iface, annotations: ["@Binds"], modifiers: [abstract], params: [{name: other, type: app.Foo}]}`, expected: "must be assignable to the return type"},
		{name: "multibinds", method: `{name: set, returns: "Set<app.Foo>", annotations: ["@Multibinds"], modifiers: [abstract]}`},
		{name: "multibinds params", method: `{name: set, returns: "Set<app.Foo>", annotations: ["@Multibinds"], modifiers: [abstract], params: [{name: a, type: app.Foo}]}`, expected: "cannot have parameters"},
		{name: "multibinds not a collection", method: `{name: set, returns: app.Foo, annotations: ["@Multibinds"], modifiers: [abstract]}`, expected: "must return Map<K, V> or Set<T>"},
		{name: "multibinds scoped", method: `{name: set, returns: "Set<app.Foo>", annotations: ["@Multibinds", "@Singleton"], modifiers: [abstract]}`, expected: "cannot be scoped"},
		{name: "instance provides in abstract module", method: `{name: foo, returns: app.Foo, annotations: ["@Provides"]}`, abstract: true, expected: "must be static"},
		{name: "wildcard parameter", method: `{name: foo, returns: app.Foo, annotations: ["@Provides"], params: [{name: l, type: "List<?>"}]}`, expected: "wildcard type arguments"},
		{name: "raw provider parameter", method: `{name: foo, returns: app.Foo, annotations: ["@Provides"], params: [{name: p, type: Provider}]}`, expected: "without a type argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fmt.Sprintf(`
version: v1
classes:
  - name: app.Iface
    interface: true
  - name: app.Impl
    supertypes: [app.Iface]
modules:
  - name: app.M
    abstract: %t
    methods:
      - %s
`, tt.abstract, tt.method), Config{})

			r := f.module(t, "app.M")
			if tt.expected == "" {
				assert.True(t, r.IsClean(), "unexpected errors: %v", r.Errors())
				return
			}
			assert.False(t, r.IsClean())
			assert.Contains(t, strings.Join(r.Errors(), "\n"), tt.expected)
		})
	}
}

func TestValidateModule(t *testing.T) {
	f := newFixture(t, `
version: v1
classes:
  - name: app.NotAModule
components:
  - name: app.Plain
    kind: subcomponent
modules:
  - name: app.Generic
    typeParams: [T]
  - name: app.M
    includes: [app.M, app.NotAModule, app.Generic]
    subcomponents: [app.Plain, app.NotAModule]
    methods:
      - {name: foo, returns: app.Foo, annotations: ["@Provides"], modifiers: [static]}
      - {name: foo, returns: app.Bar, annotations: ["@Provides"], modifiers: [static], params: [{name: f, type: app.Foo}]}
      - {name: helper, returns: app.Baz}
`, Config{})

	r := f.module(t, "app.M")
	errs := strings.Join(r.Errors(), "\n")
	assert.Contains(t, errs, "more than one binding method with the same name")
	assert.Contains(t, errs, "app.M includes itself")
	assert.Contains(t, errs, "app.NotAModule is listed in includes but is not a module")
	assert.Contains(t, errs, "app.Generic is listed in includes but is generic")
	assert.Contains(t, errs, "app.Plain doesn't have a builder or factory")
	assert.Contains(t, errs, "app.NotAModule is listed in subcomponents but is not a subcomponent")
	assert.Equal(t, 6, r.ErrorCount())

	assert.Same(t, r, f.module(t, "app.M"))
}

const assistedManifest = `
version: v1
classes:
  - name: app.Foo
  - name: app.Bar
  - name: app.Baz
    constructors: [{annotations: ["@Inject"]}]
  - name: app.Thing
    constructors:
      - annotations: ["@AssistedInject"]
        params:
          - {name: bar, type: app.Bar, annotations: ["@Assisted"]}
          - {name: foo, type: app.Foo, annotations: ["@Assisted"]}
          - {name: baz, type: app.Baz}
  - name: app.ThingFactory
    interface: true
    annotations: ["@AssistedFactory"]
    methods:
      - name: create
        returns: app.Thing
        params: [%s]
components:
  - name: app.AppComponent
    methods:
      - {name: factory, returns: app.ThingFactory}
`

func TestValidateClass_AssistedFactoryMatches(t *testing.T) {
	f := newFixture(t, fmt.Sprintf(assistedManifest, "{name: foo, type: app.Foo}, {name: bar, type: app.Bar}"), Config{})

	assert.True(t, f.class(t, "app.Thing").IsClean())
	assert.True(t, f.class(t, "app.ThingFactory").IsClean())

	g := f.graph(t, "app.AppComponent")
	assert.True(t, f.validator.ValidateGraph(g).IsClean())

	nodes := g.BindingNodes()
	require.Len(t, nodes, 3)
	factory := nodes[0].Binding()
	assert.Equal(t, []int{1, 0}, factory.AssistedOrder)

	thing := nodes[1].Binding()
	require.Len(t, thing.Dependencies, 1)
	assert.Equal(t, "app.Baz", thing.Dependencies[0].Key.Type)
	assert.Len(t, thing.AssistedParams, 2)
}

func TestValidateClass_AssistedFactoryMismatch(t *testing.T) {
	f := newFixture(t, fmt.Sprintf(assistedManifest, "{name: foo, type: app.Foo}"), Config{})

	r := f.class(t, "app.ThingFactory")
	require.Equal(t, 1, r.ErrorCount())
	msg := r.Errors()[0]
	assert.Contains(t, msg, "Actual: [app.Foo]")
	assert.Contains(t, msg, "Expected: [app.Bar, app.Foo]")
}

func TestValidateClass_Injectable(t *testing.T) {
	f := newFixture(t, `
version: v1
classes:
  - name: app.TwoCtors
    constructors:
      - annotations: ["@Inject"]
      - annotations: ["@Inject"]
        params: [{name: s, type: String}]
  - name: app.Private
    constructors: [{annotations: ["@Inject"], modifiers: [private]}]
  - name: app.Abstract
    abstract: true
    constructors: [{annotations: ["@Inject"]}]
  - name: app.ScopedAssisted
    annotations: ["@Singleton"]
    constructors: [{annotations: ["@AssistedInject"], params: [{name: s, type: String, annotations: ["@Assisted"]}]}]
  - name: app.DuplicateAssisted
    constructors:
      - annotations: ["@AssistedInject"]
        params:
          - {name: a, type: String, annotations: ["@Assisted"]}
          - {name: b, type: String, annotations: ["@Assisted"]}
  - name: app.DistinctAssisted
    constructors:
      - annotations: ["@AssistedInject"]
        params:
          - {name: a, type: String, annotations: ['@Assisted("first")']}
          - {name: b, type: String, annotations: ['@Assisted("second")']}
  - name: app.PlainAssisted
    constructors: [{annotations: ["@Inject"], params: [{name: s, type: String, annotations: ["@Assisted"]}]}]
`, Config{})

	tests := map[string]string{
		"app.TwoCtors":          "only contain one injected constructor",
		"app.Private":           "may not be private",
		"app.Abstract":          "cannot be declared on abstract types",
		"app.ScopedAssisted":    "@AssistedInject types cannot be scoped",
		"app.DuplicateAssisted": "duplicate @Assisted type: String",
		"app.PlainAssisted":     "only be used within an @AssistedInject constructor",
	}
	for class, expected := range tests {
		r := f.class(t, class)
		require.Equal(t, 1, r.ErrorCount(), "%s: %v", class, r.Errors())
		assert.Contains(t, r.Errors()[0], expected, class)
	}
	assert.True(t, f.class(t, "app.DistinctAssisted").IsClean())
}

func TestValidateGraph_EndToEnd(t *testing.T) {
	f := newFixture(t, `
version: v1
classes:
  - name: app.Foo
  - name: app.Bar
    constructors:
      - annotations: ["@Inject"]
        params: [{name: foo, type: app.Foo}]
modules:
  - name: app.FooModule
    methods:
      - {name: provideFoo, returns: app.Foo, annotations: ["@Provides"], modifiers: [static]}
components:
  - name: app.AppComponent
    modules: [app.FooModule]
    methods:
      - {name: bar, returns: app.Bar}
`, Config{})

	g := f.graph(t, "app.AppComponent")
	assert.Len(t, g.BindingNodes(), 2)
	assert.True(t, f.validator.ValidateComponent(f.descriptor(t, "app.AppComponent")).IsClean())
	assert.True(t, f.validator.ValidateGraph(g).IsClean())
	assert.True(t, f.module(t, "app.FooModule").IsClean())
	assert.True(t, f.class(t, "app.Bar").IsClean())
}

const cycleManifest = `
version: v1
classes:
  - name: app.A
    constructors: [{annotations: ["@Inject"], params: [{name: b, type: app.B}]}]
  - name: app.B
    constructors: [{annotations: ["@Inject"], params: [{name: c, type: app.C}]}]
  - name: app.C
    constructors: [{annotations: ["@Inject"], params: [{name: a, type: "%s"}]}]
components:
  - name: app.AppComponent
    methods:
      - {name: a, returns: app.A}
`

func TestValidateGraph_Cycles(t *testing.T) {
	f := newFixture(t, fmt.Sprintf(cycleManifest, "app.A"), Config{})
	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	require.Equal(t, 1, r.ErrorCount())
	msg := r.Errors()[0]
	assert.Contains(t, msg, "dependency cycle")
	for _, name := range []string{"app.A", "app.B", "app.C"} {
		assert.Contains(t, msg, name)
	}

	for _, request := range []string{"Provider<app.A>", "Lazy<app.A>", "Provider<Lazy<app.A>>"} {
		f := newFixture(t, fmt.Sprintf(cycleManifest, request), Config{})
		r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
		assert.True(t, r.IsClean(), "%s: %v", request, r.Errors())
	}
}

func TestValidateGraph_CycleThroughMultibinding(t *testing.T) {
	f := newFixture(t, `
version: v1
classes:
  - name: app.A
    constructors:
      - annotations: ["@Inject"]
        params: [{name: names, type: "Set<String>"}]
modules:
  - name: app.M
    methods:
      - {name: s, returns: String, annotations: ["@Provides", "@IntoSet"], modifiers: [static], params: [{name: a, type: app.A}]}
components:
  - name: app.AppComponent
    modules: [app.M]
    methods:
      - {name: a, returns: app.A}
      - {name: names, returns: "Set<String>"}
`, Config{})

	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	items := r.AllItems()
	require.Len(t, items, 1, "%v", r.Errors())
	assert.NotEmpty(t, items[0].Element)
	assert.Contains(t, []string{"app.A#<init>", "app.A#<init>(names)", "app.M#s", "app.M#s(a)"}, items[0].Element)
	assert.Contains(t, items[0].Message, "is contributed to Set<String>")
	assert.Contains(t, items[0].Message, "app.M#s(a)")
	assert.NotContains(t, items[0].Message, "\n        \n")
}

func TestValidateGraph_MissingBindingReportedOnce(t *testing.T) {
	f := newFixture(t, `
version: v1
classes:
  - name: app.Bar
    constructors: [{annotations: ["@Inject"], params: [{name: foo, type: app.Foo}]}]
  - name: app.Baz
    constructors: [{annotations: ["@Inject"], params: [{name: foo, type: app.Foo}]}]
components:
  - name: app.AppComponent
    methods:
      - {name: bar, returns: app.Bar}
      - {name: baz, returns: app.Baz}
`, Config{})

	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	require.Equal(t, 1, r.ErrorCount())
	msg := r.Errors()[0]
	assert.Contains(t, msg, "app.Foo cannot be provided")
	assert.Contains(t, msg, "app.Bar#<init>(foo)")
	assert.Contains(t, msg, "app.Baz#<init>(foo)")
}

func TestValidateGraph_DuplicateBindings(t *testing.T) {
	f := newFixture(t, `
version: v1
modules:
  - name: app.First
    methods:
      - {name: foo, returns: app.Foo, annotations: ["@Provides"], modifiers: [static]}
  - name: app.Second
    methods:
      - {name: foo, returns: app.Foo, annotations: ["@Provides"], modifiers: [static]}
components:
  - name: app.AppComponent
    modules: [app.First, app.Second]
    methods:
      - {name: foo, returns: app.Foo}
`, Config{})

	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	require.Equal(t, 1, r.ErrorCount())
	assert.Contains(t, r.Errors()[0], "app.First#foo")
	assert.Contains(t, r.Errors()[0], "app.Second#foo")
}

func TestValidateGraph_DuplicateMapKeys(t *testing.T) {
	f := newFixture(t, `
version: v1
modules:
  - name: app.First
    methods:
      - {name: a, returns: String, annotations: ["@Provides", "@IntoMap", '@StringKey("x")'], modifiers: [static]}
  - name: app.Second
    methods:
      - {name: b, returns: String, annotations: ["@Provides", "@IntoMap", '@StringKey("x")'], modifiers: [static]}
      - {name: c, returns: String, annotations: ["@Provides", "@IntoMap", '@StringKey("y")'], modifiers: [static]}
components:
  - name: app.AppComponent
    modules: [app.First, app.Second]
    methods:
      - {name: strings, returns: "Map<String, String>"}
      - {name: providers, returns: "Map<String, Provider<String>>"}
`, Config{})

	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	errs := r.Errors()
	require.Len(t, errs, 1, "both map forms share one set of contributions")
	assert.Contains(t, errs[0], `@StringKey(value="x")`)
	assert.Contains(t, errs[0], "Map<String, String>")
	assert.Contains(t, errs[0], "app.First#a")
	assert.Contains(t, errs[0], "app.Second#b")
	assert.NotContains(t, errs[0], "app.Second#c")
}

func TestValidateGraph_DuplicateMapKeysAcrossSubcomponents(t *testing.T) {
	f := newFixture(t, `
version: v1
modules:
  - name: app.First
    methods:
      - {name: a, returns: String, annotations: ["@Provides", "@IntoMap", '@StringKey("x")'], modifiers: [static]}
      - {name: b, returns: String, annotations: ["@Provides", "@IntoMap", '@StringKey("x")'], modifiers: [static]}
  - name: app.ChildModule
    methods:
      - {name: z, returns: String, annotations: ["@Provides", "@IntoMap", '@StringKey("z")'], modifiers: [static]}
components:
  - name: app.AppComponent
    modules: [app.First]
    methods:
      - {name: strings, returns: "Map<String, String>"}
      - {name: child, returns: app.Child}
  - name: app.Child
    kind: subcomponent
    modules: [app.ChildModule]
    methods:
      - {name: strings, returns: "Map<String, String>"}
`, Config{})

	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	errs := r.Errors()
	require.Len(t, errs, 1, "%v", errs)
	assert.Contains(t, errs[0], "app.First#a")
	assert.Contains(t, errs[0], "app.First#b")
	assert.NotContains(t, errs[0], "app.ChildModule#z")
}

func TestValidateGraph_IncompatibleScopes(t *testing.T) {
	manifest := `
version: v1
classes:
  - name: app.Cache
    annotations: ["@Singleton"]
    constructors: [{annotations: ["@Inject"]}]
components:
  - name: app.AppComponent
    scopes: [%s]
    methods:
      - {name: cache, returns: app.Cache}
`
	f := newFixture(t, fmt.Sprintf(manifest, ""), Config{})
	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	require.Equal(t, 1, r.ErrorCount())
	assert.Contains(t, r.Errors()[0], "may not reference bindings with different scopes")

	f = newFixture(t, fmt.Sprintf(manifest, `"@Singleton"`), Config{})
	assert.True(t, f.validator.ValidateGraph(f.graph(t, "app.AppComponent")).IsClean())
}

func TestValidateGraph_DirectAssistedRequest(t *testing.T) {
	f := newFixture(t, `
version: v1
classes:
  - name: app.Thing
    constructors: [{annotations: ["@AssistedInject"], params: [{name: s, type: String, annotations: ["@Assisted"]}]}]
components:
  - name: app.AppComponent
    methods:
      - {name: thing, returns: app.Thing}
`, Config{})

	r := f.validator.ValidateGraph(f.graph(t, "app.AppComponent"))
	require.Equal(t, 1, r.ErrorCount())
	assert.Contains(t, r.Errors()[0], "cannot be requested directly")
}

func TestValidateComponent_ScopeHierarchy(t *testing.T) {
	manifest := `
version: v1
annotations:
  scopes: [app.RequestScoped]
components:
  - name: app.Y
    scopes: [%s]
  - name: app.X
    scopes: [%s]
    dependencies: [app.Y]
`
	tests := []struct {
		name   string
		x, y   string
		strict bool
		errors int
	}{
		{name: "same scope", x: "@Singleton", y: "@Singleton", errors: 1},
		{name: "unscoped depends on scoped", x: "", y: "@Singleton", errors: 0},
		{name: "distinct scopes", x: "@Singleton", y: "@app.RequestScoped", errors: 0},
		{name: "strict singleton", x: "@Singleton", y: "@app.RequestScoped", strict: true, errors: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := func(s string) string {
				if s == "" {
					return ""
				}
				return `"` + s + `"`
			}
			f := newFixture(t, fmt.Sprintf(manifest, quote(tt.y), quote(tt.x)), Config{StrictSingleton: tt.strict})
			r := f.validator.ValidateComponent(f.descriptor(t, "app.X"))
			assert.Equal(t, tt.errors, r.ErrorCount(), "%v", r.Errors())
		})
	}
}

func TestValidateComponent_ScopeHierarchyDiamond(t *testing.T) {
	f := newFixture(t, `
version: v1
components:
  - name: app.X
    scopes: ["@Singleton"]
    dependencies: [app.Y, app.Z]
  - name: app.Y
    dependencies: [app.W]
  - name: app.Z
    dependencies: [app.W]
  - name: app.W
    scopes: ["@Singleton"]
`, Config{})

	r := f.validator.ValidateComponent(f.descriptor(t, "app.X"))
	require.Equal(t, 1, r.ErrorCount(), "%v", r.Errors())
	assert.Contains(t, r.Errors()[0], "non-hierarchical scope ordering")
	assert.Contains(t, r.Errors()[0], "app.W")
}

func TestValidateComponent_DependencyCycle(t *testing.T) {
	f := newFixture(t, `
version: v1
components:
  - name: app.X
    dependencies: [app.Y]
  - name: app.Y
    dependencies: [app.X]
`, Config{})

	r := f.validator.ValidateComponent(f.descriptor(t, "app.X"))
	require.Equal(t, 1, r.ErrorCount())
	assert.Contains(t, r.Errors()[0], "app.X → app.Y → app.X")
}

func TestValidateComponent_Creator(t *testing.T) {
	f := newFixture(t, `
version: v1
modules:
  - name: app.Configured
    constructors: [{params: [{name: url, type: String}]}]
    methods:
      - {name: url, returns: String, annotations: ["@Provides"]}
components:
  - name: app.NoBuild
    modules: [app.Configured]
    creator:
      kind: builder
      methods:
        - {name: configured, params: [{name: m, type: app.Configured}]}
  - name: app.MissingSetter
    modules: [app.Configured]
    creator:
      kind: builder
      methods:
        - {name: build, returns: app.MissingSetter}
  - name: app.Complete
    modules: [app.Configured]
    creator:
      kind: factory
      methods:
        - {name: create, returns: app.Complete, params: [{name: m, type: app.Configured}]}
  - name: app.TwiceSet
    modules: [app.Configured]
    creator:
      kind: builder
      methods:
        - {name: build, returns: app.TwiceSet}
        - {name: a, params: [{name: m, type: app.Configured}]}
        - {name: b, params: [{name: m, type: app.Configured}]}
`, Config{})

	tests := map[string]string{
		"app.NoBuild":       "exactly one no-argument method",
		"app.MissingSetter": "missing setters for required modules or components: [app.Configured]",
		"app.TwiceSet":      "is set more than once",
	}
	for name, expected := range tests {
		r := f.validator.ValidateComponent(f.descriptor(t, name))
		require.Equal(t, 1, r.ErrorCount(), "%s: %v", name, r.Errors())
		assert.Contains(t, r.Errors()[0], expected, name)
	}
	assert.True(t, f.validator.ValidateComponent(f.descriptor(t, "app.Complete")).IsClean())
}

func TestValidateComponent_Subcomponents(t *testing.T) {
	f := newFixture(t, `
version: v1
modules:
  - name: app.Scoped
    methods:
      - {name: foo, returns: app.Foo, annotations: ["@Provides", "@Singleton"], modifiers: [static]}
components:
  - name: app.Root
    scopes: ["@Singleton"]
    modules: [app.Scoped]
    methods:
      - {name: child, returns: app.Child}
      - {name: broken, params: [{name: s, type: String}], returns: String}
  - name: app.Child
    kind: subcomponent
    scopes: ["@Singleton"]
    modules: [app.Scoped]
    methods:
      - {name: grandchild, returns: app.Root}
`, Config{})

	r := f.validator.ValidateComponent(f.descriptor(t, "app.Root"))
	errs := strings.Join(r.Errors(), "\n")
	assert.Contains(t, errs, "provision methods may not have parameters")
	assert.Contains(t, errs, "app.Child has conflicting scopes")
	assert.Contains(t, errs, "repeats modules with scoped bindings")
	assert.Contains(t, errs, "returns the root component app.Root")
	assert.Equal(t, 4, r.ErrorCount(), errs)
}
