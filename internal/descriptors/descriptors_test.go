package descriptors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
)

const tree = `
version: v1
annotations:
  scopes: [app.RequestScoped]
classes:
  - name: app.Config
modules:
  - name: app.AppModule
    includes: [app.CoreModule, app.AppModule]
    subcomponents: [app.Request]
    methods:
      - {name: provideFoo, returns: app.Foo, annotations: ["@Provides", "@Singleton"], modifiers: [static]}
      - {name: bindBar, returns: app.Bar, annotations: ["@Binds"], modifiers: [abstract], params: [{name: impl, type: app.BarImpl}]}
      - {name: handlers, returns: "Set<app.Handler>", annotations: ["@Multibinds"], modifiers: [abstract]}
  - name: app.CoreModule
    includes: [app.AppModule]
    methods:
      - {name: provideClock, returns: app.Clock, annotations: ["@Provides"]}
components:
  - name: app.AppComponent
    scopes: ["@Singleton"]
    modules: [app.AppModule]
    dependencies: [app.Config]
    methods:
      - {name: foo, returns: app.Foo}
      - {name: request, returns: app.Request}
      - {name: broken, returns: void}
      - {name: withParam, returns: app.Foo, params: [{name: x, type: int}]}
    creator:
      kind: builder
      methods:
        - {name: core, returns: app.AppComponent.Builder, params: [{name: m, type: app.CoreModule}]}
        - {name: config, returns: app.AppComponent.Builder, params: [{name: c, type: app.Config}]}
        - {name: seed, returns: app.AppComponent.Builder, annotations: ["@BindsInstance"], params: [{name: s, type: String}]}
        - {name: build, returns: app.AppComponent}
        - {name: odd, returns: void, params: [{name: a, type: int}, {name: b, type: int}]}
  - name: app.Request
    kind: subcomponent
    scopes: ["@app.RequestScoped"]
    methods:
      - {name: again, returns: app.Request}
      - {name: root, returns: app.AppComponent}
    creator:
      kind: factory
      methods:
        - {name: create, returns: app.Request}
`

func newFactories(t *testing.T, manifest string) (*ModuleFactory, *ComponentFactory) {
	t.Helper()
	m, err := source.Parse([]byte(manifest))
	require.NoError(t, err)
	src, err := source.FromManifests(m)
	require.NoError(t, err)
	b := bindings.NewFactory(src)
	modules := NewModuleFactory(b)
	return modules, NewComponentFactory(b, modules)
}

func TestModuleFactory_Create(t *testing.T) {
	modules, _ := newFactories(t, tree)

	r := modules.Create("app.AppModule")
	require.True(t, r.IsResolved())
	d := r.Value
	require.Len(t, d.Bindings, 2)
	assert.Equal(t, models.Provision, d.Bindings[0].Kind)
	assert.Equal(t, models.Delegate, d.Bindings[1].Kind)
	require.Len(t, d.Multibindings, 1)
	assert.Equal(t, "Set<app.Handler>", d.Multibindings[0].Key.Type)
	require.Len(t, d.Subcomponents, 1)
	assert.Equal(t, "app.Request", d.Subcomponents[0].Subcomponent)
	assert.True(t, d.HasScopedBinding())

	require.Len(t, d.Includes, 1, "self includes are skipped")
	assert.Equal(t, "app.CoreModule", d.Includes[0].Name)
	assert.Same(t, d, d.Includes[0].Includes[0], "include cycles share descriptors")

	names := func(list []*ModuleDescriptor) []string {
		var out []string
		for _, m := range list {
			out = append(out, m.Name)
		}
		return out
	}
	assert.Equal(t, []string{"app.AppModule", "app.CoreModule"}, names(Transitive([]*ModuleDescriptor{d})))

	again := modules.Create("app.AppModule")
	assert.Same(t, d, again.Value)
	modules.Reset()
	assert.NotSame(t, d, modules.Create("app.AppModule").Value)
}

func TestModuleFactory_Missing(t *testing.T) {
	modules, _ := newFactories(t, `
version: v1
pending: [app.Later]
`)

	absent := modules.Create("app.Nope")
	assert.Equal(t, models.Failed, absent.Status)
	assert.Equal(t, errors.ManifestErrorCode, errors.CodeOf(absent.Err))

	pending := modules.Create("app.Later")
	assert.True(t, pending.IsDeferred())
	assert.Equal(t, []string{"app.Later"}, pending.Pending)
}

func TestComponentFactory_ForComponent(t *testing.T) {
	_, components := newFactories(t, tree)

	r := components.ForComponent("app.AppComponent")
	require.True(t, r.IsResolved())
	d := r.Value

	assert.Equal(t, models.RootComponent, d.Kind())
	require.Len(t, d.Scopes, 1)
	assert.True(t, d.Scopes[0].IsSingleton())
	assert.True(t, d.HasScope(d.Scopes[0]))
	assert.True(t, d.HasModule("app.CoreModule"))
	assert.Len(t, d.DeclaredModules, 1)
	assert.Len(t, d.Modules, 2)

	require.Len(t, d.EntryPoints, 4)
	assert.Equal(t, ProvisionMethod, d.EntryPoints[0].Kind)
	assert.Equal(t, "app.Foo", d.EntryPoints[0].Request.Key.Type)
	assert.Equal(t, ChildFactoryMethod, d.EntryPoints[1].Kind)
	assert.Equal(t, "app.Request", d.EntryPoints[1].Child)
	assert.Equal(t, InvalidMethod, d.EntryPoints[2].Kind)
	assert.Equal(t, "component methods must return a value", d.EntryPoints[2].Reason)
	assert.Equal(t, InvalidMethod, d.EntryPoints[3].Kind)
	assert.Equal(t, "provision methods may not have parameters", d.EntryPoints[3].Reason)

	require.Len(t, d.Children, 1, "a child reached twice is built once")
	child, ok := d.Child("app.Request")
	require.True(t, ok)
	assert.Equal(t, models.Subcomponent, child.Kind())
	assert.Equal(t, []string{"app.Request"}, child.RecursiveChildren)
	assert.Equal(t, "returns the root component app.AppComponent", child.EntryPoints[1].Reason)
	require.NotNil(t, child.Creator)
	assert.Equal(t, models.Factory, child.Creator.Kind())

	assert.Same(t, d, components.ForComponent("app.AppComponent").Value)
}

func TestComponentFactory_Creator(t *testing.T) {
	_, components := newFactories(t, tree)
	d := components.ForComponent("app.AppComponent").Value
	c := d.Creator
	require.NotNil(t, c)

	assert.Equal(t, models.Builder, c.Kind())
	require.Len(t, c.BuildMethods, 1)
	assert.Equal(t, "build", c.FactoryMethod.Name)
	require.Len(t, c.Invalid, 1)
	assert.Equal(t, "odd", c.Invalid[0].Name)

	reqs := c.Requirements()
	require.Len(t, reqs, 3)
	assert.Equal(t, ComponentRequirement{Kind: ModuleRequirement, Type: "app.CoreModule"}, reqs[0])
	assert.Equal(t, ComponentRequirement{Kind: DependencyRequirement, Type: "app.Config"}, reqs[1])
	assert.Equal(t, BoundInstanceRequirement, reqs[2].Kind)
	assert.Equal(t, "String", reqs[2].Key.Type)
	assert.Equal(t, "bound instance String", reqs[2].String())

	setters := c.SettersFor(reqs[0])
	require.Len(t, setters, 1)
	assert.Equal(t, "app.AppComponent.Builder#core", setters[0].Element)
}

func TestComponentFactory_ForModule(t *testing.T) {
	_, components := newFactories(t, tree)

	r := components.ForModule("app.CoreModule")
	require.True(t, r.IsResolved())
	assert.True(t, r.Value.Synthetic)
	assert.Equal(t, "app.CoreModule", r.Value.Name)
	assert.True(t, r.Value.HasModule("app.AppModule"))
}

func TestComponentFactory_Deferral(t *testing.T) {
	_, components := newFactories(t, `
version: v1
pending: [app.LaterModule, app.LaterChild]
components:
  - name: app.AppComponent
    modules: [app.LaterModule]
    methods:
      - {name: child, returns: app.LaterChild}
`)

	r := components.ForComponent("app.AppComponent")
	assert.True(t, r.IsDeferred())
	assert.Equal(t, []string{"app.LaterModule", "app.LaterChild"}, r.Pending)

	absent := components.ForComponent("app.Nope")
	assert.Equal(t, models.Failed, absent.Status)
}
