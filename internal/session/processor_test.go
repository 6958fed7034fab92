package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/validation"
)

const fooBarManifest = `
version: v1
classes:
  - name: app.Foo
  - name: app.Bar
    constructors:
      - annotations: ["@Inject"]
        params:
          - {name: foo, type: app.Foo}
modules:
  - name: app.FooModule
    methods:
      - name: provideFoo
        returns: app.Foo
        annotations: ["@Provides"]
        modifiers: [static]
components:
  - name: app.AppComponent
    modules: [app.FooModule]
    methods:
      - {name: bar, returns: app.Bar}
  - name: app.OtherComponent
    modules: [app.FooModule]
    methods:
      - {name: bar, returns: app.Bar}
`

const pendingManifest = `
version: v1
pending: [app.Generated]
classes:
  - name: app.Bar
    constructors:
      - annotations: ["@Inject"]
        params: [{name: g, type: app.Generated}]
components:
  - name: app.AppComponent
    methods:
      - {name: bar, returns: app.Bar}
`

const generatedManifest = `
version: v1
classes:
  - name: app.Generated
    constructors:
      - annotations: ["@Inject"]
`

func memorySource(t *testing.T, manifests ...string) *source.MemorySource {
	t.Helper()
	src := source.NewMemorySource()
	for _, text := range manifests {
		addManifest(t, src, text)
	}
	return src
}

func addManifest(t *testing.T, src *source.MemorySource, text string) {
	t.Helper()
	m, err := source.Parse([]byte(text))
	require.NoError(t, err)
	require.NoError(t, src.Add(m))
}

func TestRound_CleanComponents(t *testing.T) {
	sink := &validation.CollectingSink{}
	trigger := &RecordingTrigger{}
	p := NewProcessor(DefaultConfig(), sink, trigger, nil)

	result := p.Round(memorySource(t, fooBarManifest))

	assert.Empty(t, sink.Errors())
	assert.Equal(t, []string{"app.AppComponent", "app.OtherComponent"}, result.Clean)
	assert.Empty(t, result.Deferred)
	require.Len(t, trigger.Graphs, 2)
	require.Len(t, trigger.Bindings, 1, "implicit bindings are handed out once per batch")
	assert.Equal(t, "app.Bar", trigger.Bindings[0].Key.Type)
}

func TestRound_ComponentsProcessedOnce(t *testing.T) {
	sink := &validation.CollectingSink{}
	trigger := &RecordingTrigger{}
	p := NewProcessor(DefaultConfig(), sink, trigger, nil)
	src := memorySource(t, fooBarManifest)

	p.Round(src)
	second := p.Round(src)

	assert.Empty(t, second.Processed)
	assert.Len(t, trigger.Graphs, 2)
	assert.Equal(t, 2, p.Rounds())
}

func TestRound_DefersUntilDeclared(t *testing.T) {
	sink := &validation.CollectingSink{}
	trigger := &RecordingTrigger{}
	p := NewProcessor(DefaultConfig(), sink, trigger, nil)
	src := memorySource(t, pendingManifest)

	first := p.Round(src)
	assert.Equal(t, []string{"app.AppComponent"}, first.Deferred)
	assert.Equal(t, []string{"component app.AppComponent"}, p.Deferred())
	assert.Empty(t, trigger.Graphs)

	addManifest(t, src, generatedManifest)
	second := p.Round(src)

	assert.Empty(t, sink.Errors())
	assert.Equal(t, []string{"app.AppComponent"}, second.Clean)
	assert.Empty(t, p.Deferred())
	require.Len(t, trigger.Graphs, 1)
	assert.Len(t, trigger.Bindings, 2)
	assert.Zero(t, p.Finish())
}

func TestRound_GivesUpAfterMaxRounds(t *testing.T) {
	sink := &validation.CollectingSink{}
	p := NewProcessor(Config{MaxRounds: 2}, sink, nil, nil)
	src := memorySource(t, pendingManifest)

	first := p.Round(src)
	assert.Equal(t, []string{"app.AppComponent"}, first.Deferred)
	assert.Empty(t, sink.Errors())

	second := p.Round(src)
	assert.Empty(t, second.Deferred)
	assert.Equal(t, []string{"app.AppComponent"}, second.Failed)

	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "component app.AppComponent", errs[0].Element)
	assert.Contains(t, errs[0].Message, "after 2 rounds")
	assert.Contains(t, errs[0].Message, "app.Generated")
}

func TestFinish_ReportsRemainingDeferrals(t *testing.T) {
	sink := &validation.CollectingSink{}
	p := NewProcessor(DefaultConfig(), sink, nil, nil)

	p.Round(memorySource(t, pendingManifest))
	require.Empty(t, sink.Errors())

	assert.Equal(t, 1, p.Finish())
	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "still waiting for app.Generated")
	assert.Empty(t, p.Deferred())
}

func TestRound_MissingBindingFailsComponent(t *testing.T) {
	sink := &validation.CollectingSink{}
	trigger := &RecordingTrigger{}
	p := NewProcessor(DefaultConfig(), sink, trigger, nil)

	result := p.Round(memorySource(t, `
version: v1
components:
  - name: app.AppComponent
    methods:
      - {name: missing, returns: app.Missing}
`))

	assert.Equal(t, []string{"app.AppComponent"}, result.Failed)
	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "app.Missing cannot be provided")
	assert.Empty(t, trigger.Graphs)
	assert.Empty(t, trigger.Bindings)
}

func TestRound_InvalidModuleReportedOnce(t *testing.T) {
	sink := &validation.CollectingSink{}
	p := NewProcessor(DefaultConfig(), sink, nil, nil)

	p.Round(memorySource(t, `
version: v1
modules:
  - name: app.BadModule
    methods:
      - {name: nothing, returns: void, annotations: ["@Provides"], modifiers: [static]}
components:
  - name: app.AppComponent
    modules: [app.BadModule]
`))

	errs := sink.Errors()
	require.Len(t, errs, 1, "%+v", errs)
	assert.Equal(t, "app.BadModule#nothing", errs[0].Element)
}

func TestGuard_RecoversPanics(t *testing.T) {
	sink := &validation.CollectingSink{}
	p := NewProcessor(DefaultConfig(), sink, nil, nil)
	var result RoundResult

	p.guard("component app.Broken", func() {
		panic("boom")
	}, &result)

	assert.Equal(t, []string{"component app.Broken"}, result.Failed)
	errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "component app.Broken", errs[0].Element)
	assert.Contains(t, errs[0].Message, "boom")
}

func TestSession_ResetSwitchesSource(t *testing.T) {
	first := memorySource(t, fooBarManifest)
	s := New(first, validation.Config{})
	assert.Same(t, first, s.Source())

	second := memorySource(t, pendingManifest)
	s.Reset(second)
	assert.Same(t, second, s.Source())

	desc := s.Components.ForComponent("app.AppComponent")
	require.True(t, desc.IsResolved())
	assert.Empty(t, desc.Value.Modules)
}
