package session

import (
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/graph"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/validation"
)

// Session owns every cache of one resolution batch: module and component
// descriptors, implicit bindings and validation reports. All factories share
// one binding factory, so resetting it switches the whole session to a new
// batch.
type Session struct {
	Bindings   *bindings.Factory
	Modules    *descriptors.ModuleFactory
	Components *descriptors.ComponentFactory
	Graphs     *graph.Factory
	Validator  *validation.Validator
}

// New creates a session reading declarations from src
func New(src source.Source, config validation.Config) *Session {
	b := bindings.NewFactory(src)
	modules := descriptors.NewModuleFactory(b)
	return &Session{
		Bindings:   b,
		Modules:    modules,
		Components: descriptors.NewComponentFactory(b, modules),
		Graphs:     graph.NewFactory(b),
		Validator:  validation.New(b, config),
	}
}

// Reset clears every cache and switches to the declarations of src.
// Declaration identity is only stable within one batch, so nothing memoized
// survives a reset.
func (s *Session) Reset(src source.Source) {
	s.Bindings.Reset(src)
	s.Modules.Reset()
	s.Components.Reset()
	s.Validator.Reset()
}

// Source returns the declaration source of the current batch
func (s *Session) Source() source.Source {
	return s.Bindings.Source()
}
