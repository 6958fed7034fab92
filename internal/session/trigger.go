package session

import (
	"sync"

	"github.com/toyz/bindgraph/internal/graph"
	"github.com/toyz/bindgraph/internal/models"
)

// GenerationTrigger receives the output of a clean resolution: each binding
// synthesized on demand, once, and the validated graph of each root
// component
type GenerationTrigger interface {
	ImplicitBinding(b *models.Binding)
	GraphReady(g *graph.BindingGraph)
}

// RecordingTrigger keeps everything it is handed
type RecordingTrigger struct {
	mu       sync.Mutex
	Bindings []*models.Binding
	Graphs   []*graph.BindingGraph
}

// ImplicitBinding implements GenerationTrigger
func (t *RecordingTrigger) ImplicitBinding(b *models.Binding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Bindings = append(t.Bindings, b)
}

// GraphReady implements GenerationTrigger
func (t *RecordingTrigger) GraphReady(g *graph.BindingGraph) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Graphs = append(t.Graphs, g)
}

// NopTrigger discards everything
type NopTrigger struct{}

// ImplicitBinding implements GenerationTrigger
func (NopTrigger) ImplicitBinding(*models.Binding) {}

// GraphReady implements GenerationTrigger
func (NopTrigger) GraphReady(*graph.BindingGraph) {}
