package graph

import (
	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/models"
)

// BindingGraph is the resolved binding graph of a component tree
type BindingGraph struct {
	root             *descriptors.ComponentDescriptor
	network          *Network
	fullBindingGraph bool
	components       map[string]*descriptors.ComponentDescriptor
	paths            []ComponentPath
	resolutions      map[string]map[models.Key]string
	synthesized      []*models.Binding
}

// RootComponentNode returns the node of the root component
func (g *BindingGraph) RootComponentNode() *Node {
	node, _ := g.network.Node(componentNodeID(ComponentPath{g.root.Name}))
	return node
}

// RootComponent returns the descriptor of the root component
func (g *BindingGraph) RootComponent() *descriptors.ComponentDescriptor {
	return g.root
}

// Network returns the directed graph of bindings and dependency requests
func (g *BindingGraph) Network() *Network {
	return g.network
}

// IsFullBindingGraph reports whether every declared binding was included,
// not only those reachable from entry points
func (g *BindingGraph) IsFullBindingGraph() bool {
	return g.fullBindingGraph
}

// Component returns the descriptor of the component at path
func (g *BindingGraph) Component(path ComponentPath) (*descriptors.ComponentDescriptor, bool) {
	d, ok := g.components[path.String()]
	return d, ok
}

// ComponentPaths returns every component path of the tree, parents first
func (g *BindingGraph) ComponentPaths() []ComponentPath {
	return append([]ComponentPath(nil), g.paths...)
}

// Lookup returns the node a key resolves to as seen from the component at
// path, if the key was requested there
func (g *BindingGraph) Lookup(path ComponentPath, key models.Key) (*Node, bool) {
	ids, ok := g.resolutions[path.String()]
	if !ok {
		return nil, false
	}
	id, ok := ids[key]
	if !ok {
		return nil, false
	}
	return g.network.Node(id)
}

// SynthesizedBindings returns the implicit injection bindings present in the
// graph, in first-use order
func (g *BindingGraph) SynthesizedBindings() []*models.Binding {
	return append([]*models.Binding(nil), g.synthesized...)
}

// BindingNodes returns the nodes holding bindings, in insertion order
func (g *BindingGraph) BindingNodes() []*Node {
	return g.network.NodesOfKind(BindingNode)
}

// MissingNodes returns the unsatisfied keys, in insertion order
func (g *BindingGraph) MissingNodes() []*Node {
	return g.network.NodesOfKind(MissingNode)
}

// NodeID returns the identity of the node for key owned at path
func NodeID(path ComponentPath, key models.Key) string {
	return path.String() + "|" + key.Type + "|" + key.Qualifier + "|" + string(key.Contribution)
}

func componentNodeID(path ComponentPath) string {
	return "component|" + path.String()
}
