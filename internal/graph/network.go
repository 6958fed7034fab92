package graph

import (
	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/models"
)

// NodeKind is the closed set of network node kinds
type NodeKind int

const (
	// BindingNode is a key satisfied by one or more bindings. More than one
	// binding means the key is bound twice.
	BindingNode NodeKind = iota
	// MissingNode is a key with no binding
	MissingNode
	// ComponentNode is a component of the tree
	ComponentNode
)

// String returns the string representation of the node kind
func (k NodeKind) String() string {
	switch k {
	case BindingNode:
		return "binding"
	case MissingNode:
		return "missing"
	default:
		return "component"
	}
}

// Node is one vertex of the binding network
type Node struct {
	ID        string
	Kind      NodeKind
	Path      ComponentPath
	Key       models.Key
	Bindings  []*models.Binding
	Component *descriptors.ComponentDescriptor
	// Deferred marks a missing node whose type is still pending
	Deferred bool
}

// Binding returns the node's first binding, or nil
func (n *Node) Binding() *models.Binding {
	if len(n.Bindings) == 0 {
		return nil
	}
	return n.Bindings[0]
}

// String renders the node for diagnostics
func (n *Node) String() string {
	switch n.Kind {
	case ComponentNode:
		return n.Path.String()
	case MissingNode:
		return n.Key.String() + " (missing)"
	default:
		return n.Key.String()
	}
}

// EdgeKind distinguishes dependency edges from structural edges
type EdgeKind int

const (
	// DependencyEdge is a binding's dependency request, or a component entry
	// point
	DependencyEdge EdgeKind = iota
	// ChildFactoryEdge links a component to a child component
	ChildFactoryEdge
)

// Edge is a directed edge of the network
type Edge struct {
	From    string
	To      string
	Kind    EdgeKind
	Request models.DependencyRequest
	// Binding is the binding whose dependency the edge represents, nil for
	// entry points
	Binding *models.Binding
	// EntryPoint is set for edges leaving a component node
	EntryPoint bool
}

// Network is the directed graph of a BindingGraph. Nodes and edges are kept
// in insertion order.
type Network struct {
	nodes map[string]*Node
	order []string
	edges []*Edge
	out   map[string][]*Edge
	in    map[string][]*Edge
}

// NewNetwork creates an empty network
func NewNetwork() *Network {
	return &Network{
		nodes: make(map[string]*Node),
		out:   make(map[string][]*Edge),
		in:    make(map[string][]*Edge),
	}
}

// AddNode inserts a node; it returns false if a node with the same ID exists
func (n *Network) AddNode(node *Node) bool {
	if _, exists := n.nodes[node.ID]; exists {
		return false
	}
	n.nodes[node.ID] = node
	n.order = append(n.order, node.ID)
	return true
}

// AddEdge inserts an edge
func (n *Network) AddEdge(e *Edge) {
	n.edges = append(n.edges, e)
	n.out[e.From] = append(n.out[e.From], e)
	n.in[e.To] = append(n.in[e.To], e)
}

// Node returns the node with the given ID
func (n *Network) Node(id string) (*Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// HasNode reports whether the node exists
func (n *Network) HasNode(id string) bool {
	_, ok := n.nodes[id]
	return ok
}

// Nodes returns every node in insertion order
func (n *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.nodes[id])
	}
	return out
}

// NodesOfKind returns the nodes of one kind in insertion order
func (n *Network) NodesOfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, id := range n.order {
		if node := n.nodes[id]; node.Kind == kind {
			out = append(out, node)
		}
	}
	return out
}

// Edges returns every edge in insertion order
func (n *Network) Edges() []*Edge {
	return append([]*Edge(nil), n.edges...)
}

// OutEdges returns the edges leaving a node
func (n *Network) OutEdges(id string) []*Edge {
	return n.out[id]
}

// InEdges returns the edges entering a node
func (n *Network) InEdges(id string) []*Edge {
	return n.in[id]
}

// Size returns the number of nodes
func (n *Network) Size() int {
	return len(n.nodes)
}
