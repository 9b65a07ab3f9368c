package scene

// MemoryGraph is an in-memory Graph. It preserves insertion order so hosts
// that diff the node list render deterministically.
type MemoryGraph struct {
	order []string
	nodes map[string]Node
}

// NewMemoryGraph returns an empty graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{nodes: make(map[string]Node)}
}

// Upsert inserts the node or replaces the node with the same ID in place.
func (g *MemoryGraph) Upsert(node Node) {
	if node.ID == "" {
		return
	}
	if _, exists := g.nodes[node.ID]; !exists {
		g.order = append(g.order, node.ID)
	}
	g.nodes[node.ID] = node
}

// Remove deletes the node if present.
func (g *MemoryGraph) Remove(id string) {
	if _, exists := g.nodes[id]; !exists {
		return
	}
	delete(g.nodes, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Get returns the node with the given ID.
func (g *MemoryGraph) Get(id string) (Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// ByOwner returns all nodes owned by the given annotation, in insertion order.
func (g *MemoryGraph) ByOwner(ownerID string) []Node {
	if ownerID == "" {
		return nil
	}
	var owned []Node
	for _, id := range g.order {
		node := g.nodes[id]
		if node.OwnerID == ownerID {
			owned = append(owned, node)
		}
	}
	return owned
}

// SetVisible toggles a node without replacing its shape.
func (g *MemoryGraph) SetVisible(id string, visible bool) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}
	node.Visible = visible
	g.nodes[id] = node
}

// SetOpacity adjusts a node's opacity without replacing its shape.
func (g *MemoryGraph) SetOpacity(id string, opacity float64) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}
	node.Opacity = opacity
	g.nodes[id] = node
}

// RemoveOwned deletes every node owned by the given annotation.
func (g *MemoryGraph) RemoveOwned(ownerID string) {
	if ownerID == "" {
		return
	}
	kept := g.order[:0]
	for _, id := range g.order {
		if g.nodes[id].OwnerID == ownerID {
			delete(g.nodes, id)
			continue
		}
		kept = append(kept, id)
	}
	g.order = kept
}

// Clear empties the graph.
func (g *MemoryGraph) Clear() {
	g.order = nil
	g.nodes = make(map[string]Node)
}

// Nodes returns every node in insertion order.
func (g *MemoryGraph) Nodes() []Node {
	all := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		all = append(all, g.nodes[id])
	}
	return all
}
