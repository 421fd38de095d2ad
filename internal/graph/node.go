package graph

import "fmt"

// Node is anything that produces a signal and can be wired into the graph.
type Node interface {
	base() *node
}

type processor interface {
	process(f int64, t float64) float64
}

// Edge is one outgoing connection: either into another node's input or onto
// a Param.
type Edge struct {
	Node  Node
	Param *Param
}

func (e Edge) String() string {
	if e.Param != nil {
		return "param:" + e.Param.name
	}
	return fmt.Sprintf("node:%T", e.Node)
}

type node struct {
	ctx     *Context
	self    Node
	proc    processor
	inputs  []*node
	outputs []Edge
	params  []*Param
	frame   int64
	value   float64
	busy    bool
}

func (n *node) base() *node { return n }

func (n *node) init(ctx *Context, self interface {
	Node
	processor
}) {
	n.ctx = ctx
	n.self = self
	n.proc = self
	n.frame = -1
}

func (n *node) param(name string, value float64) *Param {
	p := newParam(n.ctx, name, value)
	n.params = append(n.params, p)
	return p
}

// output returns the node's sample for frame f, computing it at most once.
// Re-entry through a cycle without a Delay yields silence for that edge.
func (n *node) output(f int64) float64 {
	if n.frame == f {
		return n.value
	}
	if n.busy {
		return 0
	}
	n.busy = true
	n.value = n.proc.process(f, float64(f)/n.ctx.sampleRate)
	n.frame = f
	n.busy = false
	return n.value
}

func (n *node) sumInputs(f int64) float64 {
	var s float64
	for _, in := range n.inputs {
		s += in.output(f)
	}
	return s
}

// Connect routes this node's output into dst's input. Connecting the same
// pair twice is a no-op.
func (n *node) Connect(dst Node) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	d := dst.base()
	for _, e := range n.outputs {
		if e.Node != nil && e.Node.base() == d {
			return
		}
	}
	d.inputs = append(d.inputs, n)
	n.outputs = append(n.outputs, Edge{Node: dst})
}

// ConnectParam routes this node's output onto p as modulation.
func (n *node) ConnectParam(p *Param) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	for _, e := range n.outputs {
		if e.Param == p {
			return
		}
	}
	p.inputs = append(p.inputs, n)
	n.outputs = append(n.outputs, Edge{Param: p})
}

// Disconnect removes every outgoing edge.
func (n *node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.disconnectLocked()
}

// DisconnectFrom removes the edge into dst, if any.
func (n *node) DisconnectFrom(dst Node) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	d := dst.base()
	for i, e := range n.outputs {
		if e.Node != nil && e.Node.base() == d {
			d.removeInputLocked(n)
			n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
			return
		}
	}
}

// DisconnectParam removes the edge onto p, if any.
func (n *node) DisconnectParam(p *Param) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	for i, e := range n.outputs {
		if e.Param == p {
			p.removeInputLocked(n)
			n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
			return
		}
	}
}

// Detach removes every edge touching the node: outgoing edges, incoming
// edges, and modulation edges onto its params.
func (n *node) Detach() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.detachLocked()
}

// Outputs returns a copy of the node's outgoing edges.
func (n *node) Outputs() []Edge {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	out := make([]Edge, len(n.outputs))
	copy(out, n.outputs)
	return out
}

// InputCount reports how many nodes feed this node's input.
func (n *node) InputCount() int {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.inputs)
}

func (n *node) disconnectLocked() {
	for _, e := range n.outputs {
		if e.Param != nil {
			e.Param.removeInputLocked(n)
		} else {
			e.Node.base().removeInputLocked(n)
		}
	}
	n.outputs = nil
}

func (n *node) detachLocked() {
	n.disconnectLocked()
	for _, in := range n.inputs {
		in.removeOutputLocked(Edge{Node: n.self})
	}
	n.inputs = nil
	for _, p := range n.params {
		for _, in := range p.inputs {
			in.removeOutputLocked(Edge{Param: p})
		}
		p.inputs = nil
	}
}

func (n *node) removeInputLocked(src *node) {
	for i, in := range n.inputs {
		if in == src {
			n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
			return
		}
	}
}

func (n *node) removeOutputLocked(e Edge) {
	for i, o := range n.outputs {
		if (e.Param != nil && o.Param == e.Param) || (e.Node != nil && o.Node != nil && o.Node.base() == e.Node.base()) {
			n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
			return
		}
	}
}
