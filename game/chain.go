package game

import "iter"

// NodeHandle addresses a node in a Chain's arena. Handles stay valid until
// the chain is released.
type NodeHandle int

const nilHandle NodeHandle = -1

// Segment is one body unit. Growth marks a segment that carries an eaten
// candy towards the tail.
type Segment struct {
	Position Point
	Growth   bool
}

type node struct {
	seg  Segment
	prev NodeHandle // towards the head
	next NodeHandle // towards the tail
}

// Chain is the snake body: a doubly-linked list of segments stored in a
// single arena slice. Nodes are only ever appended at the tail during a
// round, so the arena never has holes.
type Chain struct {
	nodes    []node
	head     NodeHandle
	tail     NodeHandle
	observer Observer
}

// NewChain creates a chain holding a single head segment at pos.
func NewChain(pos Point, observer Observer) *Chain {
	if observer == nil {
		observer = NopObserver{}
	}
	c := &Chain{
		nodes:    make([]node, 0, 8),
		head:     nilHandle,
		tail:     nilHandle,
		observer: observer,
	}
	c.AppendTail(&pos)
	return c
}

func (c *Chain) Len() int         { return len(c.nodes) }
func (c *Chain) Head() NodeHandle { return c.head }
func (c *Chain) Tail() NodeHandle { return c.tail }

func (c *Chain) Segment(h NodeHandle) Segment {
	return c.nodes[h].seg
}

// Prev returns the neighbour closer to the head, or false at the head.
func (c *Chain) Prev(h NodeHandle) (NodeHandle, bool) {
	p := c.nodes[h].prev
	return p, p != nilHandle
}

// Next returns the neighbour closer to the tail, or false at the tail.
func (c *Chain) Next(h NodeHandle) (NodeHandle, bool) {
	n := c.nodes[h].next
	return n, n != nilHandle
}

// AppendTail links a new segment behind the current tail. A nil pos makes
// the new segment share the tail's position; the next PropagateFollow moves
// it apart.
func (c *Chain) AppendTail(pos *Point) NodeHandle {
	h := NodeHandle(len(c.nodes))
	n := node{prev: c.tail, next: nilHandle}
	switch {
	case pos != nil:
		n.seg.Position = *pos
	case c.tail != nilHandle:
		n.seg.Position = c.nodes[c.tail].seg.Position
	}
	c.nodes = append(c.nodes, n)
	if c.tail != nilHandle {
		c.nodes[c.tail].next = h
	} else {
		c.head = h
	}
	c.tail = h
	c.observer.SegmentAdded(h, n.seg.Position)
	return h
}

// FromHead yields every segment from head to tail.
func (c *Chain) FromHead() iter.Seq2[NodeHandle, Segment] {
	return func(yield func(NodeHandle, Segment) bool) {
		for h := c.head; h != nilHandle; h = c.nodes[h].next {
			if !yield(h, c.nodes[h].seg) {
				return
			}
		}
	}
}

// FromTail yields every segment from tail to head.
func (c *Chain) FromTail() iter.Seq2[NodeHandle, Segment] {
	return func(yield func(NodeHandle, Segment) bool) {
		for h := c.tail; h != nilHandle; h = c.nodes[h].prev {
			if !yield(h, c.nodes[h].seg) {
				return
			}
		}
	}
}

// PropagateFollow moves every non-head segment onto its predecessor's
// position and shifts growth markers one segment towards the tail. It must
// run before the head moves, and it walks tail to head so each copy reads
// the predecessor's position from before this step.
//
// A marker sitting on the tail when the step starts is consumed: a new
// tail is appended at the tail's current position and grew is true.
func (c *Chain) PropagateFollow() (grew bool) {
	last := c.tail
	if c.nodes[last].seg.Growth {
		c.nodes[last].seg.Growth = false
		c.AppendTail(nil)
		grew = true
	}

	for h := last; c.nodes[h].prev != nilHandle; h = c.nodes[h].prev {
		p := c.nodes[h].prev
		if c.nodes[p].seg.Growth {
			c.nodes[h].seg.Growth = true
			c.nodes[p].seg.Growth = false
		}
		c.nodes[h].seg.Position = c.nodes[p].seg.Position
	}
	return grew
}

func (c *Chain) SetHeadPosition(p Point) {
	c.nodes[c.head].seg.Position = p
}

// MarkHead puts a growth marker on the head segment.
func (c *Chain) MarkHead() {
	c.nodes[c.head].seg.Growth = true
}

// Release sends a removal notification for every segment, head first, and
// empties the chain. The chain must not be used afterwards.
func (c *Chain) Release() {
	for h := range c.FromHead() {
		c.observer.SegmentRemoved(h)
	}
	c.nodes = nil
	c.head, c.tail = nilHandle, nilHandle
}
