package dataflow

import (
	"fmt"
	"math/rand"

	"github.com/oleiade/lane"
)

// Order picks which pending block the solver processes next
type Order int

const (
	// FIFO processes blocks in the order they were queued
	FIFO Order = iota
	// LIFO processes the most recently queued block first
	LIFO
	// Random pops a pseudo-random pending block, seeded by Options.Seed
	Random
)

func (o Order) String() string {
	switch o {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case Random:
		return "random"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// worklist is a set of pending block ids
type worklist struct {
	order   Order
	rng     *rand.Rand
	items   *lane.Deque
	pending []bool
}

func newWorklist(order Order, seed int64, n int) *worklist {
	w := &worklist{
		order:   order,
		items:   lane.NewDeque(),
		pending: make([]bool, n),
	}
	if order == Random {
		w.rng = rand.New(rand.NewSource(seed))
	}
	return w
}

func (w *worklist) push(id int) {
	if w.pending[id] {
		return
	}
	w.pending[id] = true
	w.items.Append(id)
}

func (w *worklist) pop() int {
	var id int
	switch w.order {
	case LIFO:
		id = w.items.Pop().(int)
	case Random:
		for k := w.rng.Intn(w.items.Size()); k > 0; k-- {
			w.items.Append(w.items.Shift())
		}
		id = w.items.Shift().(int)
	default:
		id = w.items.Shift().(int)
	}
	w.pending[id] = false
	return id
}

func (w *worklist) empty() bool {
	return w.items.Empty()
}
