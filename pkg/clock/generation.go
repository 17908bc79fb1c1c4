package clock

import (
	"math"
	"sync/atomic"
)

// Generation hands out segment generation ids in increasing order.
// Peek returns the id the next Advance will hand out.
type Generation struct {
	next atomic.Uint64
}

func NewGeneration(next uint64) *Generation {
	var g Generation
	g.next.Store(next)
	return &g
}

func (g *Generation) Peek() uint64 {
	return g.next.Load()
}

// Advance returns the current id and moves past it.
func (g *Generation) Advance() uint64 {
	return g.next.Add(1) - 1
}

// Observe moves the counter past id if it is not already. The counter
// saturates at math.MaxUint64 instead of wrapping to zero.
func (g *Generation) Observe(id uint64) {
	next := id + 1
	if id == math.MaxUint64 {
		next = id
	}
	for {
		cur := g.next.Load()
		if cur >= next {
			return
		}
		if g.next.CompareAndSwap(cur, next) {
			return
		}
	}
}
