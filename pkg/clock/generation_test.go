package clock

import (
	"math"
	"sync"
	"testing"
)

func TestGenerationAdvance(t *testing.T) {
	g := NewGeneration(0)
	for want := uint64(0); want < 5; want++ {
		if got := g.Advance(); got != want {
			t.Fatalf("Advance() = %d, want %d", got, want)
		}
	}
	if got := g.Peek(); got != 5 {
		t.Fatalf("Peek() = %d, want 5", got)
	}
}

func TestGenerationObserve(t *testing.T) {
	g := NewGeneration(0)
	g.Observe(7)
	if got := g.Peek(); got != 8 {
		t.Fatalf("after Observe(7) Peek() = %d, want 8", got)
	}
	g.Observe(3)
	if got := g.Peek(); got != 8 {
		t.Fatalf("Observe of an older id moved the counter to %d", got)
	}
}

func TestGenerationObserveSaturates(t *testing.T) {
	g := NewGeneration(3)
	g.Observe(math.MaxUint64)
	if got := g.Peek(); got != math.MaxUint64 {
		t.Fatalf("Peek() = %d, want MaxUint64", got)
	}
	g.Observe(5)
	if got := g.Peek(); got != math.MaxUint64 {
		t.Fatalf("counter wrapped to %d", got)
	}
}

func TestGenerationConcurrentAdvance(t *testing.T) {
	g := NewGeneration(10)
	const workers, perWorker = 8, 100

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := g.Advance()
				mu.Lock()
				if seen[id] {
					t.Errorf("id %d handed out twice", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("got %d ids, want %d", len(seen), workers*perWorker)
	}
	if got := g.Peek(); got != 10+workers*perWorker {
		t.Fatalf("Peek() = %d, want %d", got, 10+workers*perWorker)
	}
}
