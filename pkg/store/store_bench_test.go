package store

import (
	"fmt"
	"math/rand"
	"testing"
)

func newBenchStore(b *testing.B) *Store {
	cfg := testConfig(b, 1024)
	return openStore(b, cfg)
}

func BenchmarkStoreWrite(b *testing.B) {
	store := newBenchStore(b)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := store.Put([]byte(fmt.Sprintf("key-%d", i)), []byte("value-"+fmt.Sprint(i))); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func BenchmarkStoreRead(b *testing.B) {
	store := newBenchStore(b)

	const preloaded = 10_000
	for i := 0; i < preloaded; i++ {
		if err := store.Put([]byte(fmt.Sprintf("key-%d", i)), []byte("value-"+fmt.Sprint(i))); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	rng := rand.New(rand.NewSource(42))

	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", rng.Intn(preloaded))
		if _, found, err := store.Get([]byte(key)); err != nil || !found {
			b.Fatalf("Get failed: %v (found=%v)", err, found)
		}
	}
}
