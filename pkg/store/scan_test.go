package store

import (
	"fmt"
	"testing"

	"lsmkv/pkg/types"
)

func scanKeys(t *testing.T, s *Store, opts ScanOptions) []string {
	t.Helper()
	var out []string
	err := s.Scan(opts, func(e types.Entry) bool {
		out = append(out, string(e.Key)+"="+string(e.Value))
		return true
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestScanMergesAllSources(t *testing.T) {
	s := openStore(t, testConfig(t, 4))

	// k0..k7 over two segments, then overwrite a few across sources
	for i := 0; i < 8; i++ {
		if err := s.Put([]byte(fmt.Sprintf("k%d", i)), []byte("old")); err != nil {
			t.Fatal(err)
		}
	}
	for _, k := range []string{"k1", "k5", "k8"} {
		if err := s.Put([]byte(k), []byte("new")); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{
			name: "all",
			want: []string{"k0=old", "k1=new", "k2=old", "k3=old", "k4=old", "k5=new", "k6=old", "k7=old", "k8=new"},
		},
		{
			name: "bounded",
			opts: ScanOptions{Start: []byte("k3"), End: []byte("k6")},
			want: []string{"k3=old", "k4=old", "k5=new"},
		},
		{
			name: "start between index anchors",
			opts: ScanOptions{Start: []byte("k5")},
			want: []string{"k5=new", "k6=old", "k7=old", "k8=new"},
		},
		{
			name: "limit",
			opts: ScanOptions{Start: []byte("k1"), Limit: 2},
			want: []string{"k1=new", "k2=old"},
		},
		{
			name: "empty range",
			opts: ScanOptions{Start: []byte("x"), End: []byte("y")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanKeys(t, s, tt.opts)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("scan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanStopsWhenCallbackDeclines(t *testing.T) {
	s := openStore(t, testConfig(t, 2))
	for i := 0; i < 5; i++ {
		if err := s.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v")); err != nil {
			t.Fatal(err)
		}
	}

	var seen int
	if err := s.Scan(ScanOptions{}, func(types.Entry) bool {
		seen++
		return seen < 3
	}); err != nil {
		t.Fatal(err)
	}
	if seen != 3 {
		t.Fatalf("callback ran %d times, want 3", seen)
	}
}
