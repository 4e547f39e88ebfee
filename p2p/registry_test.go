package p2p

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry("127.0.0.1:5001")

	if !r.Add("127.0.0.1:5002") {
		t.Error("Expected new address to be added")
	}
	if r.Add("127.0.0.1:5001") {
		t.Error("Expected duplicate seed address to be rejected")
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 nodes, got %d", r.Len())
	}
	if !r.Contains("127.0.0.1:5002") || r.Contains("127.0.0.1:5003") {
		t.Error("Contains() reported wrong membership")
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry("c:1", "a:1", "b:1")

	got := r.List()
	want := []string{"a:1", "b:1", "c:1"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryConcurrentAdd(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add(fmt.Sprintf("10.0.0.%d:5000", i%10))
		}(i)
	}
	wg.Wait()

	if r.Len() != 10 {
		t.Errorf("Expected 10 distinct nodes, got %d", r.Len())
	}
}
