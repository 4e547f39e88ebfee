package store

import (
	"testing"
)

func TestLevelChainStore(t *testing.T) {
	runChainStoreTests(t, func(t *testing.T) ChainStore {
		s, err := NewLevelChainStore()
		if err != nil {
			t.Fatalf("NewLevelChainStore() failed: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}
