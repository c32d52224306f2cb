package producer

import (
	"sync"
	"testing"
)

func TestRotatorRoundRobin(t *testing.T) {
	keys := []string{"key-a", "key-b", "key-c"}
	r := NewKeyRotator(keys)

	counts := make(map[string]int)
	for i := 0; i < 9; i++ {
		got := r.Next()
		if want := keys[i%3]; got != want {
			t.Errorf("call %d: got %s, want %s", i, got, want)
		}
		counts[got]++
	}

	for _, key := range keys {
		if counts[key] != 3 {
			t.Errorf("key %s used %d times, want 3", key, counts[key])
		}
	}
}

func TestRotatorSingleKey(t *testing.T) {
	r := NewKeyRotator([]string{"only"})
	for i := 0; i < 5; i++ {
		if got := r.Next(); got != "only" {
			t.Errorf("call %d: got %s", i, got)
		}
	}
}

func TestRotatorEmpty(t *testing.T) {
	r := NewKeyRotator(nil)
	if r.HasKeys() {
		t.Error("HasKeys should be false for empty rotator")
	}
	if got := r.Next(); got != "" {
		t.Errorf("Next on empty rotator = %q, want empty", got)
	}
	if got := r.Count(); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}

func TestRotatorConcurrentUseIsBalanced(t *testing.T) {
	keys := []string{"key-a", "key-b", "key-c"}
	r := NewKeyRotator(keys)

	const perKey = 100
	results := make(chan string, len(keys)*perKey)

	var wg sync.WaitGroup
	for i := 0; i < len(keys)*perKey; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Next()
		}()
	}
	wg.Wait()
	close(results)

	counts := make(map[string]int)
	for key := range results {
		counts[key]++
	}
	for _, key := range keys {
		if counts[key] != perKey {
			t.Errorf("key %s used %d times, want %d", key, counts[key], perKey)
		}
	}
}
