package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLockSameKey(t *testing.T) {
	lm := NewLockManager()

	a := lm.GetLock("player-1")
	b := lm.GetLock("player-1")
	assert.Same(t, a, b, "same key must yield the same mutex")

	c := lm.GetLock("player-2")
	assert.NotSame(t, a, c, "distinct keys must not share a mutex")
}

func TestGetLockConcurrent(t *testing.T) {
	lm := NewLockManager()

	// All goroutines racing on the same key must end up with one mutex, and
	// the counter protected by it must come out exact.
	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := lm.GetLock("shared")
			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}
