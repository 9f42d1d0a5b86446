package generator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallBudget_TryConsumeUpToCeiling(t *testing.T) {
	b := newCallBudget(3)
	assert.True(t, b.TryConsume())
	assert.True(t, b.TryConsume())
	assert.True(t, b.TryConsume())
	assert.False(t, b.TryConsume())
	assert.Equal(t, 3, b.Consumed())
}

func TestCallBudget_ClampsOutOfRangeCeiling(t *testing.T) {
	b := newCallBudget(0)
	assert.Equal(t, int64(60), b.ceiling)

	b2 := newCallBudget(1000)
	assert.Equal(t, int64(60), b2.ceiling)
}

func TestCallBudget_ConcurrentConsumersNeverExceedCeiling(t *testing.T) {
	b := newCallBudget(10)
	var wg sync.WaitGroup
	successes := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			successes <- b.TryConsume()
		}()
	}
	wg.Wait()
	close(successes)

	var count int
	for ok := range successes {
		if ok {
			count++
		}
	}
	assert.Equal(t, 10, count)
	assert.Equal(t, 10, b.Consumed())
}
