package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinatorBeginEndCycle(t *testing.T) {
	var c Coordinator
	assert.False(t, c.Active())

	assert.True(t, c.Begin())
	assert.True(t, c.Active())

	assert.False(t, c.Begin(), "a second begin while active must fail")

	assert.True(t, c.End())
	assert.False(t, c.Active())

	assert.False(t, c.End(), "ending an already-idle coordinator must fail")
}

func TestCoordinatorIsSafeForConcurrentUse(t *testing.T) {
	var c Coordinator
	done := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func() {
			done <- c.Begin()
		}()
	}
	successes := 0
	for i := 0; i < 50; i++ {
		if <-done {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "only one goroutine should win Begin()")
}
