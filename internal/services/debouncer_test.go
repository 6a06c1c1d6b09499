package services_test

import (
	"sync/atomic"
	"testing"
	"time"

	"bloxstore/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := services.NewDebouncer(30 * time.Millisecond)
	var calls, last atomic.Int64

	for i := 1; i <= 5; i++ {
		n := int64(i)
		d.Trigger("k", func() {
			calls.Add(1)
			last.Store(n)
		})
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	d.Wait()
	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 5, last.Load(), "the most recent function runs")
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := services.NewDebouncer(20 * time.Millisecond)
	var a, b atomic.Int64

	d.Trigger("a", func() { a.Add(1) })
	d.Trigger("b", func() { b.Add(1) })

	assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	d := services.NewDebouncer(time.Hour)
	var calls atomic.Int64

	d.Trigger("a", func() { calls.Add(1) })
	assert.Equal(t, 1, d.Pending())
	d.Cancel()
	assert.Equal(t, 0, d.Pending())

	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(10) })
	d.Flush()
	assert.EqualValues(t, 11, calls.Load())
	assert.Equal(t, 0, d.Pending())
}
