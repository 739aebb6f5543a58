package taskman

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllEmptyBatch(t *testing.T) {
	t.Parallel()

	e := New(4, nil)
	results := e.RunAll(context.Background(), nil, nil)
	assert.Empty(t, results)
}

func TestRunAllCollectsErrors(t *testing.T) {
	t.Parallel()

	failure := errors.New("boom")
	tasks := []Task{
		{Name: "ok-1", Run: func(context.Context) error { return nil }},
		{Name: "bad", Run: func(context.Context) error { return failure }},
		{Name: "ok-2", Run: func(context.Context) error { return nil }},
	}

	e := New(2, nil)
	results := e.RunAll(context.Background(), tasks, nil)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results["bad"], failure)
}

func TestRunAllFailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()

	var ran atomic.Int32
	tasks := []Task{
		{Name: "bad", Run: func(context.Context) error { return errors.New("boom") }},
	}
	for i := range 9 {
		tasks = append(tasks, Task{
			Name: fmt.Sprintf("ok-%d", i),
			Run: func(context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}

	e := New(3, nil)
	results := e.RunAll(context.Background(), tasks, nil)

	assert.Len(t, results, 1)
	assert.Equal(t, int32(9), ran.Load())
}

func TestRunAllReportsProgress(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{Name: "a", Run: func(context.Context) error { return nil }},
		{Name: "b", Run: func(context.Context) error { return nil }},
		{Name: "c", Run: func(context.Context) error { return errors.New("boom") }},
	}

	var (
		mu    sync.Mutex
		seen  []int
		names []string
	)
	e := New(1, nil)
	e.RunAll(context.Background(), tasks, func(done, total int, name string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		seen = append(seen, done)
		names = append(names, name)
	})

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Len(t, names, 3)
}

func TestRunAllBoundsConcurrency(t *testing.T) {
	t.Parallel()

	const limit = 2
	var current, peak atomic.Int32

	var tasks []Task
	for i := range 12 {
		tasks = append(tasks, Task{
			Name: fmt.Sprintf("t-%d", i),
			Run: func(context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				current.Add(-1)
				return nil
			},
		})
	}

	e := New(limit, nil)
	e.RunAll(context.Background(), tasks, nil)

	assert.LessOrEqual(t, peak.Load(), int32(limit))
}
