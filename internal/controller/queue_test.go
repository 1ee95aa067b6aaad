package controller

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialQueue_FIFO(t *testing.T) {
	q := NewSerialQueue()
	defer q.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		n := i
		require.True(t, q.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 100)
	for i, n := range order {
		assert.Equal(t, i, n)
	}
}

func TestSerialQueue_Serial(t *testing.T) {
	q := NewSerialQueue()
	defer q.Close()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		q.Submit(func() {
			defer wg.Done()
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxActive, "at most one function runs at a time")
}

func TestSerialQueue_SubmitAfterClose(t *testing.T) {
	q := NewSerialQueue()
	require.NoError(t, q.Close())

	assert.False(t, q.Submit(func() {}))
}
