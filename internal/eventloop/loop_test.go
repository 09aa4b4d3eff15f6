package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(logging.EnsureLogger(context.Background()))
	loop := New()
	go func() {
		_ = loop.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return loop, cancel
}

func TestLoop_RunsInPostOrder(t *testing.T) {
	loop, _ := startLoop(t)

	var order []int
	for i := 0; i < 50; i++ {
		i := i
		loop.Post(func() { order = append(order, i) })
	}

	var got []int
	require.NoError(t, loop.Do(context.Background(), func() {
		got = append(got, order...)
	}))

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoop_SerializesConcurrentPosts(t *testing.T) {
	loop, _ := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				loop.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var got int
	require.NoError(t, loop.Do(context.Background(), func() { got = counter }))
	assert.Equal(t, 800, got)
}

func TestLoop_NestedPost(t *testing.T) {
	loop, _ := startLoop(t)

	var calls []string
	loop.Post(func() {
		calls = append(calls, "outer")
		loop.Post(func() { calls = append(calls, "inner") })
	})

	require.Eventually(t, func() bool {
		var n int
		_ = loop.Do(context.Background(), func() { n = len(calls) })
		return n == 2
	}, time.Second, 5*time.Millisecond)
}

func TestLoop_SurvivesPanic(t *testing.T) {
	loop, _ := startLoop(t)

	loop.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, loop.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_SurvivesPanicWithoutLogger(t *testing.T) {
	loop := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	// Both the start message and the panic report are logged on ctx
	loop.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, loop.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_Stop(t *testing.T) {
	loop := New()
	result := make(chan error, 1)
	go func() { result <- loop.Run(logging.EnsureLogger(context.Background())) }()

	loop.Stop()
	loop.Stop()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	err := loop.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestLoop_ContextCancel(t *testing.T) {
	loop := New()
	ctx, cancel := context.WithCancel(logging.EnsureLogger(context.Background()))
	result := make(chan error, 1)
	go func() { result <- loop.Run(ctx) }()

	cancel()
	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestInline(t *testing.T) {
	ran := false
	Inline{}.Post(func() { ran = true })
	assert.True(t, ran)
}
