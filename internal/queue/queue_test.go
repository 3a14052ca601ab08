package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Put(i))
	}
	require.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		got, err := q.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, i, got)
	}
	require.Equal(t, 0, q.Len())
	require.Equal(t, 5, q.Unfinished())
}

func TestQueueDoneTracksUnfinished(t *testing.T) {
	q := New[string]()
	require.NoError(t, q.Put("a"))
	require.NoError(t, q.Put("b"))

	_, err := q.Get(context.Background())
	require.NoError(t, err)
	q.Done()
	require.Equal(t, 1, q.Unfinished())

	q.Done()
	q.Done()
	require.Equal(t, 0, q.Unfinished())
}

func TestQueueGetBlocksUntilPut(t *testing.T) {
	q := New[int]()
	result := make(chan int, 1)
	go func() {
		got, err := q.Get(context.Background())
		if err == nil {
			result <- got
		}
	}()

	select {
	case <-result:
		t.Fatal("Get returned before Put")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, q.Put(42))
	select {
	case got := <-result:
		require.Equal(t, 42, got)
	case <-time.After(time.Second):
		t.Fatal("Get did not wake after Put")
	}
}

func TestQueueGetHonorsContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Get(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueCloseDrainsThenReportsClosed(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Put(1))
	q.Close()
	q.Close()

	require.ErrorIs(t, q.Put(2), ErrClosed)

	got, err := q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, got)

	_, err = q.Get(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestQueueCloseWakesBlockedGet(t *testing.T) {
	q := New[int]()
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Get(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake Get")
	}
}

func TestQueueConcurrentProducerConsumer(t *testing.T) {
	const n = 1000
	q := New[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = q.Put(i)
		}
	}()

	for i := 0; i < n; i++ {
		got, err := q.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, i, got)
		q.Done()
	}
	wg.Wait()
	require.Equal(t, 0, q.Unfinished())
}
