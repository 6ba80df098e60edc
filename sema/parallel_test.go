package sema

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParallelMap_PreservesOrder(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out, err := ParallelMap(context.Background(), in, 3, func(ctx context.Context, n int) (int, error) {
		time.Sleep(time.Duration(5-n) * time.Millisecond)
		return n * n, nil
	})
	if err != nil {
		t.Fatalf("ParallelMap: %v", err)
	}
	want := []int{1, 4, 9, 16, 25}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestParallelMap_RespectsMaxConcurrency(t *testing.T) {
	var inFlight int32
	var maxSeen int32
	in := make([]int, 10)

	_, err := ParallelMap(context.Background(), in, 3, func(ctx context.Context, n int) (int, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if cur <= old || atomic.CompareAndSwapInt32(&maxSeen, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return n, nil
	})
	if err != nil {
		t.Fatalf("ParallelMap: %v", err)
	}
	if maxSeen > 3 {
		t.Fatalf("expected at most 3 concurrent mappers, saw %d", maxSeen)
	}
}

func TestParallelMap_ShortCircuitsOnError(t *testing.T) {
	in := []int{1, 2, 3}
	boom := errors.New("boom")
	_, err := ParallelMap(context.Background(), in, 1, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
}

func TestParallelMap_Empty(t *testing.T) {
	out, err := ParallelMap[int, int](context.Background(), nil, 4, func(ctx context.Context, n int) (int, error) {
		t.Fatal("fn should not be called for empty input")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}
