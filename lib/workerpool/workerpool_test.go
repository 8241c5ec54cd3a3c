package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	boom := errors.New("boom")
	canceledCtx := func() context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	tests := []struct {
		name         string
		ctx          context.Context
		workerCount  int
		items        []int
		failOn       int
		wantErr      error
		expectCancel bool
		wantSum      int32
	}{
		{
			name:        "success processes all items",
			ctx:         context.Background(),
			workerCount: 2,
			items:       []int{1, 2, 3, 4},
			wantSum:     10,
		},
		{
			name:        "zero workers uses the cpu count",
			ctx:         context.Background(),
			workerCount: 0,
			items:       []int{5, 5},
			wantSum:     10,
		},
		{
			name:         "error cancels workers and calls onCancel",
			ctx:          context.Background(),
			workerCount:  3,
			items:        []int{1, 2, 3},
			failOn:       2,
			wantErr:      boom,
			expectCancel: true,
			wantSum:      -1,
		},
		{
			name:        "context canceled returns canceled error",
			ctx:         canceledCtx(),
			workerCount: 2,
			items:       []int{1, 2},
			wantErr:     context.Canceled,
			wantSum:     -1,
		},
		{
			name:        "no items",
			ctx:         context.Background(),
			workerCount: 4,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var processed, canceled int32

			process := func(ctx context.Context, v int) error {
				if tt.failOn != 0 && v == tt.failOn {
					return boom
				}
				atomic.AddInt32(&processed, int32(v))
				return nil
			}
			onCancel := func() {
				atomic.AddInt32(&canceled, 1)
			}

			err := Process(tt.ctx, tt.workerCount, tt.items, process, onCancel)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			if tt.expectCancel {
				require.EqualValues(t, 1, atomic.LoadInt32(&canceled))
			} else {
				require.Zero(t, atomic.LoadInt32(&canceled))
			}
			if tt.wantSum >= 0 {
				require.Equal(t, tt.wantSum, atomic.LoadInt32(&processed))
			}
		})
	}
}
