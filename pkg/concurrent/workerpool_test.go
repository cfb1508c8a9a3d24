// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRun(t *testing.T) {
	pool := NewWorkerPool(4)

	t.Run("runs all functions", func(t *testing.T) {
		var count atomic.Int32
		fns := make([]func() error, 10)
		for i := range fns {
			fns[i] = func() error {
				count.Add(1)
				return nil
			}
		}

		require.NoError(t, pool.Run(context.Background(), fns...))
		assert.Equal(t, int32(10), count.Load())
	})

	t.Run("returns first error", func(t *testing.T) {
		boom := errors.New("boom")
		err := pool.Run(context.Background(),
			func() error { return nil },
			func() error { return boom },
		)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no functions is a no-op", func(t *testing.T) {
		assert.NoError(t, pool.Run(context.Background()))
	})
}

func TestWorkerPoolRunAll(t *testing.T) {
	pool := NewWorkerPool(2)

	t.Run("failures do not stop other jobs", func(t *testing.T) {
		var count atomic.Int32
		errs := pool.RunAll(context.Background(),
			func() error { count.Add(1); return errors.New("first") },
			func() error { count.Add(1); return nil },
			func() error { count.Add(1); return errors.New("third") },
		)

		assert.Equal(t, int32(3), count.Load())
		assert.Len(t, errs, 2)
	})

	t.Run("cancelled context reports errors", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		errs := pool.RunAll(ctx, func() error { return nil })
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], context.Canceled)
	})
}

func TestNewWorkerPoolClampsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)
	assert.Equal(t, 1, pool.workerCount)
}
