package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/DM41131/RNG-password-generator/internal/pool"
)

// Collection is the result of a completed Collect.
type Collection struct {
	Data       []byte
	Generation uint64
	Digests    []Entry
	Stats      Stats
}

// Collect waits until the pool holds n bytes and returns the most recent n.
// With reset set, the pool is reset afterwards unless another consumer
// already reset it. A reset while waiting ends the wait with
// pool.ErrReset. If ctx ends first the waiter is detached.
//
// Collect must be called from outside the loop goroutine.
func (e *Engine) Collect(ctx context.Context, n int, reset bool) (*Collection, error) {
	var w *pool.Waiter
	if err := e.Do(ctx, func(e *Engine) { w = e.Wait(n) }); err != nil {
		return nil, err
	}

	select {
	case <-w.Done():
	case <-ctx.Done():
		if err := e.Do(context.Background(), func(e *Engine) { e.Cancel(w) }); err != nil {
			e.log.Debug("waiter cancel skipped", zap.Error(err))
		}
		return nil, ctx.Err()
	}

	data, err := w.Result()
	if err != nil {
		return nil, err
	}

	c := &Collection{Data: data, Generation: w.Generation()}
	err = e.Do(ctx, func(e *Engine) {
		c.Digests = e.history.Since(0)
		c.Stats = e.Stats()
		if reset && e.pool.Generation() == c.Generation {
			e.Reset("collected")
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
