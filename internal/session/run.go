package session

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run owns the loop: it feeds external events and command completions to
// Handle one at a time until events is closed or ctx is done. Commands still
// in flight are cancelled and awaited before Run returns.
func (c *Coordinator) Run(ctx context.Context, events <-chan Event) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan Event)

	dispatch := func(cmd Cmd) {
		if cmd == nil {
			return
		}

		g.Go(func() error {
			ev := cmd(gctx)
			if ev == nil {
				return nil
			}

			select {
			case results <- ev:
			case <-gctx.Done():
			}

			return nil
		})
	}

	defer func() {
		cancel()
		_ = g.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			dispatch(c.Handle(ev))
		case ev := <-results:
			dispatch(c.Handle(ev))
		}
	}
}
