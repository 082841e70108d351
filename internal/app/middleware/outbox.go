package middleware

import (
	"context"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/outbox"
)

// OutboxFlush runs after the command committed and pushes recorded events
// toward the publisher. A flush failure surfaces to the caller, but the
// command's writes stand; delivery is retried by the outbox worker.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
