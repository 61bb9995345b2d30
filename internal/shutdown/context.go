// Package shutdown 提供收到中斷訊號時取消的 context
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New 回傳收到 SIGINT 或 SIGTERM 時取消的 context
func New() (context.Context, context.CancelFunc) {
	return InterruptContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// InterruptContext 在收到任一指定訊號或呼叫 cancel 時取消 context
func InterruptContext(ctx context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
