package background

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Background runs fire-and-forget tasks (emails, event publishes) on
// tracked goroutines so a graceful shutdown can wait for them.
type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

// Add schedules fn on its own goroutine. Panics are recovered and logged:
// a background task must never take the server down.
func (b *Background) Add(fn func() error) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		defer func() {
			if rec := recover(); rec != nil {
				b.log.Errorf("background task panicked: %v", rec)
			}
		}()

		if err := fn(); err != nil {
			b.log.Errorf("background task failed: %v", err)
		}
	}()
}

// Shutdown waits for in-flight tasks, giving up when ctx expires.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background tasks still running: %w", ctx.Err())
	}
}
