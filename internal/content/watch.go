package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long Watch waits for file changes to settle.
var DebounceInterval = 500 * time.Millisecond

// Watch publishes a Changed event whenever files in dir change, once the
// changes have settled. It blocks until ctx is done.
func (c *Content) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	c.logger.Info("watching content directory", slog.String("dir", dir))

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			c.logger.Debug("content file event", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			debounce.Reset(DebounceInterval)
		case <-debounce.C:
			c.publish(Event{Kind: Changed})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("content watcher error", slog.String("error", err.Error()))
		}
	}
}
