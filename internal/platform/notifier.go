package platform

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/xsync"
)

// LogNotifier writes every notification to the context logger. It stands in
// for a native bridge when none is attached.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(ctx context.Context, n Notification) {
	logger.Debugf(ctx, "notification %s window=%s node=%d text=%q", n.Name, n.Window, n.Node, n.Text)
}

// Recorder keeps every notification it receives, in order. It is safe for
// concurrent use.
type Recorder struct {
	locker xsync.Mutex
	events []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(ctx context.Context, n Notification) {
	r.locker.Do(ctx, func() {
		r.events = append(r.events, n)
	})
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events(ctx context.Context) []Notification {
	return xsync.DoR1(ctx, &r.locker, func() []Notification {
		return append([]Notification(nil), r.events...)
	})
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain(ctx context.Context) []Notification {
	return xsync.DoR1(ctx, &r.locker, func() []Notification {
		out := r.events
		r.events = nil
		return out
	})
}
