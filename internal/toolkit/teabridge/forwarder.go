package teabridge

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/xaionaro-go/xsync"
)

// ForwardQueueSize is how many action requests may wait for the event loop
// before new ones are dropped.
const ForwardQueueSize = 64

// Sender delivers a message into a running program. *tea.Program
// implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ActionForwarder is an adapter.WindowActionHandler that posts every action
// request into the program as an ActionRequestMsg. Requests reach the
// program in the order they were handled.
type ActionForwarder struct {
	locker xsync.Mutex
	queue  chan ActionRequestMsg
}

var _ adapter.WindowActionHandler = (*ActionForwarder)(nil)

// Attach sets the program requests are posted to and starts forwarding.
// Forwarding stops when ctx is done.
func (f *ActionForwarder) Attach(ctx context.Context, sender Sender) {
	f.locker.Do(ctx, func() {
		if f.queue != nil {
			logger.Warnf(ctx, "action forwarder is already attached")
			return
		}
		queue := make(chan ActionRequestMsg, ForwardQueueSize)
		f.queue = queue
		go forward(ctx, sender, queue)
	})
}

func forward(ctx context.Context, sender Sender, queue <-chan ActionRequestMsg) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-queue:
			sender.Send(msg)
		}
	}
}

// HandleWindowAction implements adapter.WindowActionHandler. It only
// enqueues, so the backend's goroutine never waits on the event loop.
func (f *ActionForwarder) HandleWindowAction(ctx context.Context, window adapter.WindowID, req model.ActionRequest) {
	queue := xsync.DoR1(ctx, &f.locker, func() chan ActionRequestMsg {
		return f.queue
	})
	if queue == nil {
		logger.Warnf(ctx, "%s: no program attached, dropping %s", window, req)
		return
	}
	select {
	case queue <- ActionRequestMsg{Window: window, Request: req}:
	default:
		logger.Warnf(ctx, "%s: action queue full, dropping %s", window, req)
	}
}
