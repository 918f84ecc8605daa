package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/xaionaro-go/xsync"
)

var (
	// ErrShutdown is returned when a backend is used after Shutdown.
	ErrShutdown = errors.New("backend is shut down")
	// ErrUnknownNode is returned for action requests naming a node that is
	// not in the tree.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnsupportedAction is returned when the target node does not
	// advertise the requested action.
	ErrUnsupportedAction = errors.New("action not supported by node")
)

// Backend is a platform.Backend that mirrors the application's tree and
// reports changes through a Translator.
type Backend struct {
	handle     platform.NativeHandle
	translator Translator
	notifier   platform.Notifier
	sink       platform.ActionSink

	locker        xsync.Mutex
	tree          model.Tree
	windowFocused bool
	shutdown      bool
}

var _ platform.Backend = (*Backend)(nil)

// New creates a backend seeded with the initial tree. Construction raises no
// notifications: the OS discovers the initial tree by querying it.
func New(
	ctx context.Context,
	handle platform.NativeHandle,
	initial model.TreeUpdate,
	sink platform.ActionSink,
	translator Translator,
	notifier platform.Notifier,
) (*Backend, error) {
	if handle == 0 {
		return nil, fmt.Errorf("native handle is required")
	}
	if !initial.IsFull() {
		return nil, fmt.Errorf("%w: initial tree must set the root", model.ErrInvalidUpdate)
	}
	b := &Backend{
		handle:     handle,
		translator: translator,
		notifier:   notifier,
		sink:       sink,
	}
	if _, err := b.tree.Apply(initial); err != nil {
		return nil, fmt.Errorf("unable to apply the initial tree: %w", err)
	}
	logger.Debugf(ctx, "backend attached to window %s with %d nodes", handle, b.tree.Len())
	return b, nil
}

// NewFactory returns a platform.Factory producing mirror backends.
func NewFactory(translator Translator, notifier platform.Notifier) platform.Factory {
	return platform.FactoryFunc(func(
		ctx context.Context,
		handle platform.NativeHandle,
		initial model.TreeUpdate,
		sink platform.ActionSink,
	) (platform.Backend, error) {
		return New(ctx, handle, initial, sink, translator, notifier)
	})
}

// Update implements platform.Backend.
func (b *Backend) Update(ctx context.Context, update model.TreeUpdate) (platform.QueuedEvents, error) {
	return xsync.DoA2R2(ctx, &b.locker, b.updateLocked, ctx, update)
}

func (b *Backend) updateLocked(ctx context.Context, update model.TreeUpdate) (platform.QueuedEvents, error) {
	if b.shutdown {
		return platform.QueuedEvents{}, ErrShutdown
	}
	changes, err := b.tree.Apply(update)
	if err != nil {
		return platform.QueuedEvents{}, err
	}
	events := b.translateChanges(changes)
	logger.Tracef(ctx, "update produced %d changes and %d notifications", len(changes), len(events))
	return platform.NewQueuedEvents(b.notifier, events), nil
}

// WindowEvent implements platform.Backend.
func (b *Backend) WindowEvent(ctx context.Context, ev platform.WindowEvent) platform.QueuedEvents {
	return xsync.DoA2R1(ctx, &b.locker, b.windowEventLocked, ctx, ev)
}

func (b *Backend) windowEventLocked(ctx context.Context, ev platform.WindowEvent) platform.QueuedEvents {
	if b.shutdown {
		return platform.QueuedEvents{}
	}
	var events []platform.Notification
	switch ev {
	case platform.EventFocusGained:
		b.windowFocused = true
		events = b.appendSignal(events, SignalWindowFocused, 0, "", "")
		if n, ok := b.tree.Node(b.tree.Focus()); ok && model.Filter(n) == model.FilterInclude {
			events = b.appendSignal(events, SignalFocusChanged, n.ID, n.Role, "")
		}
	case platform.EventFocusLost:
		b.windowFocused = false
		events = b.appendSignal(events, SignalWindowUnfocused, 0, "", "")
	case platform.EventMinimized:
		events = b.appendSignal(events, SignalWindowMinimized, 0, "", "")
	case platform.EventRestored:
		events = b.appendSignal(events, SignalWindowRestored, 0, "", "")
	default:
		logger.Tracef(ctx, "window event %s needs no notification", ev)
	}
	return platform.NewQueuedEvents(b.notifier, events)
}

// Shutdown implements platform.Backend.
func (b *Backend) Shutdown(ctx context.Context) error {
	return xsync.DoR1(ctx, &b.locker, func() error {
		if b.shutdown {
			return ErrShutdown
		}
		b.shutdown = true
		logger.Debugf(ctx, "backend detached from window %s", b.handle)
		return nil
	})
}

// PerformAction simulates the OS accessibility service asking for an action.
// The request is validated against the mirrored tree and then handed to the
// action sink without holding the backend lock.
func (b *Backend) PerformAction(ctx context.Context, req model.ActionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := xsync.DoR1(ctx, &b.locker, func() error {
		if b.shutdown {
			return ErrShutdown
		}
		n, ok := b.tree.Node(req.Target)
		if !ok || model.Filter(n) == model.FilterExcludeSubtree {
			return fmt.Errorf("%w: %d", ErrUnknownNode, req.Target)
		}
		if !n.Supports(req.Action) {
			return fmt.Errorf("%w: node %d does not support %s", ErrUnsupportedAction, req.Target, req.Action)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return b.sink.OnActionRequest(ctx, req)
}

// Snapshot returns the mirrored tree as a full update.
func (b *Backend) Snapshot(ctx context.Context) model.TreeUpdate {
	return xsync.DoR1(ctx, &b.locker, b.tree.Snapshot)
}

// Flatten returns the exposed nodes of the mirrored tree.
func (b *Backend) Flatten(ctx context.Context) []model.FlatNode {
	return xsync.DoR1(ctx, &b.locker, func() []model.FlatNode {
		return model.Flatten(&b.tree)
	})
}

// WindowFocused reports whether the native window currently has focus.
func (b *Backend) WindowFocused(ctx context.Context) bool {
	return xsync.DoR1(ctx, &b.locker, func() bool {
		return b.windowFocused
	})
}
