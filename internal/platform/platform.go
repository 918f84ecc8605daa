package platform

import (
	"context"

	"github.com/mj1618/accessbridge/internal/model"
)

// Backend owns the live OS-side accessibility object for one window.
// All methods are called with the owning adapter's lock held, except that
// the returned QueuedEvents are raised after the lock is released.
type Backend interface {
	// Update delivers a tree snapshot. A rejected snapshot leaves the
	// backend's previous tree in place.
	Update(ctx context.Context, update model.TreeUpdate) (QueuedEvents, error)

	// WindowEvent informs the backend about a change of the native window
	// (focus, minimize, restore).
	WindowEvent(ctx context.Context, ev WindowEvent) QueuedEvents

	// Shutdown releases the native accessibility object. The backend must
	// not be used afterwards.
	Shutdown(ctx context.Context) error
}

// ActionSink receives action requests coming from the OS accessibility
// service. It may be invoked from any goroutine.
type ActionSink interface {
	OnActionRequest(ctx context.Context, req model.ActionRequest) error
}

// Factory constructs backends. Exactly one factory is registered per OS
// family; see NewFactoryFunc.
type Factory interface {
	// NewBackend creates a backend attached to the native window handle with
	// the given initial tree. Action requests are reported to sink.
	NewBackend(ctx context.Context, handle NativeHandle, initial model.TreeUpdate, sink ActionSink) (Backend, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, handle NativeHandle, initial model.TreeUpdate, sink ActionSink) (Backend, error)

// NewBackend implements Factory.
func (f FactoryFunc) NewBackend(ctx context.Context, handle NativeHandle, initial model.TreeUpdate, sink ActionSink) (Backend, error) {
	return f(ctx, handle, initial, sink)
}

// Notifier is the seam to the native accessibility bridge: it receives the
// notifications a backend raises (e.g. NSAccessibilityPostNotification,
// UiaRaiseAutomationEvent, an AT-SPI D-Bus signal).
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }
