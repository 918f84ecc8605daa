// Package adapter keeps one accessibility backend per window in step with
// the application's tree and routes action requests back to it.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/xaionaro-go/xsync"
)

// Options configure a window adapter.
type Options struct {
	// Factory constructs the backend once the window activates. A nil
	// factory leaves the adapter degraded on activation.
	Factory platform.Factory
	// Trigger selects when the backend is constructed. Defaults to
	// platform.ActivationTrigger.
	Trigger platform.Trigger
	// Handler receives action requests from the backend.
	Handler ActionHandler
	// InitialTree is pulled when activation fires with no buffered
	// snapshot. Optional.
	InitialTree TreeSource
	// Observer is told about lifecycle entries. Optional.
	Observer Observer
}

// Adapter is the per-window state machine between the application, the
// windowing toolkit and the platform backend.
//
// All operations may be called from any goroutine. State changes are
// serialized per adapter; unrelated windows never share a lock.
type Adapter struct {
	id          WindowID
	factory     platform.Factory
	trigger     platform.Trigger
	handler     ActionHandler
	initialTree TreeSource
	observer    Observer

	locker xsync.Mutex
	phase  phase

	// gate orders action callbacks before destruction: callbacks hold the
	// read side, OnWindowDestroyed takes the write side to set closing.
	gate    sync.RWMutex
	closing bool
}

var _ platform.ActionSink = (*Adapter)(nil)

// New returns an adapter for a window whose native handle is not known yet.
func New(id WindowID, opts Options) *Adapter {
	if opts.Trigger == "" {
		opts.Trigger = platform.ActivationTrigger
	}
	return &Adapter{
		id:          id,
		factory:     opts.Factory,
		trigger:     opts.Trigger,
		handler:     opts.Handler,
		initialTree: opts.InitialTree,
		observer:    opts.Observer,
		phase:       uninitialized{},
	}
}

// ID returns the window this adapter serves.
func (a *Adapter) ID() WindowID { return a.id }

// Trigger returns the activation trigger in effect.
func (a *Adapter) Trigger() platform.Trigger { return a.trigger }

// OnWindowCreated records the native handle. On eager platforms the backend
// is constructed right away when a tree is available.
func (a *Adapter) OnWindowCreated(ctx context.Context, handle platform.NativeHandle) error {
	if handle == 0 {
		return ErrInvalidHandle
	}
	return xsync.DoA2R1(ctx, &a.locker, a.onWindowCreatedLocked, ctx, handle)
}

func (a *Adapter) onWindowCreatedLocked(ctx context.Context, handle platform.NativeHandle) error {
	switch p := a.phase.(type) {
	case uninitialized:
		next := handleKnown{
			handle:              handle,
			pending:             p.pending,
			activationRequested: p.activationRequested,
		}
		a.phase = next
		logger.Debugf(ctx, "%s: native handle %s", a.id, handle)
		a.observe(ctx, EntryHandle, "%s", handle)
		if a.trigger.Eager() || next.activationRequested {
			a.activateLocked(ctx, next)
		}
		return nil
	case destroyed:
		return ErrAdapterDestroyed
	default:
		logger.Warnf(ctx, "%s: ignoring native handle %s, already attached to %s", a.id, handle, handleOf(a.phase))
		return nil
	}
}

// RequestUpdate pulls one snapshot from source and delivers it to the
// backend, constructs the backend with it, or buffers it, depending on the
// state. Only the latest buffered snapshot survives.
//
// A backend rejecting the snapshot yields an error wrapping
// ErrUpdateDelivery; the adapter stays activated.
func (a *Adapter) RequestUpdate(ctx context.Context, source TreeSource) error {
	q, err := xsync.DoA2R2(ctx, &a.locker, a.requestUpdateLocked, ctx, source)
	q.Raise(ctx)
	return err
}

func (a *Adapter) requestUpdateLocked(ctx context.Context, source TreeSource) (platform.QueuedEvents, error) {
	if _, ok := a.phase.(destroyed); ok {
		return platform.QueuedEvents{}, ErrAdapterDestroyed
	}
	update := source.Produce(ctx)

	switch p := a.phase.(type) {
	case activated:
		return a.deliverLocked(ctx, p.backend, update)
	case handleKnown:
		if a.trigger.Eager() || p.activationRequested {
			a.constructLocked(ctx, p.handle, update)
			return platform.QueuedEvents{}, nil
		}
		a.bufferLocked(ctx, p.pending, update)
		p.pending = &update
		a.phase = p
	case uninitialized:
		a.bufferLocked(ctx, p.pending, update)
		p.pending = &update
		a.phase = p
	case degraded:
		logger.Debugf(ctx, "%s: dropping tree update, no backend", a.id)
	}
	return platform.QueuedEvents{}, nil
}

func (a *Adapter) bufferLocked(ctx context.Context, previous *model.TreeUpdate, update model.TreeUpdate) {
	if previous != nil {
		logger.Tracef(ctx, "%s: replacing buffered tree update", a.id)
	}
	a.observe(ctx, EntryBuffered, "%d nodes", len(update.Nodes))
}

// UpdateIfActive pulls from source and delivers only when a backend is live.
// It reports whether the snapshot was delivered.
func (a *Adapter) UpdateIfActive(ctx context.Context, source TreeSource) (bool, error) {
	var q platform.QueuedEvents
	delivered, err := xsync.DoR2(ctx, &a.locker, func() (bool, error) {
		switch p := a.phase.(type) {
		case activated:
			var err error
			q, err = a.deliverLocked(ctx, p.backend, source.Produce(ctx))
			return err == nil, err
		case destroyed:
			return false, ErrAdapterDestroyed
		default:
			return false, nil
		}
	})
	q.Raise(ctx)
	return delivered, err
}

func (a *Adapter) deliverLocked(ctx context.Context, backend platform.Backend, update model.TreeUpdate) (platform.QueuedEvents, error) {
	q, err := backend.Update(ctx, update)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUpdateDelivery, err)
		logger.Warnf(ctx, "%s: %v", a.id, err)
		a.observe(ctx, EntryUpdateFailed, "%v", err)
		return platform.QueuedEvents{}, err
	}
	a.observe(ctx, EntryUpdated, "%d nodes, %d notifications", len(update.Nodes), q.Len())
	return q, nil
}

// ProcessEvent handles an OS-originated window event. The activation
// trigger constructs the backend if the handle is known; everything else is
// forwarded to a live backend or absorbed.
func (a *Adapter) ProcessEvent(ctx context.Context, ev platform.WindowEvent) error {
	q, err := xsync.DoA2R2(ctx, &a.locker, a.processEventLocked, ctx, ev)
	q.Raise(ctx)
	return err
}

func (a *Adapter) processEventLocked(ctx context.Context, ev platform.WindowEvent) (platform.QueuedEvents, error) {
	if _, ok := a.phase.(destroyed); ok {
		return platform.QueuedEvents{}, ErrAdapterDestroyed
	}
	a.observe(ctx, EntryEvent, "%s", ev)

	switch p := a.phase.(type) {
	case uninitialized:
		if a.trigger.Matches(ev) && !p.activationRequested {
			logger.Debugf(ctx, "%s: %s before the native handle is known, activation deferred", a.id, ev)
			p.activationRequested = true
			a.phase = p
		}
	case handleKnown:
		if a.trigger.Matches(ev) {
			a.activateLocked(ctx, p)
		}
	}

	if p, ok := a.phase.(activated); ok {
		return p.backend.WindowEvent(ctx, ev), nil
	}
	return platform.QueuedEvents{}, nil
}

// activateLocked constructs the backend from the buffered snapshot or the
// initial tree source. With neither available the activation is remembered
// and fulfilled by the next RequestUpdate.
func (a *Adapter) activateLocked(ctx context.Context, p handleKnown) {
	tree := p.pending
	if tree == nil && a.initialTree != nil {
		initial := a.initialTree.Produce(ctx)
		tree = &initial
	}
	if tree == nil {
		if !p.activationRequested {
			logger.Debugf(ctx, "%s: activation deferred until the first tree update", a.id)
		}
		p.activationRequested = true
		a.phase = p
		return
	}
	a.constructLocked(ctx, p.handle, *tree)
}

func (a *Adapter) constructLocked(ctx context.Context, handle platform.NativeHandle, initial model.TreeUpdate) {
	var (
		backend platform.Backend
		err     error
	)
	switch {
	case a.factory == nil:
		err = errors.New("no backend factory")
	default:
		backend, err = a.factory.NewBackend(ctx, handle, initial, a)
		if err == nil && backend == nil {
			err = errors.New("factory returned no backend")
		}
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrBackendConstruction, err)
		logger.Errorf(ctx, "%s: %v; accessibility is unavailable for this window", a.id, err)
		a.phase = degraded{handle: handle, cause: err}
		a.observe(ctx, EntryDegraded, "%v", err)
		return
	}
	a.phase = activated{handle: handle, backend: backend}
	logger.Debugf(ctx, "%s: backend activated with %d nodes", a.id, len(initial.Nodes))
	a.observe(ctx, EntryActivated, "%d nodes", len(initial.Nodes))
}

// OnActionRequest implements platform.ActionSink. It hands req to the action
// handler synchronously, on the calling goroutine. Requests arriving once
// destruction has begun are rejected with ErrAdapterDestroyed.
func (a *Adapter) OnActionRequest(ctx context.Context, req model.ActionRequest) error {
	a.gate.RLock()
	defer a.gate.RUnlock()
	if a.closing {
		return ErrAdapterDestroyed
	}
	if a.handler == nil {
		logger.Warnf(ctx, "%s: no action handler, dropping %s", a.id, req)
		return nil
	}
	logger.Debugf(ctx, "%s: action %s", a.id, req)
	if a.observer != nil {
		a.observer.Observe(ctx, a.entry(a.State(ctx), EntryAction, req.String()))
	}
	a.handler.Handle(ctx, req)
	return nil
}

// OnWindowDestroyed waits for in-flight action requests, shuts the backend
// down and discards any buffered snapshot. It must be the last call on the
// adapter; a second call returns ErrAdapterDestroyed.
func (a *Adapter) OnWindowDestroyed(ctx context.Context) error {
	a.gate.Lock()
	wasClosing := a.closing
	a.closing = true
	a.gate.Unlock()
	if wasClosing {
		return ErrAdapterDestroyed
	}
	return xsync.DoA1R1(ctx, &a.locker, a.destroyLocked, ctx)
}

func (a *Adapter) destroyLocked(ctx context.Context) error {
	var err error
	switch p := a.phase.(type) {
	case uninitialized, handleKnown:
		if pendingOf(p) != nil {
			logger.Debugf(ctx, "%s: discarding buffered tree update", a.id)
		}
	case activated:
		if shutdownErr := p.backend.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("unable to shut down the backend of %s: %w", a.id, shutdownErr)
			logger.Errorf(ctx, "%v", err)
		}
	}
	a.phase = destroyed{}
	logger.Debugf(ctx, "%s: destroyed", a.id)
	a.observe(ctx, EntryDestroyed, "")
	return err
}

// State returns the current lifecycle state.
func (a *Adapter) State(ctx context.Context) State {
	return xsync.DoR1(ctx, &a.locker, func() State {
		return a.phase.state()
	})
}

// Handle returns the native handle, or zero when unknown or destroyed.
func (a *Adapter) Handle(ctx context.Context) platform.NativeHandle {
	return xsync.DoR1(ctx, &a.locker, func() platform.NativeHandle {
		return handleOf(a.phase)
	})
}

// HasBackend reports whether a backend is live.
func (a *Adapter) HasBackend(ctx context.Context) bool {
	return a.Backend(ctx) != nil
}

// Backend returns the live backend, or nil.
func (a *Adapter) Backend(ctx context.Context) platform.Backend {
	return xsync.DoR1(ctx, &a.locker, func() platform.Backend {
		if p, ok := a.phase.(activated); ok {
			return p.backend
		}
		return nil
	})
}

// HasPending reports whether a snapshot is buffered.
func (a *Adapter) HasPending(ctx context.Context) bool {
	return xsync.DoR1(ctx, &a.locker, func() bool {
		return pendingOf(a.phase) != nil
	})
}

// DegradedCause returns why backend construction failed, or nil.
func (a *Adapter) DegradedCause(ctx context.Context) error {
	return xsync.DoR1(ctx, &a.locker, func() error {
		if p, ok := a.phase.(degraded); ok {
			return p.cause
		}
		return nil
	})
}

func (a *Adapter) observe(ctx context.Context, kind EntryKind, format string, args ...any) {
	if a.observer == nil {
		return
	}
	a.observer.Observe(ctx, a.entry(a.phase.state(), kind, fmt.Sprintf(format, args...)))
}

func (a *Adapter) entry(state State, kind EntryKind, detail string) Entry {
	return Entry{
		Window: a.id,
		Kind:   kind,
		State:  state,
		Detail: detail,
		Time:   time.Now(),
	}
}
