package adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/xaionaro-go/xsync"
)

// RegistryOptions configure the adapters a Registry creates.
type RegistryOptions struct {
	Factory platform.Factory
	Trigger platform.Trigger
	// Handler receives the action requests of every window.
	Handler WindowActionHandler
	// InitialTree returns the initial tree source of a window. Optional.
	InitialTree func(WindowID) TreeSource
	Observer    Observer
}

// Registry maps windows to their adapters. It is owned by whatever drives
// the event loop; there is no process-wide instance.
//
// The registry lock only covers membership. Adapter operations, including
// destruction, run outside of it.
type Registry struct {
	opts RegistryOptions

	locker     xsync.Mutex
	adapters   map[WindowID]*Adapter
	tombstones map[WindowID]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	return &Registry{
		opts:       opts,
		adapters:   map[WindowID]*Adapter{},
		tombstones: map[WindowID]struct{}{},
	}
}

// GetOrCreate returns the adapter of a window, creating it on first access.
// At most one adapter ever exists per live window.
func (r *Registry) GetOrCreate(ctx context.Context, id WindowID) (*Adapter, error) {
	return xsync.DoR2(ctx, &r.locker, func() (*Adapter, error) {
		if _, ok := r.tombstones[id]; ok {
			return nil, fmt.Errorf("%s: %w", id, ErrAdapterDestroyed)
		}
		if a, ok := r.adapters[id]; ok {
			return a, nil
		}
		a := New(id, r.adapterOptions(id))
		r.adapters[id] = a
		logger.Debugf(ctx, "%s: adapter created", id)
		if r.opts.Observer != nil {
			r.opts.Observer.Observe(ctx, a.entry(StateUninitialized, EntryCreated, ""))
		}
		return a, nil
	})
}

func (r *Registry) adapterOptions(id WindowID) Options {
	opts := Options{
		Factory:  r.opts.Factory,
		Trigger:  r.opts.Trigger,
		Observer: r.opts.Observer,
	}
	if h := r.opts.Handler; h != nil {
		opts.Handler = ActionHandlerFunc(func(ctx context.Context, req model.ActionRequest) {
			h.HandleWindowAction(ctx, id, req)
		})
	}
	if r.opts.InitialTree != nil {
		opts.InitialTree = r.opts.InitialTree(id)
	}
	return opts
}

// Lookup returns the adapter of a known window.
func (r *Registry) Lookup(ctx context.Context, id WindowID) (*Adapter, error) {
	return xsync.DoR2(ctx, &r.locker, func() (*Adapter, error) {
		return r.lookupLocked(id)
	})
}

func (r *Registry) lookupLocked(id WindowID) (*Adapter, error) {
	if a, ok := r.adapters[id]; ok {
		return a, nil
	}
	if _, ok := r.tombstones[id]; ok {
		return nil, fmt.Errorf("%s: %w", id, ErrAdapterDestroyed)
	}
	return nil, fmt.Errorf("%s: %w", id, ErrUnknownWindow)
}

// Remove destroys the adapter of a window. The window is detached first so
// no further lookup can reach the adapter; any later event for it fails with
// ErrAdapterDestroyed until Revive.
func (r *Registry) Remove(ctx context.Context, id WindowID) error {
	a, err := xsync.DoR2(ctx, &r.locker, func() (*Adapter, error) {
		a, err := r.lookupLocked(id)
		if err != nil {
			return nil, err
		}
		delete(r.adapters, id)
		r.tombstones[id] = struct{}{}
		return a, nil
	})
	if err != nil {
		return err
	}
	return a.OnWindowDestroyed(ctx)
}

// Revive forgets that a window was destroyed so its id can be used again.
// It reports whether the id was tombstoned.
func (r *Registry) Revive(ctx context.Context, id WindowID) bool {
	return xsync.DoR1(ctx, &r.locker, func() bool {
		if _, ok := r.tombstones[id]; !ok {
			return false
		}
		delete(r.tombstones, id)
		logger.Debugf(ctx, "%s: revived", id)
		return true
	})
}

// Windows returns the ids of all live windows in ascending order.
func (r *Registry) Windows(ctx context.Context) []WindowID {
	return xsync.DoR1(ctx, &r.locker, func() []WindowID {
		ids := make([]WindowID, 0, len(r.adapters))
		for id := range r.adapters {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return ids
	})
}

// Len returns the number of live windows.
func (r *Registry) Len(ctx context.Context) int {
	return xsync.DoR1(ctx, &r.locker, func() int {
		return len(r.adapters)
	})
}

// Close destroys every remaining adapter.
func (r *Registry) Close(ctx context.Context) error {
	adapters := xsync.DoR1(ctx, &r.locker, func() []*Adapter {
		out := make([]*Adapter, 0, len(r.adapters))
		for id, a := range r.adapters {
			out = append(out, a)
			r.tombstones[id] = struct{}{}
		}
		r.adapters = map[WindowID]*Adapter{}
		return out
	})
	sort.Slice(adapters, func(i, j int) bool { return adapters[i].id < adapters[j].id })

	var result *multierror.Error
	for _, a := range adapters {
		if err := a.OnWindowDestroyed(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
