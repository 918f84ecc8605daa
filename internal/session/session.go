// Package session drives a registry of window adapters on behalf of a
// scripted or remote windowing toolkit. It backs the replay command and the
// MCP server.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/output"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
	"github.com/mj1618/accessbridge/internal/router"
	"github.com/xaionaro-go/xsync"
)

const (
	BackendNative = "native"
	BackendMirror = "mirror"
)

// ErrNoBackend is returned when an action targets a window whose backend is
// not live.
var ErrNoBackend = errors.New("window has no live accessibility backend")

// Options configures a Session.
type Options struct {
	// Backend is BackendNative or BackendMirror. Empty means native.
	Backend string
	// Trigger overrides the activation trigger of this OS family.
	Trigger platform.Trigger
	// Observer receives adapter lifecycle entries (e.g. a journal).
	Observer adapter.Observer
	// TreeCacheTTL caches flattened trees between reads. Zero disables it.
	TreeCacheTTL time.Duration
}

// Session owns a registry, the router in front of it, and everything the
// backends report back: notifications and action requests.
type Session struct {
	recorder *platform.Recorder
	registry *adapter.Registry
	router   *router.Router
	cache    *treeCache

	locker  xsync.Mutex
	actions []output.ActionInfo
}

// New creates a session.
func New(ctx context.Context, opts Options) (*Session, error) {
	s := &Session{
		recorder: &platform.Recorder{},
		cache:    newTreeCache(opts.TreeCacheTTL),
	}
	notifier := platform.NotifierFunc(func(ctx context.Context, n platform.Notification) {
		platform.LogNotifier{}.Notify(ctx, n)
		s.recorder.Notify(ctx, n)
	})
	factory, err := NewFactory(ctx, opts.Backend, notifier)
	if err != nil {
		return nil, err
	}
	s.registry = adapter.NewRegistry(adapter.RegistryOptions{
		Factory:  factory,
		Trigger:  opts.Trigger,
		Handler:  adapter.WindowActionHandlerFunc(s.recordAction),
		Observer: opts.Observer,
	})
	s.router = router.New(s.registry, opts.Trigger)
	logger.Debugf(ctx, "session started: backend=%s trigger=%s", backendName(opts.Backend), s.router.Trigger())
	return s, nil
}

// NewFactory returns the backend factory for kind. A native backend falls
// back to the mirror backend on OS families without one, and on hosts where
// the native accessibility service cannot be reached.
func NewFactory(ctx context.Context, kind string, notifier platform.Notifier) (platform.Factory, error) {
	switch backendName(kind) {
	case BackendNative:
		fallback := mirror.NewFactory(mirror.Neutral{}, notifier)
		f, err := platform.NewFactory(notifier)
		switch {
		case errors.Is(err, platform.ErrUnsupported), errors.Is(err, platform.ErrBackendUnavailable):
			logger.Warnf(ctx, "%v; using the mirror backend", err)
			return fallback, nil
		case err != nil:
			return nil, err
		}
		return withFallback(f, fallback), nil
	case BackendMirror:
		return mirror.NewFactory(mirror.Neutral{}, notifier), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (use native or mirror)", kind)
	}
}

// withFallback constructs backends with primary, switching to fallback for a
// window whose native accessibility service is unavailable.
func withFallback(primary, fallback platform.Factory) platform.Factory {
	return platform.FactoryFunc(func(
		ctx context.Context,
		handle platform.NativeHandle,
		initial model.TreeUpdate,
		sink platform.ActionSink,
	) (platform.Backend, error) {
		b, err := primary.NewBackend(ctx, handle, initial, sink)
		if errors.Is(err, platform.ErrBackendUnavailable) {
			logger.Warnf(ctx, "%v; using the mirror backend for window %s", err, handle)
			return fallback.NewBackend(ctx, handle, initial, sink)
		}
		return b, err
	})
}

func backendName(kind string) string {
	if kind == "" {
		return BackendNative
	}
	return kind
}

// Router returns the router events are fed through.
func (s *Session) Router() *router.Router { return s.router }

// Registry returns the adapter registry.
func (s *Session) Registry() *adapter.Registry { return s.registry }

// Create reports a new window. A zero handle defers the handle to SetHandle.
func (s *Session) Create(ctx context.Context, id adapter.WindowID, handle platform.NativeHandle) error {
	s.cache.invalidate(id)
	_, err := s.router.Route(ctx, router.Event{Window: id, Kind: router.KindWindowCreated, Handle: handle})
	return err
}

// SetHandle reports the native handle of a window.
func (s *Session) SetHandle(ctx context.Context, id adapter.WindowID, handle platform.NativeHandle) error {
	_, err := s.router.Route(ctx, router.Event{Window: id, Kind: router.KindHandleAvailable, Handle: handle})
	return err
}

// Update offers a new tree snapshot for a window.
func (s *Session) Update(ctx context.Context, id adapter.WindowID, update model.TreeUpdate) error {
	update, err := checkNodes(update)
	if err != nil {
		return err
	}
	a, err := s.registry.Lookup(ctx, id)
	if err != nil {
		return err
	}
	defer s.cache.invalidate(id)
	return a.RequestUpdate(ctx, adapter.StaticTree(update))
}

// checkNodes validates an update coming from outside the process: node
// roles must be compact role codes and live settings are normalized.
func checkNodes(update model.TreeUpdate) (model.TreeUpdate, error) {
	if err := update.Validate(); err != nil {
		return model.TreeUpdate{}, err
	}
	update = update.Clone()
	for i := range update.Nodes {
		n := &update.Nodes[i]
		if !model.IsKnownRole(n.Role) {
			return model.TreeUpdate{}, fmt.Errorf("%w: node %d has unknown role %q", model.ErrInvalidUpdate, n.ID, n.Role)
		}
		live, err := model.ParseLive(string(n.Live))
		if err != nil {
			return model.TreeUpdate{}, fmt.Errorf("%w: node %d: %w", model.ErrInvalidUpdate, n.ID, err)
		}
		n.Live = live
	}
	return update, nil
}

// Event routes a window event. It reports whether the toolkit would still
// see the event.
func (s *Session) Event(ctx context.Context, id adapter.WindowID, kind router.Kind) (bool, error) {
	if kind == router.KindActionRequest {
		return false, fmt.Errorf("%s events carry an action; use PerformAction", kind)
	}
	defer s.cache.invalidate(id)
	return s.router.Route(ctx, router.Event{Window: id, Kind: kind})
}

type actionPerformer interface {
	PerformAction(ctx context.Context, req model.ActionRequest) error
}

// PerformAction asks the window's backend to perform req, as the OS
// accessibility service would. The request reaches the action handler
// through the backend.
func (s *Session) PerformAction(ctx context.Context, id adapter.WindowID, req model.ActionRequest) error {
	a, err := s.registry.Lookup(ctx, id)
	if err != nil {
		return err
	}
	performer, ok := a.Backend(ctx).(actionPerformer)
	if !ok {
		return fmt.Errorf("%s: %w (state %s)", id, ErrNoBackend, a.State(ctx))
	}
	return performer.PerformAction(ctx, req)
}

// Destroy reports that a window is gone.
func (s *Session) Destroy(ctx context.Context, id adapter.WindowID) error {
	defer s.cache.invalidate(id)
	_, err := s.router.Route(ctx, router.Event{Window: id, Kind: router.KindWindowDestroyed})
	return err
}

// Window describes one tracked window.
func (s *Session) Window(ctx context.Context, id adapter.WindowID) (output.WindowInfo, error) {
	a, err := s.registry.Lookup(ctx, id)
	if err != nil {
		return output.WindowInfo{}, err
	}
	return describe(ctx, a), nil
}

// Windows describes every tracked window in id order.
func (s *Session) Windows(ctx context.Context) []output.WindowInfo {
	var result []output.WindowInfo
	for _, id := range s.registry.Windows(ctx) {
		a, err := s.registry.Lookup(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, describe(ctx, a))
	}
	return result
}

func describe(ctx context.Context, a *adapter.Adapter) output.WindowInfo {
	info := output.WindowInfo{
		ID:      uint64(a.ID()),
		State:   string(a.State(ctx)),
		Handle:  uint64(a.Handle(ctx)),
		Pending: a.HasPending(ctx),
		Backend: a.HasBackend(ctx),
	}
	if err := a.DegradedCause(ctx); err != nil {
		info.Degraded = err.Error()
	}
	return info
}

type flattener interface {
	Flatten(ctx context.Context) []model.FlatNode
}

// Tree returns the nodes the window's backend exposes to assistive
// technology.
func (s *Session) Tree(ctx context.Context, id adapter.WindowID) ([]model.FlatNode, error) {
	return s.cache.read(id, func() ([]model.FlatNode, error) {
		a, err := s.registry.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		f, ok := a.Backend(ctx).(flattener)
		if !ok {
			return nil, fmt.Errorf("%s: %w (state %s)", id, ErrNoBackend, a.State(ctx))
		}
		return f.Flatten(ctx), nil
	})
}

type snapshotter interface {
	Snapshot(ctx context.Context) model.TreeUpdate
}

// Snapshot returns the tree the window's backend mirrors as a full update.
func (s *Session) Snapshot(ctx context.Context, id adapter.WindowID) (model.TreeUpdate, error) {
	a, err := s.registry.Lookup(ctx, id)
	if err != nil {
		return model.TreeUpdate{}, err
	}
	b, ok := a.Backend(ctx).(snapshotter)
	if !ok {
		return model.TreeUpdate{}, fmt.Errorf("%s: %w (state %s)", id, ErrNoBackend, a.State(ctx))
	}
	return b.Snapshot(ctx), nil
}

// Notifications returns the notifications raised since the last call.
func (s *Session) Notifications(ctx context.Context) []platform.Notification {
	return s.recorder.Drain(ctx)
}

func (s *Session) recordAction(ctx context.Context, id adapter.WindowID, req model.ActionRequest) {
	s.locker.Do(ctx, func() {
		s.actions = append(s.actions, output.ActionInfo{
			Window:  uint64(id),
			Request: req,
			TS:      time.Now().Unix(),
		})
	})
}

// Actions returns the action requests received since the last call.
func (s *Session) Actions(ctx context.Context) []output.ActionInfo {
	return xsync.DoR1(ctx, &s.locker, func() []output.ActionInfo {
		out := s.actions
		s.actions = nil
		return out
	})
}

// Close destroys every adapter.
func (s *Session) Close(ctx context.Context) error {
	s.cache.invalidateAll()
	return s.registry.Close(ctx)
}
