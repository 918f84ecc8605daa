package teabridge

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/router"
)

// DefaultWindow is the window id used when Options.Window is zero.
const DefaultWindow adapter.WindowID = 1

// Options configure Wrap.
type Options struct {
	Router *router.Router
	Window adapter.WindowID
	// Handle is the native handle reported on window creation. Zero derives
	// one from the terminal with HandleFromFd.
	Handle platform.NativeHandle
}

// HandleFromFd derives a native handle from a terminal file descriptor.
// Terminals have no native window; the descriptor stands in, offset by one
// so that descriptor 0 is not mistaken for "unknown".
func HandleFromFd(fd uintptr) platform.NativeHandle {
	return platform.NativeHandle(fd + 1)
}

// Model wraps an inner tea.Model. Every message reaches the inner model
// unchanged; accessibility-relevant ones are routed first.
type Model struct {
	ctx    context.Context
	inner  tea.Model
	router *router.Router
	window adapter.WindowID
	handle platform.NativeHandle

	created bool
	closed  bool
	err     error
}

var _ tea.Model = Model{}

// Wrap returns a model feeding inner's messages through opts.Router.
func Wrap(ctx context.Context, inner tea.Model, opts Options) Model {
	if opts.Window == 0 {
		opts.Window = DefaultWindow
	}
	if opts.Handle == 0 {
		opts.Handle = HandleFromFd(os.Stdout.Fd())
	}
	return Model{
		ctx:    ctx,
		inner:  inner,
		router: opts.Router,
		window: opts.Window,
		handle: opts.Handle,
	}
}

// Inner returns the wrapped model.
func (m Model) Inner() tea.Model { return m.inner }

// Err returns the last routing error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.inner.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ev, ok := m.event(msg); ok {
		m.route(ev)
		switch ev.Kind {
		case router.KindWindowCreated:
			m.created = true
		case router.KindWindowDestroyed:
			m.closed = true
		}
	}

	var cmd tea.Cmd
	m.inner, cmd = m.inner.Update(msg)
	m.pushTree()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	return m.inner.View()
}

// Close routes the window's destruction. Call it with the final model once
// Program.Run returns; it is a no-op if the window was already closed.
func (m Model) Close(ctx context.Context) error {
	if !m.created || m.closed {
		return nil
	}
	_, err := m.router.Route(ctx, router.Event{Window: m.window, Kind: router.KindWindowDestroyed})
	return err
}

func (m Model) event(msg tea.Msg) (router.Event, bool) {
	ev := router.Event{Window: m.window, Payload: msg}
	if m.closed {
		return ev, false
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.created {
			return ev, false
		}
		ev.Kind = router.KindWindowCreated
		ev.Handle = m.handle
	case tea.FocusMsg:
		ev.Kind = router.KindFocusGained
	case tea.BlurMsg:
		ev.Kind = router.KindFocusLost
	case WindowEventMsg:
		ev.Kind = router.Kind(msg.Event)
	case AccessibilityQueryMsg:
		ev.Kind = router.KindAccessibilityQuery
	case WindowClosedMsg:
		ev.Kind = router.KindWindowDestroyed
	default:
		return ev, false
	}
	if !m.created && ev.Kind != router.KindWindowCreated {
		return ev, false
	}
	return ev, true
}

func (m *Model) route(ev router.Event) {
	if _, err := m.router.Route(m.ctx, ev); err != nil {
		logger.Warnf(m.ctx, "unable to route %s: %v", ev, err)
		m.err = err
	}
}

func (m *Model) pushTree() {
	if !m.created || m.closed {
		return
	}
	provider, ok := m.inner.(TreeProvider)
	if !ok {
		return
	}
	a, err := m.router.Registry().Lookup(m.ctx, m.window)
	if err != nil {
		logger.Debugf(m.ctx, "no adapter for %s: %v", m.window, err)
		return
	}
	source := adapter.TreeSourceFunc(func(context.Context) model.TreeUpdate {
		return provider.AccessibilityTree()
	})
	if err := a.RequestUpdate(m.ctx, source); err != nil {
		logger.Warnf(m.ctx, "%s: %v", m.window, err)
		m.err = err
	}
}
