package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/router"
	"github.com/stretchr/testify/require"
)

func tree(value string) model.TreeUpdate {
	return model.TreeUpdate{
		Root:  1,
		Focus: 2,
		Nodes: []model.Node{
			{ID: 1, Role: "window", Name: "Counter", Children: []model.NodeID{2}},
			{ID: 2, Role: "btn", Name: "Increment", Value: value, Actions: []model.Action{model.ActionClick}},
		},
	}
}

func newSession(t *testing.T, trigger platform.Trigger) *Session {
	t.Helper()
	s, err := New(context.Background(), Options{Backend: BackendMirror, Trigger: trigger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSession_LazyActivation(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerAccessibilityQuery)

	require.NoError(t, s.Create(ctx, 1, 0x10))
	require.NoError(t, s.Update(ctx, 1, tree("0")))
	info, err := s.Window(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, string(adapter.StateHandleKnown), info.State)
	require.True(t, info.Pending)
	require.False(t, info.Backend)

	forward, err := s.Event(ctx, 1, router.KindAccessibilityQuery)
	require.NoError(t, err)
	require.True(t, forward)
	info, err = s.Window(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, string(adapter.StateActivated), info.State)
	require.EqualValues(t, 0x10, info.Handle)
	require.Empty(t, s.Notifications(ctx))

	require.NoError(t, s.Update(ctx, 1, tree("1")))
	events := s.Notifications(ctx)
	require.Len(t, events, 1)
	require.Equal(t, "value_changed", events[0].Name)
	require.Equal(t, "1", events[0].Text)

	nodes, err := s.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, "1", nodes[1].Value)
}

func TestSession_EagerActivation(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerWindowCreated)

	require.NoError(t, s.Create(ctx, 7, 0))
	require.NoError(t, s.Update(ctx, 7, tree("0")))
	info, err := s.Window(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, string(adapter.StateUninitialized), info.State)

	require.NoError(t, s.SetHandle(ctx, 7, 0x70))
	info, err = s.Window(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, string(adapter.StateActivated), info.State)
	require.False(t, info.Pending)
}

func TestSession_PerformAction(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerWindowCreated)

	require.NoError(t, s.Create(ctx, 1, 0x10))
	require.ErrorIs(t, s.PerformAction(ctx, 1, model.ActionRequest{Action: model.ActionClick, Target: 2}), ErrNoBackend)

	require.NoError(t, s.Update(ctx, 1, tree("0")))
	require.NoError(t, s.PerformAction(ctx, 1, model.ActionRequest{Action: model.ActionClick, Target: 2}))
	require.Error(t, s.PerformAction(ctx, 1, model.ActionRequest{Action: model.ActionExpand, Target: 2}))

	actions := s.Actions(ctx)
	require.Len(t, actions, 1)
	require.EqualValues(t, 1, actions[0].Window)
	require.Equal(t, model.NodeID(2), actions[0].Request.Target)
	require.Empty(t, s.Actions(ctx))
}

func TestSession_DestroyAndReuse(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerWindowCreated)

	require.NoError(t, s.Create(ctx, 1, 0x10))
	require.NoError(t, s.Create(ctx, 2, 0x20))
	require.Len(t, s.Windows(ctx), 2)

	require.NoError(t, s.Destroy(ctx, 1))
	windows := s.Windows(ctx)
	require.Len(t, windows, 1)
	require.EqualValues(t, 2, windows[0].ID)

	require.ErrorIs(t, s.Update(ctx, 1, tree("0")), adapter.ErrAdapterDestroyed)
	require.NoError(t, s.Create(ctx, 1, 0x11))
	require.Len(t, s.Windows(ctx), 2)
}

func TestSession_UnknownWindow(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerAccessibilityQuery)

	require.ErrorIs(t, s.Update(ctx, 9, tree("0")), adapter.ErrUnknownWindow)
	forward, err := s.Event(ctx, 9, router.KindFocusLost)
	require.NoError(t, err)
	require.True(t, forward)
	_, err = s.Event(ctx, 9, router.KindAccessibilityQuery)
	require.ErrorIs(t, err, adapter.ErrUnknownWindow)
	_, err = s.Event(ctx, 9, router.KindActionRequest)
	require.Error(t, err)
}

func TestSession_InvalidUpdate(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerWindowCreated)
	require.NoError(t, s.Create(ctx, 1, 0x10))

	bad := model.TreeUpdate{Root: 1, Nodes: []model.Node{{ID: 0, Role: "btn"}}}
	require.ErrorIs(t, s.Update(ctx, 1, bad), model.ErrInvalidUpdate)

	unknownRole := tree("0")
	unknownRole.Nodes[1].Role = "AXButton"
	require.ErrorIs(t, s.Update(ctx, 1, unknownRole), model.ErrInvalidUpdate)

	badLive := tree("0")
	badLive.Nodes[1].Live = "loud"
	require.ErrorIs(t, s.Update(ctx, 1, badLive), model.ErrInvalidUpdate)

	info, err := s.Window(ctx, 1)
	require.NoError(t, err)
	require.False(t, info.Pending)
	require.False(t, info.Backend)
}

func TestSession_UpdateNormalizesLive(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, platform.TriggerWindowCreated)
	require.NoError(t, s.Create(ctx, 1, 0x10))
	require.NoError(t, s.Update(ctx, 1, tree("0")))

	quiet := tree("1")
	quiet.Nodes[1].Live = "off"
	require.NoError(t, s.Update(ctx, 1, quiet))
	for _, n := range s.Notifications(ctx) {
		require.NotEqual(t, "announcement", n.Name)
	}

	snapshot, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snapshot.Nodes, 2)
	require.Equal(t, model.LiveOff, snapshot.Nodes[1].Live)
}

func TestTreeCache(t *testing.T) {
	c := newTreeCache(time.Minute)
	loads := 0
	load := func() ([]model.FlatNode, error) {
		loads++
		return []model.FlatNode{{ID: 1}}, nil
	}

	_, err := c.read(1, load)
	require.NoError(t, err)
	_, err = c.read(1, load)
	require.NoError(t, err)
	require.Equal(t, 1, loads)

	c.invalidate(1)
	_, err = c.read(1, load)
	require.NoError(t, err)
	require.Equal(t, 2, loads)

	c.invalidateAll()
	_, err = newTreeCache(0).read(1, load)
	require.NoError(t, err)
	require.Equal(t, 3, loads)
}

func TestNewFactory(t *testing.T) {
	ctx := context.Background()
	f, err := NewFactory(ctx, BackendMirror, platform.LogNotifier{})
	require.NoError(t, err)
	require.NotNil(t, f)

	_, err = NewFactory(ctx, "braille", platform.LogNotifier{})
	require.Error(t, err)
}

func TestSession_NativeFallsBackWithoutService(t *testing.T) {
	cases := []struct {
		name     string
		register func(platform.Notifier) (platform.Factory, error)
	}{
		{"unsupported OS", nil},
		{"factory error", func(platform.Notifier) (platform.Factory, error) {
			return nil, platform.ErrBackendUnavailable
		}},
		{"no accessibility bus", func(platform.Notifier) (platform.Factory, error) {
			return platform.UnavailableFactory(platform.ErrBackendUnavailable), nil
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			old := platform.NewFactoryFunc
			platform.NewFactoryFunc = tc.register
			t.Cleanup(func() { platform.NewFactoryFunc = old })

			ctx := context.Background()
			s, err := New(ctx, Options{Backend: BackendNative, Trigger: platform.TriggerWindowCreated})
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close(ctx) })

			require.NoError(t, s.Create(ctx, 1, 0x10))
			require.NoError(t, s.Update(ctx, 1, tree("0")))
			info, err := s.Window(ctx, 1)
			require.NoError(t, err)
			require.Equal(t, string(adapter.StateActivated), info.State)
			require.Empty(t, info.Degraded)

			require.NoError(t, s.PerformAction(ctx, 1, model.ActionRequest{Action: model.ActionClick, Target: 2}))
			require.Len(t, s.Actions(ctx), 1)
		})
	}
}

func TestNewFactory_NativeErrorsPropagate(t *testing.T) {
	old := platform.NewFactoryFunc
	boom := errors.New("bus handshake failed")
	platform.NewFactoryFunc = func(platform.Notifier) (platform.Factory, error) { return nil, boom }
	t.Cleanup(func() { platform.NewFactoryFunc = old })

	_, err := NewFactory(context.Background(), BackendNative, platform.LogNotifier{})
	require.ErrorIs(t, err, boom)
}
