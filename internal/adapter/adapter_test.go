package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLazy(f *fakeFactory, opts ...func(*Options)) *Adapter {
	o := Options{Factory: f, Trigger: platform.TriggerAccessibilityQuery}
	for _, fn := range opts {
		fn(&o)
	}
	return New(1, o)
}

func TestAdapter_LazyActivationUsesBufferedSnapshot(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f)

	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.Equal(t, StateHandleKnown, a.State(ctx))
	require.False(t, a.HasBackend(ctx))
	require.True(t, a.HasPending(ctx))
	require.Zero(t, f.constructed.Load())

	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
	require.Equal(t, StateActivated, a.State(ctx))
	require.False(t, a.HasPending(ctx))
	require.EqualValues(t, 1, f.constructed.Load())
	require.Equal(t, "S", rootName(f.last().initial))
	require.Equal(t, testHandle, f.last().handle)
	require.Empty(t, f.last().updateNames())
}

func TestAdapter_BufferIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f)

	for _, name := range []string{"S1", "S2", "S3"} {
		require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree(name))))
	}
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S4"))))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))

	b := f.last()
	require.NotNil(t, b)
	require.Equal(t, "S4", rootName(b.initial))
	require.Empty(t, b.updateNames())
}

func TestAdapter_EagerDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := New(1, Options{
		Factory:     f,
		Trigger:     platform.TriggerWindowCreated,
		InitialTree: StaticTree(tree("S0")),
	})

	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.Equal(t, StateActivated, a.State(ctx))
	require.Equal(t, "S0", rootName(f.last().initial))

	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S1"))))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S2"))))
	require.Equal(t, []string{"S1", "S2"}, f.last().updateNames())
	require.EqualValues(t, 1, f.constructed.Load())
}

func TestAdapter_EagerWithoutTreeWaitsForFirstUpdate(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := New(1, Options{Factory: f, Trigger: platform.TriggerWindowCreated})

	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.Equal(t, StateHandleKnown, a.State(ctx))
	require.Zero(t, f.constructed.Load())

	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S1"))))
	require.Equal(t, StateActivated, a.State(ctx))
	require.Equal(t, "S1", rootName(f.last().initial))
	require.False(t, a.HasPending(ctx))
}

func TestAdapter_TriggerBeforeTreeIsRemembered(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f)

	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
	require.Equal(t, StateHandleKnown, a.State(ctx))

	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.Equal(t, StateActivated, a.State(ctx))
	require.Equal(t, "S", rootName(f.last().initial))
}

func TestAdapter_NoBackendWithoutHandle(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f, func(o *Options) { o.InitialTree = StaticTree(tree("init")) })

	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
	require.Equal(t, StateUninitialized, a.State(ctx))
	require.False(t, a.HasBackend(ctx))
	require.Zero(t, a.Handle(ctx))
	require.Zero(t, f.constructed.Load())

	// The query seen earlier activates the window once the handle arrives.
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.Equal(t, StateActivated, a.State(ctx))
	require.Equal(t, testHandle, a.Handle(ctx))
	require.Equal(t, "S", rootName(f.last().initial))
}

func TestAdapter_RepeatedTriggersConstructOnce(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f, func(o *Options) { o.InitialTree = StaticTree(tree("init")) })
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, f.constructed.Load())
	require.Equal(t, StateActivated, a.State(ctx))
	require.Len(t, f.last().events, 32)
}

func TestAdapter_NonTriggerEventsAbsorbedBeforeActivation(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f, func(o *Options) { o.InitialTree = StaticTree(tree("init")) })
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))

	for _, ev := range []platform.WindowEvent{platform.EventFocusGained, platform.EventMinimized, platform.EventRestored} {
		require.NoError(t, a.ProcessEvent(ctx, ev))
	}
	require.Zero(t, f.constructed.Load())

	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventFocusLost))
	require.Equal(t, []platform.WindowEvent{platform.EventAccessibilityQuery, platform.EventFocusLost}, f.last().events)
}

func TestAdapter_OnWindowCreated(t *testing.T) {
	ctx := context.Background()
	a := newLazy(&fakeFactory{})

	require.ErrorIs(t, a.OnWindowCreated(ctx, 0), ErrInvalidHandle)
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.OnWindowCreated(ctx, testHandle+1))
	require.Equal(t, testHandle, a.Handle(ctx))
}

func TestAdapter_ConstructionFailureDegrades(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{err: platform.ErrBackendUnavailable}
	a := New(1, Options{Factory: f, Trigger: platform.TriggerWindowCreated})

	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.Equal(t, StateDegraded, a.State(ctx))
	require.ErrorIs(t, a.DegradedCause(ctx), ErrBackendConstruction)
	require.ErrorIs(t, a.DegradedCause(ctx), platform.ErrBackendUnavailable)
	require.False(t, a.HasBackend(ctx))

	// Absorbed from now on.
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S2"))))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventFocusGained))
	delivered, err := a.UpdateIfActive(ctx, StaticTree(tree("S3")))
	require.NoError(t, err)
	require.False(t, delivered)
	require.EqualValues(t, 1, f.constructed.Load())
	require.False(t, a.HasPending(ctx))

	require.NoError(t, a.OnWindowDestroyed(ctx))
	require.Equal(t, StateDestroyed, a.State(ctx))
}

func TestAdapter_NilFactoryDegrades(t *testing.T) {
	ctx := context.Background()
	a := New(1, Options{Trigger: platform.TriggerWindowCreated, InitialTree: StaticTree(tree("S"))})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.Equal(t, StateDegraded, a.State(ctx))
}

func TestAdapter_UpdateDeliveryFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	f := &fakeFactory{updateErr: boom}
	a := New(1, Options{Factory: f, Trigger: platform.TriggerWindowCreated, InitialTree: StaticTree(tree("S0"))})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))

	err := a.RequestUpdate(ctx, StaticTree(tree("S1")))
	require.ErrorIs(t, err, ErrUpdateDelivery)
	require.ErrorIs(t, err, boom)
	require.Equal(t, StateActivated, a.State(ctx))

	b := f.last()
	b.mu.Lock()
	b.updateErr = nil
	b.mu.Unlock()
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S2"))))
	require.Equal(t, []string{"S2"}, b.updateNames())
}

func TestAdapter_UpdateIfActive(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f)
	produced := 0
	source := TreeSourceFunc(func(context.Context) model.TreeUpdate {
		produced++
		return tree("S")
	})

	delivered, err := a.UpdateIfActive(ctx, source)
	require.NoError(t, err)
	require.False(t, delivered)
	require.Zero(t, produced)
	require.False(t, a.HasPending(ctx))

	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, source))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))

	delivered, err = a.UpdateIfActive(ctx, source)
	require.NoError(t, err)
	require.True(t, delivered)
	require.Equal(t, 2, produced)

	require.NoError(t, a.OnWindowDestroyed(ctx))
	_, err = a.UpdateIfActive(ctx, source)
	require.ErrorIs(t, err, ErrAdapterDestroyed)
}

func TestAdapter_DestroyOnceAndNothingAfter(t *testing.T) {
	ctx := context.Background()
	log := &callLog{}
	f := &fakeFactory{log: log}
	a := New(1, Options{Factory: f, Trigger: platform.TriggerWindowCreated, InitialTree: StaticTree(tree("S0"))})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	b := f.last()

	require.NoError(t, a.OnWindowDestroyed(ctx))
	require.ErrorIs(t, a.OnWindowDestroyed(ctx), ErrAdapterDestroyed)
	require.Equal(t, 1, b.shutdownCount())

	require.ErrorIs(t, a.RequestUpdate(ctx, StaticTree(tree("S1"))), ErrAdapterDestroyed)
	require.ErrorIs(t, a.ProcessEvent(ctx, platform.EventFocusGained), ErrAdapterDestroyed)
	require.ErrorIs(t, a.OnWindowCreated(ctx, testHandle), ErrAdapterDestroyed)
	require.ErrorIs(t, a.OnActionRequest(ctx, model.ActionRequest{Action: model.ActionFocus, Target: 1}), ErrAdapterDestroyed)
	require.Equal(t, StateDestroyed, a.State(ctx))
	require.False(t, a.HasBackend(ctx))
	require.Zero(t, a.Handle(ctx))
	require.Empty(t, b.updateNames())
	require.Equal(t, []string{"shutdown"}, log.get())
}

func TestAdapter_DestroyDiscardsPendingSnapshot(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	a := newLazy(f)
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.True(t, a.HasPending(ctx))

	require.NoError(t, a.OnWindowDestroyed(ctx))
	require.False(t, a.HasPending(ctx))
	require.Zero(t, f.constructed.Load())
	require.ErrorIs(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery), ErrAdapterDestroyed)
	require.Zero(t, f.constructed.Load())
}

func TestAdapter_ShutdownErrorIsReported(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{shutdownErr: errors.New("stuck")}
	a := New(1, Options{Factory: f, Trigger: platform.TriggerWindowCreated, InitialTree: StaticTree(tree("S0"))})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.ErrorContains(t, a.OnWindowDestroyed(ctx), "stuck")
	require.Equal(t, StateDestroyed, a.State(ctx))
}

func TestAdapter_ActionForwardedOnce(t *testing.T) {
	ctx := context.Background()
	var got []model.ActionRequest
	a := New(1, Options{
		Factory:     &fakeFactory{},
		Trigger:     platform.TriggerWindowCreated,
		InitialTree: StaticTree(tree("S0")),
		Handler: ActionHandlerFunc(func(_ context.Context, req model.ActionRequest) {
			got = append(got, req)
		}),
	})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))

	req := model.ActionRequest{Action: model.ActionClick, Target: 1}
	require.NoError(t, a.OnActionRequest(ctx, req))
	require.Equal(t, []model.ActionRequest{req}, got)
}

func TestAdapter_ActionConcurrentWithUpdate(t *testing.T) {
	ctx := context.Background()
	f := &fakeFactory{}
	var (
		mu      sync.Mutex
		handled int
	)
	a := New(1, Options{
		Factory:     f,
		Trigger:     platform.TriggerWindowCreated,
		InitialTree: StaticTree(tree("S0")),
		Handler: ActionHandlerFunc(func(context.Context, model.ActionRequest) {
			mu.Lock()
			handled++
			mu.Unlock()
		}),
	})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	b := f.last()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			assert.NoError(t, b.sink.OnActionRequest(ctx, model.ActionRequest{Action: model.ActionFocus, Target: 1}))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			assert.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
		}
	}()
	wg.Wait()

	require.Equal(t, n, handled)
	require.Len(t, b.updateNames(), n)
	require.Equal(t, StateActivated, a.State(ctx))
}

func TestAdapter_DestroyWaitsForInFlightAction(t *testing.T) {
	ctx := context.Background()
	log := &callLog{}
	entered := make(chan struct{})
	release := make(chan struct{})
	f := &fakeFactory{log: log}
	a := New(1, Options{
		Factory:     f,
		Trigger:     platform.TriggerWindowCreated,
		InitialTree: StaticTree(tree("S0")),
		Handler: ActionHandlerFunc(func(context.Context, model.ActionRequest) {
			close(entered)
			<-release
			log.add("action")
		}),
	})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))

	actionDone := make(chan error, 1)
	go func() {
		actionDone <- a.OnActionRequest(ctx, model.ActionRequest{Action: model.ActionClick, Target: 1})
	}()
	<-entered

	destroyDone := make(chan error, 1)
	go func() {
		destroyDone <- a.OnWindowDestroyed(ctx)
	}()

	select {
	case <-destroyDone:
		t.Fatal("destroy finished while an action was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-actionDone)
	require.NoError(t, <-destroyDone)
	require.Equal(t, []string{"action", "shutdown"}, log.get())
}

func TestAdapter_NotificationsRaisedOutsideLock(t *testing.T) {
	ctx := context.Background()
	var a *Adapter
	var seen []State
	notifier := platform.NotifierFunc(func(ctx context.Context, _ platform.Notification) {
		// Would deadlock if raised with the adapter lock held.
		seen = append(seen, a.State(ctx))
	})
	a = New(1, Options{
		Factory:     &fakeFactory{notifier: notifier},
		Trigger:     platform.TriggerWindowCreated,
		InitialTree: StaticTree(tree("S0")),
	})
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S1"))))
	require.Equal(t, []State{StateActivated}, seen)
}

func TestAdapter_ObserverEntries(t *testing.T) {
	ctx := context.Background()
	entries := &entryLog{}
	a := newLazy(&fakeFactory{}, func(o *Options) { o.Observer = entries })

	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S2"))))
	require.NoError(t, a.OnWindowDestroyed(ctx))

	require.Equal(t, []EntryKind{
		EntryBuffered,
		EntryHandle,
		EntryEvent,
		EntryActivated,
		EntryUpdated,
		EntryDestroyed,
	}, entries.kinds())
	for _, e := range entries.entries {
		require.Equal(t, WindowID(1), e.Window)
	}
}

func TestAdapter_ActionEntryCarriesState(t *testing.T) {
	ctx := context.Background()
	entries := &entryLog{}
	a := newLazy(&fakeFactory{}, func(o *Options) {
		o.Observer = entries
		o.Handler = ActionHandlerFunc(func(context.Context, model.ActionRequest) {})
	})
	req := model.ActionRequest{Action: model.ActionFocus, Target: 1}

	require.NoError(t, a.OnActionRequest(ctx, req))
	require.NoError(t, a.OnWindowCreated(ctx, testHandle))
	require.NoError(t, a.RequestUpdate(ctx, StaticTree(tree("S"))))
	require.NoError(t, a.ProcessEvent(ctx, platform.EventAccessibilityQuery))
	require.NoError(t, a.OnActionRequest(ctx, req))

	var states []State
	for _, e := range entries.entries {
		if e.Kind == EntryAction {
			states = append(states, e.State)
		}
	}
	require.Equal(t, []State{StateUninitialized, StateActivated}, states)
}

func TestAdapter_DefaultTrigger(t *testing.T) {
	require.Equal(t, platform.ActivationTrigger, New(1, Options{}).Trigger())
}

func TestParseState(t *testing.T) {
	st, err := ParseState("Handle-Known")
	require.NoError(t, err)
	require.Equal(t, StateHandleKnown, st)
	_, err = ParseState("zombie")
	require.Error(t, err)
}
