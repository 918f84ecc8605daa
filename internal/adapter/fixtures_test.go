package adapter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/mj1618/accessbridge/internal/model"
	"github.com/mj1618/accessbridge/internal/platform"
)

const testHandle = platform.NativeHandle(0x1000)

func tree(name string) model.TreeUpdate {
	return model.TreeUpdate{
		Nodes: []model.Node{{ID: 1, Role: "window", Name: name}},
		Root:  1,
	}
}

func rootName(u model.TreeUpdate) string {
	if len(u.Nodes) == 0 {
		return ""
	}
	return u.Nodes[0].Name
}

type fakeBackend struct {
	handle  platform.NativeHandle
	initial model.TreeUpdate
	sink    platform.ActionSink

	mu          sync.Mutex
	updates     []model.TreeUpdate
	events      []platform.WindowEvent
	shutdowns   int
	updateErr   error
	shutdownErr error
	notifier    platform.Notifier
	log         *callLog
}

func (b *fakeBackend) Update(_ context.Context, u model.TreeUpdate) (platform.QueuedEvents, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateErr != nil {
		return platform.QueuedEvents{}, b.updateErr
	}
	b.updates = append(b.updates, u)
	return platform.NewQueuedEvents(b.notifier, []platform.Notification{{Window: b.handle, Name: "updated"}}), nil
}

func (b *fakeBackend) WindowEvent(_ context.Context, ev platform.WindowEvent) platform.QueuedEvents {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return platform.QueuedEvents{}
}

func (b *fakeBackend) Shutdown(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdowns++
	b.log.add("shutdown")
	return b.shutdownErr
}

func (b *fakeBackend) updateNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for _, u := range b.updates {
		names = append(names, rootName(u))
	}
	return names
}

func (b *fakeBackend) shutdownCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdowns
}

// fakeFactory counts constructions and keeps every backend it made.
type fakeFactory struct {
	constructed atomic.Int32
	err         error
	updateErr   error
	shutdownErr error
	notifier    platform.Notifier
	log         *callLog

	mu       sync.Mutex
	backends []*fakeBackend
}

func (f *fakeFactory) NewBackend(_ context.Context, handle platform.NativeHandle, initial model.TreeUpdate, sink platform.ActionSink) (platform.Backend, error) {
	f.constructed.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if handle == 0 {
		return nil, errors.New("backend constructed without a handle")
	}
	b := &fakeBackend{
		handle:      handle,
		initial:     initial,
		sink:        sink,
		updateErr:   f.updateErr,
		shutdownErr: f.shutdownErr,
		notifier:    f.notifier,
		log:         f.log,
	}
	f.mu.Lock()
	f.backends = append(f.backends, b)
	f.mu.Unlock()
	return b, nil
}

func (f *fakeFactory) last() *fakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.backends) == 0 {
		return nil
	}
	return f.backends[len(f.backends)-1]
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type entryLog struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *entryLog) Observe(_ context.Context, e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *entryLog) kinds() []EntryKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []EntryKind
	for _, e := range l.entries {
		out = append(out, e.Kind)
	}
	return out
}
