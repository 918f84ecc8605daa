package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/accessbridge/internal/model"
)

// WindowID identifies a top-level window for as long as it is open.
type WindowID uint64

func (id WindowID) String() string { return fmt.Sprintf("window-%d", uint64(id)) }

// TreeSource produces a tree snapshot on demand. Buffered snapshots are
// replaced, never merged, so a source used before activation must produce
// full trees (with Root set).
type TreeSource interface {
	Produce(ctx context.Context) model.TreeUpdate
}

// TreeSourceFunc adapts a function to the TreeSource interface.
type TreeSourceFunc func(ctx context.Context) model.TreeUpdate

// Produce implements TreeSource.
func (f TreeSourceFunc) Produce(ctx context.Context) model.TreeUpdate { return f(ctx) }

// StaticTree is a TreeSource that always produces the same update.
func StaticTree(u model.TreeUpdate) TreeSource {
	return TreeSourceFunc(func(context.Context) model.TreeUpdate { return u })
}

// ActionHandler receives action requests for one window. It may be called
// from any goroutine and must not call back into the adapter that invoked
// it.
type ActionHandler interface {
	Handle(ctx context.Context, req model.ActionRequest)
}

// ActionHandlerFunc adapts a function to the ActionHandler interface.
type ActionHandlerFunc func(ctx context.Context, req model.ActionRequest)

// Handle implements ActionHandler.
func (f ActionHandlerFunc) Handle(ctx context.Context, req model.ActionRequest) { f(ctx, req) }

// WindowActionHandler receives action requests for every window of a
// Registry.
type WindowActionHandler interface {
	HandleWindowAction(ctx context.Context, window WindowID, req model.ActionRequest)
}

// WindowActionHandlerFunc adapts a function to the WindowActionHandler
// interface.
type WindowActionHandlerFunc func(ctx context.Context, window WindowID, req model.ActionRequest)

// HandleWindowAction implements WindowActionHandler.
func (f WindowActionHandlerFunc) HandleWindowAction(ctx context.Context, window WindowID, req model.ActionRequest) {
	f(ctx, window, req)
}

// EntryKind classifies an adapter journal entry.
type EntryKind string

const (
	EntryCreated      EntryKind = "created"
	EntryHandle       EntryKind = "handle"
	EntryActivated    EntryKind = "activated"
	EntryDegraded     EntryKind = "degraded"
	EntryBuffered     EntryKind = "buffered"
	EntryUpdated      EntryKind = "updated"
	EntryUpdateFailed EntryKind = "update_failed"
	EntryEvent        EntryKind = "event"
	EntryAction       EntryKind = "action"
	EntryDestroyed    EntryKind = "destroyed"
)

// Entry describes something that happened to a window adapter.
type Entry struct {
	Window WindowID  `yaml:"window"           json:"window"`
	Kind   EntryKind `yaml:"kind"             json:"kind"`
	State  State     `yaml:"state"            json:"state"`
	Detail string    `yaml:"detail,omitempty" json:"detail,omitempty"`
	Time   time.Time `yaml:"time"             json:"time"`
}

// Observer is told about adapter lifecycle entries. It is called with the
// adapter's lock held, so it must return quickly and must not call back into
// the adapter.
type Observer interface {
	Observe(ctx context.Context, e Entry)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e Entry)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, e Entry) { f(ctx, e) }
