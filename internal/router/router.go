// Package router classifies windowing toolkit events and routes the
// accessibility-relevant ones to the adapter of their window.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/platform"
)

// Router sits between the windowing toolkit and the adapter registry.
type Router struct {
	registry *adapter.Registry
	trigger  platform.Trigger
}

// New returns a router over registry. A zero trigger selects the trigger
// compiled in for this OS family.
func New(registry *adapter.Registry, trigger platform.Trigger) *Router {
	if trigger == "" {
		trigger = platform.ActivationTrigger
	}
	return &Router{registry: registry, trigger: trigger}
}

// Registry returns the registry events are routed to.
func (r *Router) Registry() *adapter.Registry { return r.registry }

// Trigger returns the activation trigger the router classifies against.
func (r *Router) Trigger() platform.Trigger { return r.trigger }

// Classify returns the class of ev.
func (r *Router) Classify(ev Event) Class {
	if string(ev.Kind) == string(r.trigger) {
		return ClassActivation
	}
	switch ev.Kind {
	case KindWindowCreated, KindHandleAvailable, KindWindowDestroyed:
		return ClassLifecycle
	case KindFocusGained, KindFocusLost, KindMinimized, KindRestored, KindAccessibilityQuery:
		return ClassWindowState
	case KindActionRequest:
		return ClassAction
	default:
		return ClassIrrelevant
	}
}

// Route delivers ev to the adapter of its window. forward reports whether
// the embedding application should still see the event; only action
// requests are consumed.
func (r *Router) Route(ctx context.Context, ev Event) (forward bool, err error) {
	class := r.Classify(ev)
	logger.Tracef(ctx, "route %s: %s", ev, class)

	switch ev.Kind {
	case KindWindowCreated:
		if r.registry.Revive(ctx, ev.Window) {
			logger.Debugf(ctx, "%s: window id reused", ev.Window)
		}
		return true, r.attach(ctx, ev)

	case KindHandleAvailable:
		return true, r.attach(ctx, ev)

	case KindWindowDestroyed:
		return true, r.registry.Remove(ctx, ev.Window)

	case KindActionRequest:
		if ev.Action == nil {
			return false, fmt.Errorf("%s: action request without an action", ev.Window)
		}
		a, err := r.registry.Lookup(ctx, ev.Window)
		if err != nil {
			return false, err
		}
		if err := a.OnActionRequest(ctx, *ev.Action); err != nil {
			return false, fmt.Errorf("%s: %w", ev.Window, err)
		}
		return false, nil
	}

	wev, ok := ev.Kind.windowEvent()
	if !ok {
		return true, nil
	}
	a, err := r.registry.Lookup(ctx, ev.Window)
	if err != nil {
		if errors.Is(err, adapter.ErrUnknownWindow) && class != ClassActivation {
			logger.Tracef(ctx, "%s: ignoring %s for an untracked window", ev.Window, ev.Kind)
			return true, nil
		}
		return true, err
	}
	if err := a.ProcessEvent(ctx, wev); err != nil {
		return true, fmt.Errorf("%s: %w", ev.Window, err)
	}
	return true, nil
}

func (r *Router) attach(ctx context.Context, ev Event) error {
	a, err := r.registry.GetOrCreate(ctx, ev.Window)
	if err != nil {
		return err
	}
	if ev.Handle == 0 {
		if ev.Kind == KindHandleAvailable {
			return fmt.Errorf("%s: %w", ev.Window, adapter.ErrInvalidHandle)
		}
		return nil
	}
	if err := a.OnWindowCreated(ctx, ev.Handle); err != nil {
		return fmt.Errorf("%s: %w", ev.Window, err)
	}
	return nil
}
