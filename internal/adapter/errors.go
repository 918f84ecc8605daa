package adapter

import "errors"

var (
	// ErrBackendConstruction wraps the reason a window's backend could not
	// be created. The adapter keeps running in degraded mode; the error is
	// logged and reported to the Observer, never returned to the caller.
	ErrBackendConstruction = errors.New("unable to construct the accessibility backend")

	// ErrUpdateDelivery wraps a backend's rejection of a tree update. The
	// adapter stays activated.
	ErrUpdateDelivery = errors.New("unable to deliver the tree update")

	// ErrAdapterDestroyed is returned for any use of a window after its
	// destroy event was processed.
	ErrAdapterDestroyed = errors.New("window adapter is destroyed")

	// ErrUnknownWindow is returned when an accessibility-relevant event names
	// a window the registry has never seen.
	ErrUnknownWindow = errors.New("unknown window")

	// ErrInvalidHandle is returned for a zero native handle.
	ErrInvalidHandle = errors.New("invalid native window handle")
)
