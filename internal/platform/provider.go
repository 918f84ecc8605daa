package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/mj1618/accessbridge/internal/model"
)

// ErrUnsupported is returned on platforms without a registered backend.
var ErrUnsupported = fmt.Errorf("accessbridge has no accessibility backend for %s/%s; supported: darwin, windows, linux and the BSDs", runtime.GOOS, runtime.GOARCH)

// ErrBackendUnavailable is returned by factories that cannot reach the
// native accessibility service (e.g. no AT-SPI bus).
var ErrBackendUnavailable = errors.New("accessibility service unavailable")

// NewFactoryFunc is set by the OS-family package via init().
// See internal/platform/unix/init.go for the Linux/BSD registration.
var NewFactoryFunc func(notifier Notifier) (Factory, error)

// NewFactory returns the backend factory compiled in for this OS family.
// Notifications raised by its backends go to notifier; a nil notifier logs
// them.
func NewFactory(notifier Notifier) (Factory, error) {
	if NewFactoryFunc == nil {
		return nil, ErrUnsupported
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return NewFactoryFunc(notifier)
}

// UnavailableFactory is a Factory whose construction always fails with err.
// Adapters using it run in degraded mode.
func UnavailableFactory(err error) Factory {
	return FactoryFunc(func(_ context.Context, _ NativeHandle, _ model.TreeUpdate, _ ActionSink) (Backend, error) {
		return nil, err
	})
}
