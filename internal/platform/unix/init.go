//go:build linux || freebsd || openbsd || netbsd || dragonfly

package unix

import (
	"os"

	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
)

func init() {
	platform.NewFactoryFunc = func(notifier platform.Notifier) (platform.Factory, error) {
		if !busAvailable(os.Getenv) {
			return platform.UnavailableFactory(platform.ErrBackendUnavailable), nil
		}
		return mirror.NewFactory(Translator{}, notifier), nil
	}
}
