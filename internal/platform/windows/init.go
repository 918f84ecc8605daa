//go:build windows

package windows

import (
	"github.com/mj1618/accessbridge/internal/platform"
	"github.com/mj1618/accessbridge/internal/platform/mirror"
)

func init() {
	platform.NewFactoryFunc = func(notifier platform.Notifier) (platform.Factory, error) {
		return mirror.NewFactory(Translator{}, notifier), nil
	}
}
