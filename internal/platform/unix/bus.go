package unix

import (
	"os"
	"path/filepath"
)

// busAvailable reports whether an accessibility bus can be reached. AT-SPI
// rides on the session bus, so without one there is nobody to notify.
func busAvailable(getenv func(string) string) bool {
	if getenv("AT_SPI_BUS_ADDRESS") != "" || getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return true
	}
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "bus")); err == nil {
			return true
		}
	}
	return false
}
