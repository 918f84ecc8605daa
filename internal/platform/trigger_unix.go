//go:build linux || freebsd || openbsd || netbsd || dragonfly

package platform

// Family is the OS family this binary was built for.
const Family = "unix"

// ActivationTrigger: AT-SPI has no per-window query, the application
// registers its tree with the bus as soon as the window exists.
const ActivationTrigger = TriggerWindowCreated
