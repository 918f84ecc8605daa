//go:build !darwin && !windows && !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package platform

// Family is the OS family this binary was built for.
const Family = "other"

// ActivationTrigger falls back to first focus where no accessibility
// service is known.
const ActivationTrigger = TriggerFocusGained
