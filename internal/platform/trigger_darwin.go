//go:build darwin

package platform

// Family is the OS family this binary was built for.
const Family = "darwin"

// ActivationTrigger: NSAccessibility asks the view for its children the
// first time an assistive client looks at the window.
const ActivationTrigger = TriggerAccessibilityQuery
