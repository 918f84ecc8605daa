//go:build windows

package platform

// Family is the OS family this binary was built for.
const Family = "windows"

// ActivationTrigger: UI Automation sends WM_GETOBJECT the first time a
// client requests the window's provider.
const ActivationTrigger = TriggerAccessibilityQuery
