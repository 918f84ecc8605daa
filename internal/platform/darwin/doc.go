// Package darwin maps accessibility tree changes to NSAccessibility
// notifications and AX roles. The backend is registered with the platform
// package only when building for macOS; the translation tables compile
// everywhere so they can be tested on any host.
package darwin
