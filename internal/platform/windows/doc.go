// Package windows maps accessibility tree changes to UI Automation events
// and control types.
package windows
