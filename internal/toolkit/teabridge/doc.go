// Package teabridge treats a bubbletea program as a one-window toolkit and
// feeds its messages through the accessibility event router.
//
// Mapping:
//
//	first tea.WindowSizeMsg  -> window_created (with the terminal handle)
//	tea.FocusMsg / BlurMsg   -> focus_gained / focus_lost
//	WindowEventMsg           -> minimized / restored / ...
//	AccessibilityQueryMsg    -> accessibility_query
//	WindowClosedMsg, Close   -> window_destroyed
//
// Action requests from the backend come back into the program as
// ActionRequestMsg, so the inner model handles them on the loop goroutine.
package teabridge
