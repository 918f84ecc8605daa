// Package mirror implements the part of a platform backend that is the same
// on every OS family: it keeps a copy of the window's accessibility tree,
// turns tree changes into notifications and validates OS-originated action
// requests before passing them to the adapter. The OS-family packages supply
// a Translator with the native notification and role names.
package mirror
