// Package unix maps accessibility tree changes to AT-SPI signals and roles
// for Linux and the BSDs.
package unix
