//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package pamon

import "os"

// IsTerminal is always false where termios is unavailable; use
// --clear=always to force clearing.
func IsTerminal(_ *os.File) bool {
	return false
}
