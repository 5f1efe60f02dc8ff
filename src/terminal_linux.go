package pamon

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsTerminal reports whether f refers to a terminal.
func IsTerminal(f *os.File) bool {
	var _, err = unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)

	return err == nil
}
