// Command pamon-server streams telemetry from the RF power amplifier
// monitoring rig to TCP clients.
package main

import (
	"os"

	pamon "github.com/ke5gdb/pamon/src"
)

func main() {
	os.Exit(pamon.ServerMain(os.Args[1:]))
}
