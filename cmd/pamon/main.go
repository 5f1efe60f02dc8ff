// Command pamon shows calibrated telemetry from the RF power amplifier
// monitoring rig on the console.
package main

import (
	"os"

	pamon "github.com/ke5gdb/pamon/src"
)

func main() {
	os.Exit(pamon.MonitorMain(os.Args[1:]))
}
