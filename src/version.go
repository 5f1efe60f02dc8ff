package pamon

import (
	"fmt"
	"io"
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/ke5gdb/pamon/src.Version=X'"`
var Version string

func buildSetting(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}

	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

// PrintVersion writes the program version and the VCS revision it was
// built from.  verbose adds the Go toolchain and every module compiled in.
func PrintVersion(w io.Writer, program string, verbose bool) {
	var buildInfo, _ = debug.ReadBuildInfo()

	var (
		buildTime       = buildSetting(buildInfo, "vcs.time", "UNKNOWN")
		buildCommit     = buildSetting(buildInfo, "vcs.revision", "UNKNOWN")
		dirtyStr        = buildSetting(buildInfo, "vcs.modified", "INVALID")
		dirty, dirtyErr = strconv.ParseBool(dirtyStr)
	)

	if dirty {
		buildCommit += "-DIRTY"
	} else if dirtyErr != nil {
		buildCommit += "-UNKNOWNDIRTY"
	}

	var version = Version
	if version == "" {
		version = "!UNKNOWN!"
	}

	fmt.Fprintf(w, "%s - Version %s (revision %s, built at %s)\n", program, version, buildCommit, buildTime)

	if verbose {
		printModules(w, buildInfo)
	}
}

func printModules(w io.Writer, bi *debug.BuildInfo) {
	if bi == nil {
		fmt.Fprintf(w, "\nNo build information embedded.\n")
		return
	}

	fmt.Fprintf(w, "\nBuilt with %s from %s\n", bi.GoVersion, bi.Main.Path)

	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		fmt.Fprintf(w, "  %-50s %s\n", dep.Path, dep.Version)
	}
}
