package app

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// Build metadata, set with -ldflags "-X github.com/agbru/lasercalc/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args ask for the version. Arguments after
// "--" are not inspected.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "--version", "-version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the build metadata to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "lasercalc %s\n", Version)
	fmt.Fprintf(w, "  commit:  %s\n", Commit)
	fmt.Fprintf(w, "  built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// programName strips the directory and extension from argv[0].
func programName(arg0 string) string {
	name := filepath.Base(arg0)
	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "lasercalc"
	}
	return name
}
