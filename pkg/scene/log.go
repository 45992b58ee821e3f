package scene

import (
	"fmt"
	"os"
)

// logWarning reports a recoverable loader problem (a missing material file,
// a texture that failed to load) the same way the reference renderer's
// log_warning! macro does, so a fallback-to-defaults decision is visible
// instead of silent.
func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\n\x1b[38;5;226m[WARNING]\x1b[0m "+format, args...)
}
