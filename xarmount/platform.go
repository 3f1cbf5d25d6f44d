package xarmount

import "runtime"

// runtimeIsDarwin gates the handful of mkdir/chown sequences that need
// an explicit chown on macOS because mkdir inherits the enclosing
// directory's group rather than the caller's egid.
var runtimeIsDarwin = runtime.GOOS == "darwin"
