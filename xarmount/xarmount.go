// Package xarmount implements the mount-and-exec supervisor: given a
// parsed XAR header and the XAR's own path, it idempotently mounts the
// embedded squashfs image at a per-user, per-instance mountpoint and
// hands off to the bootstrap script inside it.
//
// Every failure in this package is fatal by design: the supervisor
// runs in a setuid-sensitive critical section, and a half-finished
// mountpoint is worse than a crash that leaves the lockfile and
// directory for the next invocation to clean up. Callers that want a
// recoverable error should not use this package from a long-running
// process; it is built for a short-lived launcher.
package xarmount

import (
	"fmt"
	"os"
	"runtime"

	"github.com/facebookincubator/xar/logger"
	"github.com/facebookincubator/xar/xarfs"
	"github.com/facebookincubator/xar/xarheader"
)

// Mode selects what the supervisor does once the mount is ready.
type Mode int

const (
	// Exec mounts if needed and execs the bootstrap script.
	Exec Mode = iota
	// MountOnly mounts if needed, prints the mountpoint, and returns.
	MountOnly
	// PrintOnly computes and prints the mountpoint without mounting.
	PrintOnly
)

// debugging gates verbose tracing of the final argv and target path,
// mirroring the original implementation's compile-time constant. Here
// it is a runtime toggle: set XAR_DEBUG in the environment.
var debugging = os.Getenv("XAR_DEBUG") != ""

func trace(format string, args ...interface{}) {
	if debugging {
		logger.Debugf(format, args...)
	}
}

// Fatalf writes one line to stderr in the form
// "FATAL <file>:<line>: <message>" and then panics with that message.
// The caller at the process boundary (cmd/xarexec_fuse's main) is
// expected to recover this panic and turn it into os.Exit(1) without
// leaking a Go stack trace to the user on the non-debug path.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "???", 0
	}
	fmt.Fprintf(os.Stderr, "FATAL %s:%d: %s\n", file, line, msg)
	panic(msg)
}

// Supervisor drives one mount-and-exec invocation.
type Supervisor struct {
	// Cap is the platform capability implementation. Tests inject a
	// fake; production code uses xarfs.New().
	Cap xarfs.Capability

	// XarPath is the filesystem path to the XAR file being launched.
	XarPath string

	// Header is the already-parsed header of XarPath.
	Header *xarheader.Header

	// Mode controls whether the supervisor execs, prints, or both.
	Mode Mode

	// ExtraArgs are the user-supplied arguments to forward to the
	// bootstrap script (argv[3:] in the original CLI).
	ExtraArgs []string
}

// New builds a Supervisor for the running platform.
func New(xarPath string, header *xarheader.Header, mode Mode, extraArgs []string) *Supervisor {
	return &Supervisor{
		Cap:       xarfs.New(),
		XarPath:   xarPath,
		Header:    header,
		Mode:      mode,
		ExtraArgs: extraArgs,
	}
}
