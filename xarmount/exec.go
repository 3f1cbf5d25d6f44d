package xarmount

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// openBootstrapFd opens execPath deliberately without O_CLOEXEC: the
// fd must survive through exec so that the kernel's shell-script
// interpretation, and any further exec the script itself performs,
// cannot race against an unmount of the mountpoint it lives under.
// Failure is not fatal here; the caller retries later.
func openBootstrapFd(execPath string) int {
	fd, err := unix.Open(execPath, unix.O_RDONLY, 0)
	if err != nil {
		return -1
	}
	// Open alone is enough on most platforms, but clear FD_CLOEXEC
	// explicitly in case the underlying open implementation sets it.
	_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETFD, 0)
	return fd
}

// execHandoff implements §4.2.8: build argv for the bootstrap script
// and replace the current process image with it. There is no return
// from a successful call.
func (s *Supervisor) execHandoff(execPath string, bootstrapFd int, newMount bool, savedUmask int) {
	if bootstrapFd == -1 {
		bootstrapFd = openBootstrapFd(execPath)
	}
	if bootstrapFd == -1 {
		Fatalf("Unable to open %s", execPath)
	}

	argv := make([]string, 0, len(s.ExtraArgs)+4)
	argv = append(argv, "/bin/sh", "-e", execPath, s.XarPath)
	argv = append(argv, s.ExtraArgs...)

	if debugging {
		for _, a := range argv {
			trace("  exec arg: %s", a)
		}
	}

	env := os.Environ()
	if newMount {
		env = append(env, "XARFUSE_NEW_MOUNT=1")
	}

	unix.Umask(savedUmask)

	if err := unix.Exec(argv[0], argv, env); err != nil {
		Fatalf("execv: %s cmd: %s", err, argv[0])
	}
}

func mountExecPath(mountPath, target string) string {
	return filepath.Join(mountPath, target)
}
