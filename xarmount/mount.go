package xarmount

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/facebookincubator/xar/dirs"
)

const (
	squashfuseExecutable      = "squashfuse_ll"
	squashfuseDefaultTimeout  = 870
	squashfuseTimeoutOverride = "var/lib/xarexec_timeout_override"
	readinessPollInterval     = 100 * time.Microsecond
	readinessTimeout          = 9 * time.Second
)

// isSquashfuseMounted implements the is_squashfuse_mounted predicate of
// §4.2.5/§4.2.6. When tryFix is set and statfs reports ENOTCONN or
// ECONNABORTED, it runs the platform unmount command and reports the
// mount absent; any other statfs error is fatal.
func (s *Supervisor) isSquashfuseMounted(path string, tryFix bool) bool {
	var buf unix.Statfs_t
	err := unix.Statfs(path, &buf)
	if err != nil {
		if tryFix && (err == unix.ENOTCONN || err == unix.ECONNABORTED) {
			cmd := exec.Command(s.Cap.UnmountCmd(path)[0], s.Cap.UnmountCmd(path)[1:]...)
			if runErr := cmd.Run(); runErr != nil {
				Fatalf("unable to umount broken mount; try '%s' by hand: %s", strings.Join(s.Cap.UnmountCmd(path), " "), runErr)
			}
			return false
		}
		Fatalf("statfs failed for %s: %s", path, err)
	}
	return s.Cap.IsSquashfsMounted(&buf)
}

// squashfuseTimeout implements §4.2.7.
func squashfuseTimeout() uint64 {
	if env, ok := os.LookupEnv("XAR_MOUNT_TIMEOUT"); ok {
		n, _ := strconv.ParseUint(env, 10, 64)
		return n
	}

	data, err := os.ReadFile(dirs.Path(squashfuseTimeoutOverride))
	if err == nil {
		if n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64); err == nil {
			return n
		}
	}
	return squashfuseDefaultTimeout
}

// performMount implements §4.2.5's fork+exec of squashfuse_ll, modeled
// as exec.Cmd.Start/Wait: exec.Cmd's own fd handling (only Stdin,
// Stdout, Stderr, ExtraFiles are inherited) satisfies the "close every
// fd > 2" requirement without an explicit close loop in a forked child.
func (s *Supervisor) performMount(offset uint64, mountPath string) {
	opts := "-ooffset=" + strconv.FormatUint(offset, 10)
	if timeout := squashfuseTimeout(); timeout > 0 {
		opts += ",timeout=" + strconv.FormatUint(timeout, 10)
	}
	if s.Cap.FuseAllowsVisibleMounts(dirs.Path("etc/fuse.conf")) {
		opts += ",allow_root"
	}

	cmd := exec.Command(squashfuseExecutable, opts, s.XarPath, mountPath)
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		Fatalf("open /dev/null: %s", err)
	}
	defer devNull.Close()
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	trace("exec arg: %s %s %s %s", squashfuseExecutable, opts, s.XarPath, mountPath)

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ProcessState.Exited() {
				Fatalf("squashfuse_ll failed with exit status %d", exitErr.ExitCode())
			}
			Fatalf("squashfuse_ll failed with signal %s", exitErr.ProcessState.String())
		}
		Fatalf("Failed to exec squashfuse_ll: %s. Try installing squashfuse from "+
			"https://github.com/vasi/squashfuse/releases.", err)
	}
}

// waitForReadiness implements §4.2.6: poll every 100µs up to a hard
// 9-second deadline.
func (s *Supervisor) waitForReadiness(mountPath string) {
	start := time.Now()
	for !s.isSquashfuseMounted(mountPath, false) {
		if time.Since(start) > readinessTimeout {
			Fatalf("timed out waiting for squashfs mount")
		}
		time.Sleep(readinessPollInterval)
	}
}
