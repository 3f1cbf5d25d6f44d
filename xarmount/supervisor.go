package xarmount

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Run drives the full state machine described in §4.2.10:
// parsed → locked → (reused | newly_mounted) → ready → (printed | execed).
// Every transition failure is fatal; there is no rollback.
func (s *Supervisor) Run() {
	if err := ValidateUUID(s.Header.UUID); err != nil {
		Fatalf("%s", err)
	}
	if s.Mode == Exec && s.Header.XarexecTarget == "" {
		Fatalf("No XAREXEC_TARGET in XAR header of %s", s.XarPath)
	}

	root := s.selectMountRoot()
	userBase := s.userBaseDir(root)
	mountDirectory := mountDirectoryName(s.Header.UUID)
	mountPath := filepath.Join(userBase, mountDirectory)

	if s.Mode == PrintOnly {
		fmt.Println(mountPath)
		return
	}

	lock := s.grabLock(userBase, mountDirectory)

	if err := unix.Mkdir(mountPath, mountpointMode); err != nil && err != unix.EEXIST {
		Fatalf("mkdir failed: %s", err)
	}
	if runtimeIsDarwin {
		if err := unix.Chown(mountPath, unix.Geteuid(), unix.Getegid()); err != nil {
			Fatalf("chown %s: %s", mountPath, err)
		}
	}

	execPath := mountExecPath(mountPath, s.Header.XarexecTarget)
	trace("exec: %s as %d %d", execPath, unix.Getuid(), unix.Getgid())

	bootstrapFd := openBootstrapFd(execPath)

	newMount := false
	if !s.isSquashfuseMounted(mountPath, true) {
		if bootstrapFd != -1 {
			unix.Close(bootstrapFd)
			bootstrapFd = -1
		}
		s.checkFileSanity(mountPath, kindDirectory, mountpointMode)
		s.performMount(s.Header.Offset, mountPath)
		newMount = true
	}

	s.waitForReadiness(mountPath)

	if err := unix.Futimes(int(lock.File().Fd()), nil); err != nil {
		Fatalf("futimes on lockfile: %s", err)
	}

	if s.Mode == MountOnly {
		fmt.Println(mountPath)
		return
	}

	s.execHandoff(execPath, bootstrapFd, newMount, savedUmask)
}

// savedUmask is recorded at launcher entry (see cmd/xarexec_fuse) and
// restored right before the final exec.
var savedUmask int

// SetSavedUmask records the umask value the launcher imposed at entry,
// so it can be restored before exec.
func SetSavedUmask(old int) {
	savedUmask = old
}
