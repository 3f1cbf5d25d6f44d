package xarmount

import (
	"path/filepath"

	"github.com/facebookincubator/xar/osutil"
)

const lockMode = 0600

// grabLock implements §4.2.4: open-or-create the lockfile at mode 0600,
// sanity-check it, then acquire a blocking exclusive lock. The lock is
// never explicitly released; it is dropped on process exit or exec.
func (s *Supervisor) grabLock(userBase, mountDirectory string) *osutil.FileLock {
	path := filepath.Join(userBase, "lockfile."+mountDirectory)

	lock, err := osutil.NewFileLockWithMode(path, lockMode)
	if err != nil {
		Fatalf("can't open lockfile: %s", err)
	}

	s.checkFileSanity(path, kindFile, lockMode)

	if err := lock.Lock(); err != nil {
		Fatalf("can't flock lockfile: %s", err)
	}

	return lock
}
