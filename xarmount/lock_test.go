package xarmount

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"gopkg.in/check.v1"
)

type lockSuite struct{}

var _ = check.Suite(&lockSuite{})

func (s *lockSuite) TestGrabLockCreatesAndLocks(c *check.C) {
	oldUmask := unix.Umask(0022)
	defer unix.Umask(oldUmask)

	userBase := c.MkDir()
	sup := &Supervisor{Cap: &fakeCap{}}

	lock := sup.grabLock(userBase, "deadbeef")
	defer lock.Close()

	path := filepath.Join(userBase, "lockfile.deadbeef")
	c.Check(lock.Path(), check.Equals, path)

	st, err := os.Stat(path)
	c.Assert(err, check.IsNil)
	c.Check(st.Mode().Perm(), check.Equals, os.FileMode(lockMode))
}

func (s *lockSuite) TestGrabLockSanityChecksExistingFile(c *check.C) {
	oldUmask := unix.Umask(0022)
	defer unix.Umask(oldUmask)

	userBase := c.MkDir()
	path := filepath.Join(userBase, "lockfile.deadbeef")
	c.Assert(os.WriteFile(path, nil, 0644), check.IsNil)

	sup := &Supervisor{Cap: &fakeCap{}}
	rec := fatalPanic(func() {
		sup.grabLock(userBase, "deadbeef")
	})
	c.Check(rec, check.NotNil)
}
