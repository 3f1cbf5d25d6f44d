package xarmount

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"gopkg.in/check.v1"
)

type execSuite struct{}

var _ = check.Suite(&execSuite{})

func (s *execSuite) TestOpenBootstrapFdClearsCloexec(c *check.C) {
	path := filepath.Join(c.MkDir(), "script.sh")
	c.Assert(os.WriteFile(path, []byte("#!/bin/sh\n"), 0755), check.IsNil)

	fd := openBootstrapFd(path)
	c.Assert(fd, check.Not(check.Equals), -1)
	defer unix.Close(fd)

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	c.Assert(err, check.IsNil)
	c.Check(flags&unix.FD_CLOEXEC, check.Equals, 0)
}

func (s *execSuite) TestOpenBootstrapFdMissingFile(c *check.C) {
	fd := openBootstrapFd(filepath.Join(c.MkDir(), "does-not-exist"))
	c.Check(fd, check.Equals, -1)
}

func (s *execSuite) TestExecHandoffFatalsWhenBootstrapUnopenable(c *check.C) {
	sup := &Supervisor{Cap: &fakeCap{}, XarPath: "/tmp/whatever.xar"}
	missing := filepath.Join(c.MkDir(), "does-not-exist")

	rec := fatalPanic(func() {
		sup.execHandoff(missing, -1, false, 0)
	})
	c.Check(rec, check.NotNil)
}

func (s *execSuite) TestMountExecPath(c *check.C) {
	c.Check(mountExecPath("/mnt/a/uid-0/x", "xar_bootstrap.sh"), check.Equals, "/mnt/a/uid-0/x/xar_bootstrap.sh")
}
