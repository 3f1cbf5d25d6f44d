package xarmount

import (
	"os"
	"path/filepath"

	"gopkg.in/check.v1"

	"github.com/facebookincubator/xar/dirs"
)

type mountSuite struct{}

var _ = check.Suite(&mountSuite{})

func (s *mountSuite) TestSquashfuseTimeoutFromEnv(c *check.C) {
	os.Setenv("XAR_MOUNT_TIMEOUT", "30")
	defer os.Unsetenv("XAR_MOUNT_TIMEOUT")
	c.Check(squashfuseTimeout(), check.Equals, uint64(30))
}

func (s *mountSuite) TestSquashfuseTimeoutEmptyEnvIsZero(c *check.C) {
	os.Setenv("XAR_MOUNT_TIMEOUT", "")
	defer os.Unsetenv("XAR_MOUNT_TIMEOUT")
	c.Check(squashfuseTimeout(), check.Equals, uint64(0))
}

func (s *mountSuite) TestSquashfuseTimeoutFromOverrideFile(c *check.C) {
	os.Unsetenv("XAR_MOUNT_TIMEOUT")
	root := c.MkDir()
	dirs.SetRootDir(root)
	defer dirs.SetRootDir("/")

	overridePath := filepath.Join(root, squashfuseTimeoutOverride)
	c.Assert(os.MkdirAll(filepath.Dir(overridePath), 0755), check.IsNil)
	c.Assert(os.WriteFile(overridePath, []byte("42\n"), 0644), check.IsNil)

	c.Check(squashfuseTimeout(), check.Equals, uint64(42))
}

func (s *mountSuite) TestSquashfuseTimeoutDefault(c *check.C) {
	os.Unsetenv("XAR_MOUNT_TIMEOUT")
	root := c.MkDir()
	dirs.SetRootDir(root)
	defer dirs.SetRootDir("/")

	c.Check(squashfuseTimeout(), check.Equals, uint64(squashfuseDefaultTimeout))
}
