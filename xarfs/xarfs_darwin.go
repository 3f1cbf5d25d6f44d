//go:build darwin

package xarfs

import (
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

type darwinCapability struct{}

// New returns the Capability implementation for the running platform.
func New() Capability {
	return darwinCapability{}
}

func (darwinCapability) IsUserInGroup(gid uint32) (bool, error) {
	u, err := user.Current()
	if err != nil {
		return false, err
	}
	groups, err := u.GroupIds()
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		n, err := strconv.ParseUint(g, 10, 32)
		if err == nil && uint32(n) == gid {
			return true, nil
		}
	}
	return false, nil
}

// CloseNonStdFds closes every fd above 2. The original enumerates open
// vnode fds via proc_pidinfo(PROC_PIDLISTFDS, ...) and closes only
// those; that needs cgo, which nothing else in this tree uses, so this
// is a deliberate simplification: it walks the rlimit ceiling instead
// and closes blindly, relying on close(2) being a no-op on an fd that
// isn't open.
func (darwinCapability) CloseNonStdFds() error {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return err
	}
	max := int(rlimit.Cur)
	for fd := 3; fd < max; fd++ {
		unix.Close(fd)
	}
	return nil
}

func (darwinCapability) IsSquashfsMounted(buf *unix.Statfs_t) bool {
	name := fstypenameToString(buf.Fstypename[:])
	return name == "osxfuse" || name == "osxfusefs" || name == "macfuse"
}

func fstypenameToString(raw []int8) string {
	b := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}

func (darwinCapability) DefaultMountRoots() []string {
	return []string{"/System/Volumes/Data/mnt/xarfuse", "/mnt/xarfuse", "/dev/shm"}
}

func (darwinCapability) UnmountCmd(path string) []string {
	return []string{"/sbin/umount", path}
}

func (darwinCapability) FuseAllowsVisibleMounts(confPath string) bool {
	// macOS FUSE implementations do not honor /etc/fuse.conf.
	return false
}

func (darwinCapability) NoMountRootsHelp() string {
	return "Unable to find suitable 01777 mount root. Try: mkdir $DIR && chmod 01777 $DIR. " +
		"For DIR=/System/Volumes/Data/mnt/xarfuse on macOS 10.15+ or DIR=/mnt/xarfuse on earlier macOS."
}
