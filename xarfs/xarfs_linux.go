//go:build linux

package xarfs

import (
	"bufio"
	"os"

	"golang.org/x/sys/unix"
)

type linuxCapability struct{}

// New returns the Capability implementation for the running platform.
func New() Capability {
	return linuxCapability{}
}

func (linuxCapability) IsUserInGroup(gid uint32) (bool, error) {
	groups, err := unix.Getgroups()
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if uint32(g) == gid {
			return true, nil
		}
	}
	return false, nil
}

// CloseNonStdFds closes every fd above 2 by reading /proc/self/fd, the
// same source of truth the original Linux implementation uses.
func (linuxCapability) CloseNonStdFds() error {
	dir, err := os.Open("/proc/self/fd")
	if err != nil {
		return err
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return err
	}
	dirFd := int(dir.Fd())
	for _, name := range names {
		fd := atoiOrNeg1(name)
		if fd < 0 || fd == dirFd || fd <= 2 {
			continue
		}
		unix.Close(fd)
	}
	return nil
}

func atoiOrNeg1(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func (linuxCapability) IsSquashfsMounted(buf *unix.Statfs_t) bool {
	return int64(buf.Type) == fuseSuperMagic
}

func (linuxCapability) DefaultMountRoots() []string {
	return []string{"/mnt/xarfuse", "/dev/shm"}
}

func (linuxCapability) UnmountCmd(path string) []string {
	return []string{"/bin/fusermount", "-z", "-q", "-u", path}
}

func (linuxCapability) FuseAllowsVisibleMounts(confPath string) bool {
	f, err := os.Open(confPath)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() == "user_allow_other" {
			return true
		}
	}
	return false
}

func (linuxCapability) NoMountRootsHelp() string {
	return "Unable to find suitable 01777 mount root. Try: mkdir /mnt/xarfuse && chmod 01777 /mnt/xarfuse"
}
