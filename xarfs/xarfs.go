// Package xarfs is the platform capability seam the mount supervisor
// depends on: group membership testing, fd sanitization, squashfs-mount
// detection, default mount root candidates, and the fuse.conf probe.
// Linux and macOS get distinct implementations (xarfs_linux.go,
// xarfs_darwin.go); callers only see this interface.
package xarfs

import "golang.org/x/sys/unix"

// Capability is the platform-specific behavior the mount supervisor
// needs. There are exactly two implementations: Linux and macOS.
type Capability interface {
	// IsUserInGroup reports whether the calling (effective) user
	// belongs to gid.
	IsUserInGroup(gid uint32) (bool, error)

	// CloseNonStdFds closes every open file descriptor above 2.
	CloseNonStdFds() error

	// IsSquashfsMounted reports whether buf describes a squashfuse
	// mount.
	IsSquashfsMounted(buf *unix.Statfs_t) bool

	// DefaultMountRoots returns, in preference order, the mount-root
	// candidates to probe when the XAR header does not specify one.
	DefaultMountRoots() []string

	// UnmountCmd returns the argv used to force-unmount a stale mount
	// (e.g. one where statfs reports ENOTCONN/ECONNABORTED).
	UnmountCmd(path string) []string

	// FuseAllowsVisibleMounts reports whether the host's fuse
	// configuration at confPath enables user_allow_other.
	FuseAllowsVisibleMounts(confPath string) bool

	// NoMountRootsHelp returns a remediation message to show the user
	// when no mount root candidate qualifies.
	NoMountRootsHelp() string
}

// squashfs mount types, by platform.
const (
	// fuseSuperMagic is Linux's FUSE_SUPER_MAGIC, the f_type value
	// statfs(2) reports for any FUSE-backed mount including squashfuse.
	fuseSuperMagic = 0x65735546
)
