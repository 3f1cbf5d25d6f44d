package xarmount

import (
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/facebookincubator/xar/dirs"
)

const (
	stickyWorldWritable = 01777
	userBaseMode        = 0755
	mountpointMode      = 0755
)

// fileKind distinguishes the two sanity-check shapes the supervisor
// performs: a directory (mount root, user base, mountpoint) or a
// regular file (the lockfile).
type fileKind int

const (
	kindDirectory fileKind = iota
	kindFile
)

// checkFileSanity mirrors the original check_file_sanity: owner must
// be the effective uid, group must be the effective gid or one the
// caller belongs to, the file type must match, and the permission
// bits must match exactly. Any violation is fatal.
func (s *Supervisor) checkFileSanity(path string, kind fileKind, perm os.FileMode) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		Fatalf("stat %s: %s", path, err)
	}

	euid := uint32(unix.Geteuid())
	egid := uint32(unix.Getegid())

	if st.Uid != euid {
		Fatalf("invalid owner of %s", path)
	}
	if st.Gid != egid {
		inGroup, err := s.Cap.IsUserInGroup(st.Gid)
		if err != nil || !inGroup {
			Fatalf("invalid group of %s", path)
		}
	}

	switch kind {
	case kindDirectory:
		if st.Mode&unix.S_IFMT != unix.S_IFDIR {
			Fatalf("should be a directory: %s", path)
		}
	case kindFile:
		if st.Mode&unix.S_IFMT != unix.S_IFREG {
			Fatalf("should be a normal file: %s", path)
		}
	}

	if mode := os.FileMode(st.Mode & 07777); mode != perm {
		Fatalf("invalid permissions on %s, expected %#o, got %#o", path, perm, mode)
	}
}

// selectMountRoot implements §4.2.1: the header's MOUNT_ROOT wins
// outright; otherwise the first platform candidate whose mode is
// exactly 01777 is used. No qualifying candidate is fatal.
func (s *Supervisor) selectMountRoot() string {
	if s.Header.MountRoot != "" {
		s.requireStickyWorldWritable(s.Header.MountRoot)
		return s.Header.MountRoot
	}

	for _, candidate := range s.Cap.DefaultMountRoots() {
		var st unix.Stat_t
		if err := unix.Stat(dirs.Path(candidate), &st); err != nil {
			continue
		}
		if os.FileMode(st.Mode&07777) == stickyWorldWritable {
			return candidate
		}
	}

	Fatalf("%s", s.Cap.NoMountRootsHelp())
	panic("unreachable")
}

func (s *Supervisor) requireStickyWorldWritable(root string) {
	var st unix.Stat_t
	if err := unix.Stat(dirs.Path(root), &st); err != nil {
		Fatalf("failed to stat mount root %q: %s", root, err)
	}
	if os.FileMode(st.Mode&07777) != stickyWorldWritable {
		Fatalf("mount root %q permissions should be 01777", root)
	}
}

// userBaseDir implements §4.2.2: <root>/uid-<euid>, created best-effort
// with mode 0755, chowned on macOS to overcome inherited gid, then
// sanity-checked. root is the logical mount root returned by
// selectMountRoot; the returned path, and everything joined onto it by
// the caller (lockfile, mountpoint), is rooted under dirs.Path so tests
// can redirect the whole scan under a temporary directory.
func (s *Supervisor) userBaseDir(root string) string {
	base := dirs.Path(filepath.Join(root, "uid-"+strconv.Itoa(unix.Geteuid())))

	_ = unix.Mkdir(base, userBaseMode)
	if runtimeIsDarwin {
		_ = unix.Chown(base, unix.Geteuid(), unix.Getegid())
	}

	s.checkFileSanity(base, kindDirectory, userBaseMode)
	return base
}
