package xarmount

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/facebookincubator/xar/dirs"
)

// ValidateUUID enforces the supervisor-level defense-in-depth check the
// original launcher applies after parsing: the header's uuid field is
// free-form text as far as the parser is concerned, but the supervisor
// refuses to build a mount directory name out of anything but hex
// digits.
func ValidateUUID(uuid string) error {
	if uuid == "" {
		return errors.New("uuid must be non-empty")
	}
	for _, c := range uuid {
		if !isHexDigit(c) {
			return errors.New("uuid must only contain hex digits")
		}
	}
	return nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// mountSeed returns the value of XAR_MOUNT_SEED if it is set,
// non-empty, and contains no '/'.
func mountSeed() (string, bool) {
	seed := os.Getenv("XAR_MOUNT_SEED")
	if seed == "" || strings.Contains(seed, "/") {
		return "", false
	}
	return seed, true
}

// statIno stats path and returns its inode, or ok=false if the stat
// fails (the namespace/cgroup file does not exist on this platform or
// kernel).
func statIno(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Ino), true
}

// cgroupInode reads /proc/self/cgroup-style content and returns the
// inode of the third colon-delimited field's path, rooted under
// /sys/fs/cgroup or /cgroup2, if that path is statable.
func cgroupInode(cgroupFile string) (uint64, bool) {
	data, err := os.ReadFile(cgroupFile)
	if err != nil {
		return 0, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.SplitN(line, ":", 3)
		if len(fields) != 3 {
			continue
		}
		rel := fields[2]
		for _, root := range []string{dirs.Path("sys/fs/cgroup"), dirs.Path("cgroup2")} {
			if ino, ok := statIno(root + rel); ok {
				return ino, true
			}
		}
	}
	return 0, false
}

// mountDirectoryName derives the mount-directory component of the
// mountpoint path from the uuid, following the namespace/cgroup/seed
// disambiguation scheme: a user-specified seed and the pid-namespace
// inode are mutually exclusive, but both are additive to the
// mount-namespace inode suffix.
func mountDirectoryName(uuid string) string {
	name := uuid

	if seed, ok := mountSeed(); ok {
		name += "-seed-" + seed
	} else if ino, ok := statIno(dirs.Path("proc/self/ns/pid")); ok {
		name += "-seed-nspid" + strconv.FormatUint(ino, 10)
		if cgIno, ok := cgroupInode(dirs.Path("proc/self/cgroup")); ok {
			name += "_cgpid" + strconv.FormatUint(cgIno, 10)
		}
	}

	if ino, ok := statIno(dirs.Path("proc/self/ns/mnt")); ok {
		name += "-ns-" + strconv.FormatUint(ino, 10)
	}

	return name
}
