package ingest

import (
	"os"
	"strconv"
	"syscall"
)

// FileIdentity is the device/inode pair used to recognize a renamed file
// across a rescan, independent of its path.
type FileIdentity struct {
	Device string
	Inode  string
}

// identityOf extracts the device/inode identity from a stat result, falling
// back to a zero identity on platforms or filesystems where the underlying
// Sys() value isn't a *syscall.Stat_t (network filesystems exposing a
// different type via FUSE, for instance).
func identityOf(info os.FileInfo) (FileIdentity, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileIdentity{}, false
	}
	return FileIdentity{
		Device: strconv.FormatUint(uint64(stat.Dev), 10),
		Inode:  strconv.FormatUint(stat.Ino, 10),
	}, true
}
