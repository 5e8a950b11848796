//go:build linux

package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Filesystem magic numbers from statfs(2).
const (
	nfsSuperMagic  = 0x6969
	smbSuperMagic  = 0x517b
	cifsSuperMagic = 0xff534d42
	fuseSuperMagic = 0x65735546
)

// detectFilesystemType classifies the filesystem holding path via statfs.
// A missing file is classified by its parent directory.
func detectFilesystemType(path string) FilesystemType {
	var buf unix.Statfs_t
	err := unix.Statfs(path, &buf)
	if err != nil {
		err = unix.Statfs(filepath.Dir(path), &buf)
	}
	if err != nil {
		return FSTypeUnknown
	}
	switch uint32(buf.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, cifsSuperMagic:
		return FSTypeSMB
	case fuseSuperMagic:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
