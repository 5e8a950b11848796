package watcher

// FilesystemType is a best-effort classification of the filesystem holding
// the watched path. Remote filesystems do not deliver reliable inotify
// events, so the watcher falls back to polling on them.
type FilesystemType string

const (
	// FSTypeUnknown means the filesystem could not be classified.
	FSTypeUnknown FilesystemType = "unknown"
	// FSTypeLocal is a local filesystem with working change notification.
	FSTypeLocal FilesystemType = "local"
	// FSTypeNFS is a Network File System mount.
	FSTypeNFS FilesystemType = "nfs"
	// FSTypeSMB is an SMB/CIFS mount.
	FSTypeSMB FilesystemType = "smb"
	// FSTypeFUSE is a FUSE-backed mount (sshfs, cloud sync clients).
	FSTypeFUSE FilesystemType = "fuse"
)

// detectFilesystemTypeFunc is swappable in tests.
var detectFilesystemTypeFunc = detectFilesystemType

// DetectFilesystemType classifies the filesystem holding path.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return detectFilesystemTypeFunc(path)
}

// isRemoteFilesystem reports whether change notification cannot be trusted
// for the given filesystem type.
func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeFUSE:
		return true
	default:
		return false
	}
}
