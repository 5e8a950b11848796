//go:build !linux

package watcher

// detectFilesystemType has no statfs-based classification on this platform.
func detectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
