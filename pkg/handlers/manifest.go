package handlers

import "github.com/schematic-dev/schematic/pkg/vfs"

// EnsureManifest stages an empty JSON object at the manifest path when the
// manifest exists neither in the overlay nor on disk. The manifest handlers
// call this before delegating to the manifest-merge modifier.
func EnsureManifest(fs *vfs.VFS, path string) error {
	if fs.FileExists(path) {
		return nil
	}
	return fs.CreateFile(path, "{}")
}
