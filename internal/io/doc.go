// Package ioutils provides the file system operations the downloader needs.
//
// FS is the production implementation of the download package's
// Filesystem collaborator:
//
//	fs := ioutils.NewFS()
//
//	// Ensure the cache directory exists
//	err := fs.EnsureDir("/data/chmi")
//
//	// Presence is the only cache signal
//	if !fs.Exists("/data/chmi/T_PABV23_C_OKPR_20250107080000.hdf") {
//	    err = fs.WriteAtomic(path, body)
//	}
//
// # Atomic Writes
//
// WriteAtomic writes to a temporary file in the destination directory,
// syncs it and renames it over the final name, so a crash never leaves a
// truncated file that a later run would mistake for a finished download.
package ioutils
