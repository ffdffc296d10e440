package types

import (
	"io/fs"
)

// FS is the filesystem interface required for skhdctl operations.
// Rename must be atomic when oldpath and newpath share a filesystem,
// which the persistence layer guarantees by staging temp files in the
// target's own directory.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	// WriteFileSync flushes data to stable storage before returning;
	// the persistence layer uses it for temp files ahead of a rename.
	WriteFileSync(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
}
