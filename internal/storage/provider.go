// Package storage defines the project file-system abstraction for ingot
// files.
package storage

import (
	"io"

	"github.com/starford/nibi/internal/models"
)

// Ext is the file extension of ingot documents.
const Ext = ".ingot"

// Provider is the interface for ingot file operations. Every path is
// relative to the ingots directory.
type Provider interface {
	// List returns metadata for every ingot file under dir.
	List(dir string) ([]models.IngotMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Open streams the file at path; the caller closes it.
	Open(path string) (io.ReadCloser, error)
	// Write atomically replaces the content of path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

// IsIngot reports whether name carries the ingot extension.
func IsIngot(name string) bool {
	return len(name) > len(Ext) && name[len(name)-len(Ext):] == Ext
}
