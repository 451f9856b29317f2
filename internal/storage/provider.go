// Package storage is the file system side of the Markdown import inbox.
package storage

import "github.com/starford/notehub/internal/models"

// Provider gives access to an inbox directory. Paths are slash-separated
// and relative to the inbox root.
type Provider interface {
	// Pending lists the .md files waiting directly in the root, oldest first.
	Pending() ([]models.InboxFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Archive moves path into dir without overwriting an earlier file of
	// the same name and returns the new path.
	Archive(path, dir string) (string, error)
}
