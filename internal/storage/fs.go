package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/notehub/internal/models"
)

const tempPattern = ".notehub-tmp-*"

// FS implements Provider on a local directory.
type FS struct {
	root string
}

var _ Provider = (*FS)(nil)

// NewFS opens the inbox at root, which must be an existing directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// resolve maps a relative path into the root and rejects anything that
// would leave it.
func (f *FS) resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(f.root, abs)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// Pending lists the .md files directly in the root. Hidden files (editor
// swap files, our own temp files) and subdirectories are skipped: the
// subdirectories hold files that were already processed.
func (f *FS) Pending() ([]models.InboxFile, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}

	out := []models.InboxFile{}
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || path.Ext(name) != ".md" || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue // picked up by someone else meanwhile
		}
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", name, err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, name))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", name, err)
		}
		sum := sha256.Sum256(data)
		out = append(out, models.InboxFile{
			Path:     name,
			Checksum: hex.EncodeToString(sum[:]),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Path < out[j].Path
		}
		return out[i].ModTime.Before(out[j].ModTime)
	})
	return out, nil
}

// Read returns the raw bytes of a file.
func (f *FS) Read(rel string) ([]byte, error) {
	abs, err := f.resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// Write stores content through a synced temp file and a rename, so readers
// never see a partial file.
func (f *FS) Write(rel string, content []byte) error {
	abs, err := f.resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Archive moves rel into dir. When dir already holds a file of that name
// the moved file gets a numeric suffix: note.md, note-1.md, note-2.md...
func (f *FS) Archive(rel, dir string) (string, error) {
	src, err := f.resolve(rel)
	if err != nil {
		return "", err
	}
	dstDir, err := f.resolve(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}

	base := path.Base(rel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for i := 1; ; i++ {
		_, err := os.Lstat(filepath.Join(dstDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("storage: stat %s: %w", name, err)
		}
		name = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}

	if err := os.Rename(src, filepath.Join(dstDir, name)); err != nil {
		return "", fmt.Errorf("storage: archive %s: %w", rel, err)
	}
	return path.Join(dir, name), nil
}
