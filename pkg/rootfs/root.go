package rootfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrNotDirectory is returned when the configured root exists but is not a
// directory.
var ErrNotDirectory = errors.New("root is not a directory")

// Root is the directory every session operates under.
type Root struct {
	fs   afero.Fs
	path string
}

// Open makes dir absolute, creates it on fs when missing, and returns the
// Root for it.
func Open(fs afero.Fs, dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", dir, err)
	}

	info, err := fs.Stat(abs)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	case errors.Is(err, os.ErrNotExist):
		if err := fs.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create root %s: %w", abs, err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat root %s: %w", abs, err)
	}

	return &Root{fs: fs, path: abs}, nil
}

// Path returns the absolute root directory.
func (r *Root) Path() string {
	return r.path
}

// Fs returns the filesystem the root lives on.
func (r *Root) Fs() afero.Fs {
	return r.fs
}

// Resolve maps a client path under the root.
func (r *Root) Resolve(rel string) string {
	return Resolve(r.path, rel)
}

// Check reports whether the root is still an accessible directory.
func (r *Root) Check() error {
	info, err := r.fs.Stat(r.path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", r.path, ErrNotDirectory)
	}
	return nil
}
