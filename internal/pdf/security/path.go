// Package security confines externally supplied paths to a root directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the guarded root
var ErrOutsideRoot = errors.New("path is outside configured directory")

// Guard resolves caller supplied paths against a root directory and rejects
// anything that lands outside it, following symlinks
type Guard struct {
	root string
}

// NewGuard creates a guard for root. The root need not exist yet.
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &Guard{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute guarded directory
func (g *Guard) Root() string {
	return g.root
}

// Resolve turns path into an absolute path inside the root. Relative paths
// are taken relative to the root; an empty path means the root itself.
func (g *Guard) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return g.root, nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	clean := filepath.Clean(path)

	within, err := g.Within(clean)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return clean, nil
}

// Within reports whether path, after symlink resolution, is the root or
// lies beneath it
func (g *Guard) Within(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	root := realPath(g.root)
	target := realPath(filepath.Clean(abs))

	return target == root || strings.HasPrefix(target, root+string(filepath.Separator)), nil
}

// realPath resolves symlinks on the longest existing prefix of p so that
// paths which do not exist yet are still compared against the real root
func realPath(p string) string {
	var missing []string
	for cur := p; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			parts := append([]string{resolved}, missing...)
			return filepath.Join(parts...)
		} else if !os.IsNotExist(err) {
			return p
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}
