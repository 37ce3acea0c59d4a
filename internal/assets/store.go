// Package assets removes stored auction images. Uploading is handled outside
// this service; auctions only carry the returned reference.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store deletes an asset by the reference saved on an auction
type Store interface {
	Delete(ref string) error
}

// LocalStore keeps assets below a root directory; a reference such as
// "/images/ruby.png" maps to <root>/images/ruby.png
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// Delete removes the file behind ref. Missing files and empty references are not errors.
func (s *LocalStore) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete asset %s: %w", ref, err)
	}
	return nil
}

func (s *LocalStore) resolve(ref string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimLeft(ref, "/"))
	path := filepath.Join(s.root, clean)
	root := filepath.Clean(s.root)
	if path == root {
		return "", fmt.Errorf("asset reference %q names the store root", ref)
	}
	if !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("asset reference %q escapes store root", ref)
	}
	return path, nil
}
