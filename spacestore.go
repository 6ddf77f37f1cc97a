package wikispace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

const pageExt = ".html"

// DefaultPageContent is the placeholder written into every newly created page.
const DefaultPageContent = "<p>Your content here</p>"

// SpaceStore keeps one directory per identity under a shared data root, with
// one <name>.html file per page holding raw HTML bytes. Page writes are not
// locked; two concurrent saves of the same page race and the last writer
// wins. That matches the storage contract this engine preserves.
type SpaceStore struct {
	root string
}

// NewSpaceStore creates the data root if absent.
func NewSpaceStore(root string) (*SpaceStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}
	return &SpaceStore{root: root}, nil
}

// Ensure creates the space directory for id if it does not exist. It is
// idempotent and safe to call on every reference; spaces deleted out-of-band
// are recreated empty.
func (s *SpaceStore) Ensure(id Identity) error {
	if err := os.MkdirAll(s.spaceDir(id), 0o755); err != nil {
		return fmt.Errorf("ensure space %s: %w", id.Name(), err)
	}
	return nil
}

// ListPages returns the page names in the space sorted case-insensitively.
// A missing or empty space yields an empty slice.
func (s *SpaceStore) ListPages(id Identity) ([]string, error) {
	if err := s.Ensure(id); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.spaceDir(id))
	if err != nil {
		return nil, fmt.Errorf("list space %s: %w", id.Name(), err)
	}
	pages := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), pageExt) {
			continue
		}
		pages = append(pages, strings.TrimSuffix(e.Name(), pageExt))
	}
	sort.Slice(pages, func(i, j int) bool {
		return strings.ToLower(pages[i]) < strings.ToLower(pages[j])
	})
	return pages, nil
}

// LoadPage returns the stored HTML for a page. A missing page is reported
// through the bool, not an error.
func (s *SpaceStore) LoadPage(id Identity, name string) (string, bool, error) {
	path, err := s.pagePath(id, name)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load page %s: %w", name, err)
	}
	return string(data), true, nil
}

// SavePage writes content wholesale, creating both the space directory and
// the page file as needed. Content is opaque; no validation, no size limit.
func (s *SpaceStore) SavePage(id Identity, name, content string) error {
	path, err := s.pagePath(id, name)
	if err != nil {
		return err
	}
	if err := s.Ensure(id); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("save page %s: %w", name, err)
	}
	return nil
}

// CreatePage writes the placeholder content for a brand-new page, failing
// with ErrDuplicatePage if the name is already taken in the space.
func (s *SpaceStore) CreatePage(id Identity, name string) error {
	path, err := s.pagePath(id, name)
	if err != nil {
		return err
	}
	if err := s.Ensure(id); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %q", ErrDuplicatePage, name)
	}
	if err != nil {
		return fmt.Errorf("create page %s: %w", name, err)
	}
	defer f.Close()
	if _, err := f.WriteString(DefaultPageContent); err != nil {
		return fmt.Errorf("create page %s: %w", name, err)
	}
	return nil
}

// DeletePage removes a page and reports whether it existed. Deleting a
// missing page is not an error.
func (s *SpaceStore) DeletePage(id Identity, name string) (bool, error) {
	path, err := s.pagePath(id, name)
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete page %s: %w", name, err)
	}
	return true, nil
}

// PageModTime returns the last modification time of a page file, with ok
// false when the page does not exist.
func (s *SpaceStore) PageModTime(id Identity, name string) (time.Time, bool, error) {
	path, err := s.pagePath(id, name)
	if err != nil {
		return time.Time{}, false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

// DeleteSpace recursively removes the entire space directory. Used when a
// user is removed from the registry; irreversible.
func (s *SpaceStore) DeleteSpace(id Identity) error {
	if err := os.RemoveAll(s.spaceDir(id)); err != nil {
		return fmt.Errorf("delete space %s: %w", id.Name(), err)
	}
	return nil
}

func (s *SpaceStore) spaceDir(id Identity) string {
	return filepath.Join(s.root, id.Name())
}

// pagePath validates name and returns the page file path. Space directories
// are siblings under one shared root, so a name must never carry path
// components that could escape into another space.
func (s *SpaceStore) pagePath(id Identity, name string) (string, error) {
	if err := ValidatePageName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.spaceDir(id), name+pageExt), nil
}

// ValidatePageName rejects names that are empty, contain whitespace or path
// separators, or could be interpreted as a traversal sequence.
func ValidatePageName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
