package wikispace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxUploadSize caps a single image upload.
const maxUploadSize = 10 << 20 // 10MB

// allowedImageExts is the extension whitelist for uploads, checked
// case-insensitively. Extension is the only gate; bytes are stored as-is.
var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ImageStore is one flat directory of uploaded images shared by every
// space. Uploads with the same sanitized filename overwrite each other no
// matter which space uploaded them, and nothing ever deletes an image.
// That shared-bucket model is part of the storage contract this engine
// preserves, not an accident to fix here.
type ImageStore struct {
	dir string
}

// NewImageStore creates the image directory if absent.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// SaveImage validates the extension, sanitizes the filename, and writes the
// bytes, overwriting any existing file of the same name. Returns the stored
// filename.
func (s *ImageStore) SaveImage(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("%w: %q", ErrDisallowedExtension, filename)
	}
	name := SanitizeFilename(filename)
	if name == "" || name == strings.TrimPrefix(ext, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, io.LimitReader(r, maxUploadSize)); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return name, nil
}

// Path returns the on-disk path for a stored image, or ErrImageNotFound.
func (s *ImageStore) Path(filename string) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, filename)
	}
	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrImageNotFound, filename)
	} else if err != nil {
		return "", err
	}
	return p, nil
}

// SanitizeFilename strips directory components and reduces the filename to
// characters safe for the filesystem. Anything outside [A-Za-z0-9._-] is
// replaced with an underscore; leading dots are dropped so the result can
// never be a hidden file or a traversal sequence.
func SanitizeFilename(filename string) string {
	// Take only the last path segment, handling both separators.
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}
