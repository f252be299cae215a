// Package storage manages on-disk placement and removal of uploaded book assets
package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AssetKind identifies the two kinds of stored assets
type AssetKind string

// AssetKind constants
const (
	KindPDF   AssetKind = "pdf"
	KindCover AssetKind = "cover"
)

// Errors returned by the store
var (
	// ErrInvalidMimeType indicates the uploaded file's MIME type does not match the asset kind
	ErrInvalidMimeType = errors.New("invalid mime type")

	// ErrInvalidRef indicates a ref that is not a bare filename
	ErrInvalidRef = errors.New("invalid asset ref")

	// ErrUnknownKind indicates an asset kind outside pdf/cover
	ErrUnknownKind = errors.New("unknown asset kind")
)

// Directory names per asset kind, public under /uploads/
const (
	pdfDir   = "books"
	coverDir = "covers"
)

// localStore places assets on the local filesystem under basePath
type localStore struct {
	basePath string
}

// NewLocalStore creates a local asset store rooted at basePath and ensures
// the per-kind directories exist
func NewLocalStore(basePath string) (*localStore, error) {
	for _, dir := range []string{pdfDir, coverDir} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
		}
	}
	return &localStore{basePath: basePath}, nil
}

// kindDir maps an asset kind to its directory name
func kindDir(kind AssetKind) (string, error) {
	switch kind {
	case KindPDF:
		return pdfDir, nil
	case KindCover:
		return coverDir, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// validateMime checks the MIME type against the asset kind:
// pdf requires exactly application/pdf, cover accepts any image/* type
func validateMime(kind AssetKind, mimeType string) error {
	switch kind {
	case KindPDF:
		if mimeType != "application/pdf" {
			return fmt.Errorf("%w: only PDF files are allowed, got %s", ErrInvalidMimeType, mimeType)
		}
	case KindCover:
		if !strings.HasPrefix(mimeType, "image/") {
			return fmt.Errorf("%w: only image files are allowed, got %s", ErrInvalidMimeType, mimeType)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return nil
}

// generateName builds a collision-resistant filename from the current time,
// a random suffix and the original extension
func generateName(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

// checkRef rejects refs that are not bare filenames so a crafted ref cannot
// escape the per-kind directory
func checkRef(ref string) error {
	if ref == "" || ref != filepath.Base(ref) || strings.Contains(ref, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return nil
}

// Store validates the MIME type, writes the bytes under the per-kind directory
// and returns the generated filename. Existing files are never overwritten.
func (s *localStore) Store(kind AssetKind, originalFilename, mimeType string, r io.Reader) (string, error) {
	if err := validateMime(kind, mimeType); err != nil {
		return "", err
	}

	dir, err := kindDir(kind)
	if err != nil {
		return "", err
	}

	ref := generateName(originalFilename)
	path := filepath.Join(s.basePath, dir, ref)

	// O_EXCL guards against the unlikely case of a name collision
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write asset file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close asset file: %w", err)
	}

	return ref, nil
}

// Remove deletes the asset if present. Removing a missing ref is a no-op.
func (s *localStore) Remove(kind AssetKind, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}

	dir, err := kindDir(kind)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.basePath, dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset file: %w", err)
	}
	return nil
}

// Open opens an asset for reading, for use with http.ServeContent
func (s *localStore) Open(kind AssetKind, ref string) (*os.File, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}

	dir, err := kindDir(kind)
	if err != nil {
		return nil, err
	}

	return os.Open(filepath.Join(s.basePath, dir, ref))
}
