// Package services contains the business logic between handlers and repositories
package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/viklib/backend/internal/models"
	"github.com/viklib/backend/internal/storage"
	"go.uber.org/zap"
)

// Upload carries one file from a multipart request into the service layer
type Upload struct {
	Filename    string
	ContentType string
	File        io.Reader
}

// BooksRepository is the interface that wraps methods for book record persistence
type BooksRepository interface {
	// Method Create validates the supplied fields and inserts a new record with
	// the given asset filenames; id and timestamps are assigned by the repository.
	Create(ctx context.Context, fields *models.BookFields, pdfFilename, coverFilename string) (*models.Book, error)
	// Method GetByID retrieves a book by id, returning models.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Book, error)
	// Method List retrieves books ordered newest-first; empty or "All" category
	// means unfiltered.
	List(ctx context.Context, category string) ([]models.Book, error)
	// Method Update merges the supplied fields into the stored record and
	// re-validates the result. Nil asset filenames leave the stored refs untouched.
	Update(ctx context.Context, id string, fields *models.BookFields, pdfFilename, coverFilename *string) (*models.Book, error)
	// Method Delete removes the record and returns it so asset refs can be
	// inspected after deletion.
	Delete(ctx context.Context, id string) (*models.Book, error)
	// Method DeleteMany removes the given records, skipping missing ids, and
	// returns the number actually deleted.
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// AssetStore is the interface that wraps methods for binary asset storage
type AssetStore interface {
	// Method Store validates the MIME type against the kind, writes the bytes
	// and returns the generated filename.
	Store(kind storage.AssetKind, originalFilename, mimeType string, r io.Reader) (string, error)
	// Method Remove deletes the asset if present; removing a missing ref is a no-op.
	Remove(kind storage.AssetKind, ref string) error
	// Method Open opens an asset for reading.
	Open(kind storage.AssetKind, ref string) (*os.File, error)
}

// BulkDeleteResult reports the outcome of a multi-book delete
type BulkDeleteResult struct {
	Deleted int64 `json:"deleted"`
	Errors  int   `json:"errors"`
}

// BookService keeps book records and their on-disk assets in agreement.
// Records never point at missing assets: new assets are stored before the
// record write, superseded assets are removed only after it succeeds, and a
// failed record write triggers compensating deletion of the just-stored files.
//
// There is no per-book locking. Two concurrent updates of the same id race and
// the last database write wins; each request's cleanup uses the asset refs it
// captured when it loaded the record.
type BookService struct {
	books  BooksRepository
	assets AssetStore
	logger *zap.Logger
}

// NewBookService creates a new book service
func NewBookService(books BooksRepository, assets AssetStore, logger *zap.Logger) *BookService {
	return &BookService{
		books:  books,
		assets: assets,
		logger: logger,
	}
}

// CreateBook validates input, stores the uploaded assets and persists the record.
// The PDF upload is required; the cover is optional. Nothing is written to disk
// or to the database when validation fails.
func (s *BookService) CreateBook(ctx context.Context, fields *models.BookFields, pdf, cover *Upload) (*models.Book, error) {
	// Fail fast before touching storage
	if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if fields.Author == nil || strings.TrimSpace(*fields.Author) == "" {
		return nil, fmt.Errorf("%w: author is required", models.ErrValidation)
	}
	if pdf == nil {
		return nil, fmt.Errorf("%w: PDF file is required", models.ErrMissingAsset)
	}

	pdfRef, err := s.assets.Store(storage.KindPDF, pdf.Filename, pdf.ContentType, pdf.File)
	if err != nil {
		return nil, err
	}

	var coverRef string
	if cover != nil {
		coverRef, err = s.assets.Store(storage.KindCover, cover.Filename, cover.ContentType, cover.File)
		if err != nil {
			s.removeAsset(storage.KindPDF, pdfRef)
			return nil, err
		}
	}

	book, err := s.books.Create(ctx, fields, pdfRef, coverRef)
	if err != nil {
		// Compensating deletion so a failed record write does not orphan files
		s.removeAsset(storage.KindPDF, pdfRef)
		s.removeAsset(storage.KindCover, coverRef)
		return nil, err
	}

	return book, nil
}

// UpdateBook merges the supplied fields and replaces assets when new uploads
// are provided. New assets are stored first and old ones removed only after
// the record update succeeds, so the record never references a missing file.
func (s *BookService) UpdateBook(ctx context.Context, id string, fields *models.BookFields, pdf, cover *Upload) (*models.Book, error) {
	existing, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newPDFRef, newCoverRef *string
	if pdf != nil {
		ref, err := s.assets.Store(storage.KindPDF, pdf.Filename, pdf.ContentType, pdf.File)
		if err != nil {
			return nil, err
		}
		newPDFRef = &ref
	}
	if cover != nil {
		ref, err := s.assets.Store(storage.KindCover, cover.Filename, cover.ContentType, cover.File)
		if err != nil {
			if newPDFRef != nil {
				s.removeAsset(storage.KindPDF, *newPDFRef)
			}
			return nil, err
		}
		newCoverRef = &ref
	}

	book, err := s.books.Update(ctx, id, fields, newPDFRef, newCoverRef)
	if err != nil {
		// The record still points at the old assets; discard the new ones
		if newPDFRef != nil {
			s.removeAsset(storage.KindPDF, *newPDFRef)
		}
		if newCoverRef != nil {
			s.removeAsset(storage.KindCover, *newCoverRef)
		}
		return nil, err
	}

	// Record write is durable, superseded assets can go
	if newPDFRef != nil && existing.PDFFilename != "" {
		s.removeAsset(storage.KindPDF, existing.PDFFilename)
	}
	if newCoverRef != nil && existing.CoverFilename != "" {
		s.removeAsset(storage.KindCover, existing.CoverFilename)
	}

	return book, nil
}

// DeleteBook removes the record and both of its assets
func (s *BookService) DeleteBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.removeBookAssets(book)
	return book, nil
}

// DeleteBooks removes records and assets for each id, best-effort: ids that do
// not exist are counted as errors and do not abort the remaining ids
func (s *BookService) DeleteBooks(ctx context.Context, ids []string) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no book ids provided", models.ErrValidation)
	}

	result := &BulkDeleteResult{}
	var found []string
	var records []*models.Book

	for _, id := range ids {
		book, err := s.books.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("skipping book in bulk delete", zap.String("id", id), zap.Error(err))
			result.Errors++
			continue
		}
		found = append(found, id)
		records = append(records, book)
	}

	deleted, err := s.books.DeleteMany(ctx, found)
	if err != nil {
		return nil, err
	}
	result.Deleted = deleted

	for _, book := range records {
		s.removeBookAssets(book)
	}

	return result, nil
}

// GetBook retrieves a single book by id
func (s *BookService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	return s.books.GetByID(ctx, id)
}

// ListBooks retrieves books, optionally filtered by category
func (s *BookService) ListBooks(ctx context.Context, category string) ([]models.Book, error) {
	return s.books.List(ctx, category)
}

// OpenAsset opens a stored asset for serving raw bytes
func (s *BookService) OpenAsset(kind storage.AssetKind, ref string) (*os.File, error) {
	return s.assets.Open(kind, ref)
}

// removeBookAssets removes both assets referenced by the record, if any
func (s *BookService) removeBookAssets(book *models.Book) {
	s.removeAsset(storage.KindPDF, book.PDFFilename)
	s.removeAsset(storage.KindCover, book.CoverFilename)
}

// removeAsset deletes one asset, logging failures instead of propagating them;
// a leftover file is a disk-space leak, not a correctness hazard
func (s *BookService) removeAsset(kind storage.AssetKind, ref string) {
	if ref == "" {
		return
	}
	if err := s.assets.Remove(kind, ref); err != nil {
		s.logger.Error("failed to remove asset",
			zap.String("kind", string(kind)),
			zap.String("ref", ref),
			zap.Error(err),
		)
	}
}
