package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viklib/backend/internal/models"
)

// memoryBooksRepository is an in-memory books repository with the same
// semantics as the MySQL implementation. It backs tests and keeps the
// service layer free of any storage-specific assumptions.
type memoryBooksRepository struct {
	mu    sync.RWMutex
	books map[string]models.Book
}

// NewMemoryBooksRepository creates an empty in-memory books repository
func NewMemoryBooksRepository() *memoryBooksRepository {
	return &memoryBooksRepository{
		books: make(map[string]models.Book),
	}
}

// Create validates the supplied fields, assigns id and timestamps and stores the record
func (r *memoryBooksRepository) Create(ctx context.Context, fields *models.BookFields, pdfFilename, coverFilename string) (*models.Book, error) {
	book := &models.Book{}
	if err := fields.Apply(book); err != nil {
		return nil, err
	}
	book.PDFFilename = pdfFilename
	book.CoverFilename = coverFilename
	if err := book.Validate(); err != nil {
		return nil, err
	}

	book.ID = uuid.New().String()
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[book.ID] = *book

	return book, nil
}

// GetByID retrieves a book by its id
func (r *memoryBooksRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", id, models.ErrNotFound)
	}
	return &book, nil
}

// List retrieves all books ordered newest-first, optionally filtered by category
func (r *memoryBooksRepository) List(ctx context.Context, category string) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category = strings.TrimSpace(category)
	filtered := category != "" && !strings.EqualFold(category, "All")

	var books []models.Book
	for _, book := range r.books {
		if filtered && string(book.Category) != category {
			continue
		}
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})

	return books, nil
}

// Update merges the supplied fields into the stored record, re-validates and stores it
func (r *memoryBooksRepository) Update(ctx context.Context, id string, fields *models.BookFields, pdfFilename, coverFilename *string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.books[id]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", id, models.ErrNotFound)
	}

	book := stored
	if err := fields.Apply(&book); err != nil {
		return nil, err
	}
	if pdfFilename != nil {
		book.PDFFilename = *pdfFilename
	}
	if coverFilename != nil {
		book.CoverFilename = *coverFilename
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	book.UpdatedAt = time.Now().UTC()

	r.books[id] = book
	return &book, nil
}

// Delete removes the record and returns it
func (r *memoryBooksRepository) Delete(ctx context.Context, id string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", id, models.ErrNotFound)
	}

	delete(r.books, id)
	return &book, nil
}

// DeleteMany removes the given records, skipping missing ids, and returns the
// number actually deleted
func (r *memoryBooksRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := r.books[id]; ok {
			delete(r.books, id)
			deleted++
		}
	}
	return deleted, nil
}
