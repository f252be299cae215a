// Package repositories provides data access for books, users and settings
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
)

// bookColumns is the column list shared by all book queries
const bookColumns = `id, title, author, isbn, category, description, published_year,
		pages, pdf_filename, cover_filename, rating, created_at, updated_at`

type booksRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBooksRepository creates a new MySQL-backed books repository
func NewBooksRepository(db *sql.DB, logger *zap.Logger) *booksRepository {
	return &booksRepository{
		db:     db,
		logger: logger,
	}
}

// scanBook reads one book row
func scanBook(row interface{ Scan(...any) error }) (*models.Book, error) {
	var book models.Book
	var isbn, description, pdfFilename, coverFilename sql.NullString
	var publishedYear, pages sql.NullInt64

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&isbn,
		&book.Category,
		&description,
		&publishedYear,
		&pages,
		&pdfFilename,
		&coverFilename,
		&book.Rating,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	book.ISBN = isbn.String
	book.Description = description.String
	book.PublishedYear = int(publishedYear.Int64)
	book.Pages = int(pages.Int64)
	book.PDFFilename = pdfFilename.String
	book.CoverFilename = coverFilename.String
	return &book, nil
}

// Create validates the supplied fields, assigns id and timestamps and inserts the record
func (r *booksRepository) Create(ctx context.Context, fields *models.BookFields, pdfFilename, coverFilename string) (*models.Book, error) {
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
	now := time.Now().UTC().Truncate(time.Second)
	book.CreatedAt = now
	book.UpdatedAt = now

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		nullString(book.ISBN),
		book.Category,
		nullString(book.Description),
		nullInt(book.PublishedYear),
		nullInt(book.Pages),
		nullString(book.PDFFilename),
		nullString(book.CoverFilename),
		book.Rating,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert book", zap.Error(err))
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

// GetByID retrieves a book by its id
func (r *booksRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ?`

	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to query book by id", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// List retrieves all books ordered newest-first, optionally filtered by category.
// An empty category or "All" means unfiltered.
func (r *booksRepository) List(ctx context.Context, category string) ([]models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books`
	var args []any

	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, "All") {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query books", zap.Error(err))
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			r.logger.Error("failed to scan book", zap.Error(err))
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating book rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return books, nil
}

// Update merges the supplied fields into the stored record, re-validates the
// result and persists it. Nil asset filenames leave the stored refs untouched.
// There is no per-id locking; concurrent updates on the same id race and the
// last write wins.
func (r *booksRepository) Update(ctx context.Context, id string, fields *models.BookFields, pdfFilename, coverFilename *string) (*models.Book, error) {
	book, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fields.Apply(book); err != nil {
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
	book.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		UPDATE books
		SET title = ?, author = ?, isbn = ?, category = ?, description = ?,
			published_year = ?, pages = ?, pdf_filename = ?, cover_filename = ?,
			rating = ?, updated_at = ?
		WHERE id = ?
	`

	_, err = r.db.ExecContext(ctx, query,
		book.Title,
		book.Author,
		nullString(book.ISBN),
		book.Category,
		nullString(book.Description),
		nullInt(book.PublishedYear),
		nullInt(book.Pages),
		nullString(book.PDFFilename),
		nullString(book.CoverFilename),
		book.Rating,
		book.UpdatedAt,
		book.ID,
	)
	if err != nil {
		r.logger.Error("failed to update book", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// Delete removes the record and returns it so the caller can inspect its
// asset refs before they are gone
func (r *booksRepository) Delete(ctx context.Context, id string) (*models.Book, error) {
	book, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete book", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("book %s: %w", id, models.ErrNotFound)
	}

	return book, nil
}

// DeleteMany removes the given records, skipping ids that do not exist,
// and returns the number actually deleted
func (r *booksRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(ids))
	placeholders = placeholders[:len(placeholders)-2]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		r.logger.Error("failed to delete books", zap.Error(err))
		return 0, fmt.Errorf("failed to delete books: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// nullString maps an empty string to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullInt maps a zero int to SQL NULL
func nullInt(i int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(i), Valid: i != 0}
}
