package models

import (
	"fmt"
	"strings"
	"time"
)

// Category represents a book category from the fixed set offered by the admin console
type Category string

// Category constants
const (
	CategoryReligious  Category = "Religious"
	CategoryPsychology Category = "Psychology"
	CategoryNovels     Category = "Novels"
	CategoryScience    Category = "Science"
	CategoryHistory    Category = "History"
	CategoryBiography  Category = "Biography"
	CategoryBusiness   Category = "Business"
)

// DefaultCategory is assigned when a book is created or updated without a category
const DefaultCategory = CategoryNovels

// Valid reports whether the category is one of the fixed set
func (c Category) Valid() bool {
	switch c {
	case CategoryReligious, CategoryPsychology, CategoryNovels, CategoryScience,
		CategoryHistory, CategoryBiography, CategoryBusiness:
		return true
	default:
		return false
	}
}

// Book represents a catalog entry together with its asset references
type Book struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Author        string    `json:"author" db:"author"`
	ISBN          string    `json:"isbn,omitempty" db:"isbn"`
	Category      Category  `json:"category" db:"category"`
	Description   string    `json:"description,omitempty" db:"description"`
	PublishedYear int       `json:"publishedYear,omitempty" db:"published_year"`
	Pages         int       `json:"pages,omitempty" db:"pages"`
	PDFFilename   string    `json:"pdfFilename,omitempty" db:"pdf_filename"`
	CoverFilename string    `json:"coverFilename,omitempty" db:"cover_filename"`
	Rating        float64   `json:"rating" db:"rating"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// BookFields carries the client-supplied fields of a book. Pointer fields
// distinguish "not supplied" from zero values so partial updates only touch
// what the request actually sent.
type BookFields struct {
	Title         *string
	Author        *string
	ISBN          *string
	Category      *string
	Description   *string
	PublishedYear *int
	Pages         *int
	Rating        *float64
}

// Apply merges the supplied fields into the book. Category is coerced to the
// default when supplied empty; an unknown category is a validation error.
func (f *BookFields) Apply(b *Book) error {
	if f.Title != nil {
		b.Title = strings.TrimSpace(*f.Title)
	}
	if f.Author != nil {
		b.Author = strings.TrimSpace(*f.Author)
	}
	if f.ISBN != nil {
		b.ISBN = strings.TrimSpace(*f.ISBN)
	}
	if f.Category != nil {
		category := Category(strings.TrimSpace(*f.Category))
		if category == "" {
			category = DefaultCategory
		}
		if !category.Valid() {
			return fmt.Errorf("%w: invalid category: %s", ErrValidation, category)
		}
		b.Category = category
	}
	if f.Description != nil {
		b.Description = strings.TrimSpace(*f.Description)
	}
	if f.PublishedYear != nil {
		b.PublishedYear = *f.PublishedYear
	}
	if f.Pages != nil {
		b.Pages = *f.Pages
	}
	if f.Rating != nil {
		b.Rating = *f.Rating
	}
	return nil
}

// Validate checks the invariants of a fully merged book record
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	if b.Category == "" {
		b.Category = DefaultCategory
	}
	if !b.Category.Valid() {
		return fmt.Errorf("%w: invalid category: %s", ErrValidation, b.Category)
	}
	if b.Pages < 0 {
		return fmt.Errorf("%w: pages must be positive", ErrValidation)
	}
	if b.Rating < 0 || b.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrValidation)
	}
	return nil
}
