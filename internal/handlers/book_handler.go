package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/viklib/backend/internal/models"
	"github.com/viklib/backend/internal/services"
	"github.com/viklib/backend/internal/storage"
	"go.uber.org/zap"
)

// maxUploadSize limits a single multipart book upload
const maxUploadSize = 50 << 20 // 50MB

// BookService is the interface that wraps the catalog operations used by the handler
type BookService interface {
	// Method CreateBook stores the uploads and persists a new record; the PDF
	// upload is required.
	CreateBook(ctx context.Context, fields *models.BookFields, pdf, cover *services.Upload) (*models.Book, error)
	// Method UpdateBook merges fields and replaces assets when new uploads are
	// supplied.
	UpdateBook(ctx context.Context, id string, fields *models.BookFields, pdf, cover *services.Upload) (*models.Book, error)
	// Method DeleteBook removes the record and both of its assets.
	DeleteBook(ctx context.Context, id string) (*models.Book, error)
	// Method DeleteBooks removes records best-effort and reports counts.
	DeleteBooks(ctx context.Context, ids []string) (*services.BulkDeleteResult, error)
	// Method GetBook retrieves a single book.
	GetBook(ctx context.Context, id string) (*models.Book, error)
	// Method ListBooks retrieves books, optionally filtered by category.
	ListBooks(ctx context.Context, category string) ([]models.Book, error)
	// Method OpenAsset opens a stored asset for serving raw bytes.
	OpenAsset(kind storage.AssetKind, ref string) (*os.File, error)
}

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	BaseHandler
	bookService BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		BaseHandler: BaseHandler{Logger: logger},
		bookService: bookService,
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; mutations
// require an authenticated admin.
func (h *BookHandler) RegisterRoutes(r chi.Router, authMw, adminMw func(http.Handler) http.Handler) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(adminMw)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/delete/multiple", h.DeleteMultiple)
		})
	})
}

// RegisterAssetRoutes registers the public raw-asset routes under /uploads
func (h *BookHandler) RegisterAssetRoutes(r chi.Router) {
	r.Get("/uploads/books/{filename}", h.ServeAsset(storage.KindPDF))
	r.Get("/uploads/covers/{filename}", h.ServeAsset(storage.KindCover))
}

// List handles GET /api/books
// @Summary List books
// @Description List all books newest-first, optionally filtered by category
// @Tags books
// @Produce json
// @Param category query string false "Category filter, 'All' or absent for no filter"
// @Success 200 {object} Envelope
// @Failure 500 {object} Envelope
// @Router /books [get]
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.ListBooks(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	if books == nil {
		books = []models.Book{}
	}
	h.RespondSuccess(w, http.StatusOK, "", books)
}

// Get handles GET /api/books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /books/{id} [get]
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookService.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", book)
}

// Create handles POST /api/books
// @Summary Upload a new book
// @Description Create a book record from multipart fields plus a required PDF and optional cover image
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param pdf formData file true "Book PDF"
// @Param cover formData file false "Cover image"
// @Security BearerAuth
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /books [post]
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, pdf, cover, err := h.parseMultipartBook(r)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	book, err := h.bookService.CreateBook(r.Context(), fields, pdf, cover)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "Book added successfully", book)
}

// Update handles PUT /api/books/{id}
// @Summary Update a book
// @Description Partially update book fields; new pdf/cover uploads replace the stored assets
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Book ID"
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /books/{id} [put]
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, pdf, cover, err := h.parseMultipartBook(r)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	book, err := h.bookService.UpdateBook(r.Context(), chi.URLParam(r, "id"), fields, pdf, cover)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Book updated successfully", book)
}

// Delete handles DELETE /api/books/{id}
// @Summary Delete a book
// @Description Delete a book record together with its stored PDF and cover
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookService.DeleteBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Book deleted successfully", book)
}

// deleteMultipleRequest is the body of POST /api/books/delete/multiple
type deleteMultipleRequest struct {
	IDs []string `json:"ids"`
}

// DeleteMultiple handles POST /api/books/delete/multiple
// @Summary Delete multiple books
// @Description Best-effort bulk delete; missing ids are skipped and counted as errors
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /books/delete/multiple [post]
func (h *BookHandler) DeleteMultiple(w http.ResponseWriter, r *http.Request) {
	var req deleteMultipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.bookService.DeleteBooks(r.Context(), req.IDs)
	if err != nil {
		h.RespondDomainError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Deleted %d book(s), %d error(s)", result.Deleted, result.Errors),
		"deleted": result.Deleted,
		"errors":  result.Errors,
	})
}

// ServeAsset returns a handler serving raw asset bytes for one kind.
// Assets are public, matching the record reads.
func (h *BookHandler) ServeAsset(kind storage.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")

		file, err := h.bookService.OpenAsset(kind, filename)
		if err != nil {
			if os.IsNotExist(err) {
				h.RespondError(w, http.StatusNotFound, "file not found")
				return
			}
			h.RespondDomainError(w, err)
			return
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			h.Logger.Error("failed to stat asset", zap.Error(err), zap.String("filename", filename))
			h.RespondError(w, http.StatusInternalServerError, "failed to read file")
			return
		}

		http.ServeContent(w, r, filename, info.ModTime(), file)
	}
}

// parseMultipartBook extracts book fields and the optional pdf/cover uploads
// from a multipart form. Only fields present in the form are set, so updates
// stay partial.
func (h *BookHandler) parseMultipartBook(r *http.Request) (*models.BookFields, *services.Upload, *services.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: failed to parse multipart form", models.ErrValidation)
	}

	fields := &models.BookFields{}
	form := r.MultipartForm

	if v, ok := formValue(form.Value, "title"); ok {
		fields.Title = &v
	}
	if v, ok := formValue(form.Value, "author"); ok {
		fields.Author = &v
	}
	if v, ok := formValue(form.Value, "isbn"); ok {
		fields.ISBN = &v
	}
	if v, ok := formValue(form.Value, "category"); ok {
		fields.Category = &v
	}
	if v, ok := formValue(form.Value, "description"); ok {
		fields.Description = &v
	}
	if v, ok := formValue(form.Value, "publishedYear"); ok && v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: invalid publishedYear: %s", models.ErrValidation, v)
		}
		fields.PublishedYear = &year
	}
	if v, ok := formValue(form.Value, "pages"); ok && v != "" {
		pages, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: invalid pages: %s", models.ErrValidation, v)
		}
		fields.Pages = &pages
	}
	if v, ok := formValue(form.Value, "rating"); ok && v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: invalid rating: %s", models.ErrValidation, v)
		}
		fields.Rating = &rating
	}

	pdf, err := formUpload(r, "pdf")
	if err != nil {
		return nil, nil, nil, err
	}
	cover, err := formUpload(r, "cover")
	if err != nil {
		return nil, nil, nil, err
	}

	return fields, pdf, cover, nil
}

// formValue reports whether the field was present in the form at all
func formValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// formUpload extracts one optional file from the form
func formUpload(r *http.Request, field string) (*services.Upload, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s file", models.ErrValidation, field)
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil
	}

	return &services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		File:        file,
	}, nil
}
