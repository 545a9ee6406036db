package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/catalog"
)

type BooksController struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewBooksController(service *catalog.Service, logger *slog.Logger) *BooksController {
	if logger == nil {
		logger = slog.Default()
	}
	return &BooksController{
		catalog: service,
		logger:  logger,
	}
}

// List handles GET /api/books with the optional price, search and ordering
// query parameters.
func (controller *BooksController) List(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}

	books, err := controller.catalog.ListBooks(c.Request.Context(), query)
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponses(books))
}

func parseListQuery(c *gin.Context) (catalog.ListQuery, error) {
	q := catalog.ListQuery{
		Filter:   catalog.BookFilter{Search: c.Query("search")},
		Ordering: catalog.ParseOrdering(c.Query("ordering")),
	}
	if raw := c.Query("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return q, apperrors.Validation("price", "Enter a number.")
		}
		q.Filter.Price = &price
	}
	return q, nil
}

// Get handles GET /api/books/:id
func (controller *BooksController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}

	book, err := controller.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponse(book))
}

// Create handles POST /api/books. The caller becomes the owner.
func (controller *BooksController) Create(c *gin.Context) {
	var in catalog.BookInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, controller.logger, err)
		return
	}

	book, err := controller.catalog.CreateBook(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newBookResponse(book))
}

// Update handles PUT /api/books/:id
func (controller *BooksController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}

	var in catalog.BookInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, controller.logger, err)
		return
	}

	book, err := controller.catalog.UpdateBook(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponse(book))
}

// Patch handles PATCH /api/books/:id
func (controller *BooksController) Patch(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}

	var p catalog.BookPatch
	if err := bindJSON(c, &p); err != nil {
		respondError(c, controller.logger, err)
		return
	}

	book, err := controller.catalog.PatchBook(c.Request.Context(), actorFrom(c), id, p)
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponse(book))
}

// Delete handles DELETE /api/books/:id
func (controller *BooksController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, controller.logger, err)
		return
	}

	if err := controller.catalog.DeleteBook(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, controller.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
