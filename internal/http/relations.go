package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/catalog"
)

// RelationsController serves the caller's own relation to a book. The
// relation is resolved from the authenticated user and the book in the URL,
// never from a relation id.
type RelationsController struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewRelationsController(service *catalog.Service, logger *slog.Logger) *RelationsController {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationsController{catalog: service, logger: logger}
}

// Update handles PUT and PATCH /api/book-relations/:book. Both apply only the
// keys present in the body.
func (rc *RelationsController) Update(c *gin.Context) {
	bookID, err := parseIDParam(c, "book")
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}

	var req RelationRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, rc.logger, err)
		return
	}
	if req.Book != nil && *req.Book != bookID {
		respondError(c, rc.logger, apperrors.Validation("book", "Must match the book in the URL."))
		return
	}

	patch, err := req.patch()
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}

	rel, err := rc.catalog.PatchRelation(c.Request.Context(), actorFrom(c), bookID, patch)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	c.JSON(http.StatusOK, newRelationResponse(rel))
}
