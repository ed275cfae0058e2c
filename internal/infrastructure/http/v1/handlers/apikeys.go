package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/auth"
	"almacen/internal/infrastructure/http/v1/dto"
)

// APIKeyHandler handles HTTP requests for API key management.
type APIKeyHandler struct {
	*BaseHandler
	service *auth.APIKeyService
}

// NewAPIKeyHandler creates a new API key handler.
func NewAPIKeyHandler(base *BaseHandler, service *auth.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{BaseHandler: base, service: service}
}

// Issue handles POST /api-keys. The plain key appears in this response
// and nowhere else.
func (h *APIKeyHandler) Issue(c *gin.Context) {
	var req dto.IssueKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	key, plain, err := h.service.Issue(c.Request.Context(), req.Name, req.Permissions)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromIssuedKey(key, plain))
}

// List handles GET /api-keys.
func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, keys)
}

// Revoke handles DELETE /api-keys/:id.
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	keyID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Revoke(c.Request.Context(), keyID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers API key routes.
func (h *APIKeyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Issue)
	rg.DELETE("/:id", h.Revoke)
}
