package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/closing"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/http/v1/dto"
)

// xlsxContentType is the MIME type for .xlsx downloads.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ClosingHandler handles HTTP requests for daily cash closings.
type ClosingHandler struct {
	*BaseHandler
	service *closing.Service
	reports *reports.Service
}

// NewClosingHandler creates a new closing handler.
func NewClosingHandler(base *BaseHandler, service *closing.Service, reportsSvc *reports.Service) *ClosingHandler {
	return &ClosingHandler{BaseHandler: base, service: service, reports: reportsSvc}
}

// Create handles POST /cash-closings.
func (h *ClosingHandler) Create(c *gin.Context) {
	var req dto.CreateClosingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req.ToCreateRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Preview handles GET /cash-closings/preview?date=2006-01-02. Computes the
// expected positions without persisting anything.
func (h *ClosingHandler) Preview(c *gin.Context) {
	date := time.Now()
	if parsed := h.ParseDateQuery(c, "date"); parsed != nil {
		date = *parsed
	}

	preview, err := h.service.Preview(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, preview)
}

// Get handles GET /cash-closings/:id.
func (h *ClosingHandler) Get(c *gin.Context) {
	closingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), closingID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// GetByDate handles GET /cash-closings/by-date/:date.
func (h *ClosingHandler) GetByDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		h.Error(c, apperror.NewValidation("date must be formatted as 2006-01-02"))
		return
	}

	doc, err := h.service.GetByDate(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /cash-closings.
func (h *ClosingHandler) List(c *gin.Context) {
	from := h.ParseDateQuery(c, "from")
	to := h.ParseDateQuery(c, "to")
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	items, err := h.service.List(c.Request.Context(), from, to, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items), limit, offset)
}

// Export handles GET /cash-closings/export. Streams the range as an XLSX
// workbook.
func (h *ClosingHandler) Export(c *gin.Context) {
	from := h.ParseDateQuery(c, "from")
	to := h.ParseDateQuery(c, "to")

	data, err := h.reports.ExportClosings(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("closings-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RegisterRoutes registers closing routes.
func (h *ClosingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/preview", h.Preview)
	rg.GET("/export", h.Export)
	rg.GET("/by-date/:date", h.GetByDate)
	rg.GET("/:id", h.Get)
}
