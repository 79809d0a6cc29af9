package handler

import (
	"context"

	appdocument "github.com/docflow/backend/internal/application/document"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles commercial document API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService   *appdocument.DocumentService
	conversionService *appdocument.ConversionService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *appdocument.DocumentService, conversionService *appdocument.ConversionService) *DocumentHandler {
	return &DocumentHandler{
		documentService:   documentService,
		conversionService: conversionService,
	}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("", h.Create)
		docs.GET("", h.List)
		docs.GET("/number/:number", h.GetByNumber)
		docs.GET("/:id", h.GetByID)
		docs.DELETE("/:id", h.Delete)

		docs.POST("/:id/lines", h.AddLine)
		docs.PUT("/:id/lines/:line_id", h.UpdateLine)
		docs.DELETE("/:id/lines/:line_id", h.RemoveLine)

		docs.POST("/:id/validate", h.Validate)
		docs.POST("/:id/send", h.Send)
		docs.POST("/:id/accept", h.Accept)
		docs.POST("/:id/reject", h.Reject)
		docs.POST("/:id/expire", h.Expire)
		docs.POST("/:id/confirm", h.Confirm)
		docs.POST("/:id/start-progress", h.StartProgress)
		docs.POST("/:id/deliver", h.Deliver)
		docs.POST("/:id/apply", h.Apply)
		docs.POST("/:id/cancel", h.Cancel)

		docs.POST("/:id/convert", h.Convert)
	}
}

// Create godoc
// @Summary      Create a commercial document
// @Description  Creates a draft document with an issued reference number
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body appdocument.CreateDocumentRequest true "Document creation request"
// @Success      201 {object} dto.Response{data=appdocument.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req appdocument.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// List godoc
// @Summary      List documents
// @Description  Paginated document list with type, status, customer and lineage filters
// @Tags         documents
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        type query string false "Document type" Enums(QUOTE, ORDER, INVOICE, CREDIT_NOTE)
// @Param        status query string false "Document status"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        parent_id query string false "Parent document ID" format(uuid)
// @Param        search query string false "Search term (number, customer name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]appdocument.DocumentListItemResponse,meta=dto.Meta}
// @Router       /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter appdocument.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, total, err := h.documentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID returns a single document by ID
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, docID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// GetByNumber returns a single document by its reference number
func (h *DocumentHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Document number is required")
		return
	}

	doc, err := h.documentService.GetByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete removes a draft document. Non-drafts are rejected; their numbers
// stay consumed either way.
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), tenantID, docID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddLine appends a line to a draft document
func (h *DocumentHandler) AddLine(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}

	var req appdocument.LineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.AddLine(c.Request.Context(), tenantID, docID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// UpdateLine replaces a line on a draft document
func (h *DocumentHandler) UpdateLine(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req appdocument.LineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.UpdateLine(c.Request.Context(), tenantID, docID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveLine deletes a line from a draft document
func (h *DocumentHandler) RemoveLine(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	doc, err := h.documentService.RemoveLine(c.Request.Context(), tenantID, docID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Validate moves a draft to VALIDATED and freezes its lines
func (h *DocumentHandler) Validate(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	doc, err := h.documentService.Validate(c.Request.Context(), tenantID, docID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Send marks a document as sent to the customer
func (h *DocumentHandler) Send(c *gin.Context) {
	h.transition(c, h.documentService.Send)
}

// Accept marks a quote as accepted
func (h *DocumentHandler) Accept(c *gin.Context) {
	h.transition(c, h.documentService.Accept)
}

// Reject marks a quote as rejected
func (h *DocumentHandler) Reject(c *gin.Context) {
	h.transition(c, h.documentService.Reject)
}

// Expire marks a quote as expired
func (h *DocumentHandler) Expire(c *gin.Context) {
	h.transition(c, h.documentService.Expire)
}

// Confirm confirms a validated order
func (h *DocumentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.documentService.Confirm)
}

// StartProgress marks a confirmed order as in progress
func (h *DocumentHandler) StartProgress(c *gin.Context) {
	h.transition(c, h.documentService.StartProgress)
}

// Apply applies a validated credit note
func (h *DocumentHandler) Apply(c *gin.Context) {
	h.transition(c, h.documentService.Apply)
}

// Deliver marks an order as delivered
func (h *DocumentHandler) Deliver(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}

	var req appdocument.DeliverDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Deliver(c.Request.Context(), tenantID, docID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Cancel cancels a document without deleting it
func (h *DocumentHandler) Cancel(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}

	var req appdocument.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Cancel(c.Request.Context(), tenantID, docID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Convert godoc
// @Summary      Convert a document
// @Description  Converts a document into the next type in the chain, returning both sides of the conversion
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Source document ID" format(uuid)
// @Param        request body appdocument.ConvertDocumentRequest true "Conversion request"
// @Success      201 {object} dto.Response{data=appdocument.ConversionResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{id}/convert [post]
func (h *DocumentHandler) Convert(c *gin.Context) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req appdocument.ConvertDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.conversionService.Convert(c.Request.Context(), tenantID, docID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// transition runs one of the bodyless status operations
func (h *DocumentHandler) transition(c *gin.Context, op func(ctx context.Context, tenantID, docID uuid.UUID) (*appdocument.DocumentResponse, error)) {
	tenantID, docID, ok := h.tenantAndDocument(c)
	if !ok {
		return
	}

	doc, err := op(c.Request.Context(), tenantID, docID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// tenantAndDocument extracts the tenant and document IDs, responding with 400
// on failure
func (h *DocumentHandler) tenantAndDocument(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, docID, true
}
