package handler

import (
	appdocument "github.com/docflow/backend/internal/application/document"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles invoice payment reconciliation endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *appdocument.PaymentService
	overdueService *appdocument.OverdueService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appdocument.PaymentService, overdueService *appdocument.OverdueService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		overdueService: overdueService,
	}
}

// RegisterRoutes registers payment routes on the given group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/payments", h.ApplyPayment)
	rg.POST("/invoices/overdue-sweep", h.RunOverdueSweep)
}

// ApplyPayment godoc
// @Summary      Record a payment on an invoice
// @Description  Appends a payment and derives the resulting status (PARTIAL or PAID)
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body appdocument.ApplyPaymentRequest true "Payment request"
// @Success      200 {object} dto.Response{data=appdocument.DocumentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{id}/payments [post]
func (h *PaymentHandler) ApplyPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req appdocument.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.paymentService.ApplyPayment(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// OverdueSweepResponse reports the outcome of an overdue sweep
type OverdueSweepResponse struct {
	Marked int `json:"marked"`
}

// RunOverdueSweep marks unpaid invoices past their due date as OVERDUE.
// The sweep is operator-triggered; the engine never flips status on a timer.
func (h *PaymentHandler) RunOverdueSweep(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	marked, err := h.overdueService.MarkOverdueInvoices(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, OverdueSweepResponse{Marked: marked})
}
