package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	paymentapp "github.com/govindji/backoffice/internal/application/payment"
)

// IdempotencyKeyHeader carries the client-chosen submission key for
// payment recording. Repeated submissions with the same key return
// the originally recorded payment instead of creating a duplicate.
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles party payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Record godoc
// @Summary      Record a payment
// @Description  Record a payment or adjustment against a vendor party
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        Idempotency-Key header string false "Submission key for duplicate protection"
// @Param        request body paymentapp.RecordPaymentRequest true "Payment recording request"
// @Success      201 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req paymentapp.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	if userID, err := getUserID(c); err == nil && userID != uuid.Nil {
		req.CreatedBy = &userID
	}

	payment, err := h.paymentService.Record(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID godoc
// @Summary      Get payment by ID
// @Description  Retrieve a payment by its ID
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// GetByPaymentNumber godoc
// @Summary      Get payment by payment number
// @Description  Retrieve a payment by its human-readable payment number
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        payment_number path string true "Payment number" example:"PAY-2026-00001"
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/number/{payment_number} [get]
func (h *PaymentHandler) GetByPaymentNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentNumber := c.Param("payment_number")
	if paymentNumber == "" {
		h.BadRequest(c, "Payment number is required")
		return
	}

	payment, err := h.paymentService.GetByPaymentNumber(c.Request.Context(), tenantID, paymentNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @Summary      List payments
// @Description  Retrieve a paginated list of payments with optional filtering
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        party_id query string false "Party ID" format(uuid)
// @Param        type query string false "Payment type" Enums(PAYMENT, ADJUSTMENT)
// @Param        method query string false "Payment method" Enums(CASH, BANK_TRANSFER, UPI, CHEQUE)
// @Param        status query string false "Payment status" Enums(RECORDED, VOIDED)
// @Param        date_from query string false "Start of payment date range (ISO 8601)" format(date-time)
// @Param        date_to query string false "End of payment date range (ISO 8601)" format(date-time)
// @Param        search query string false "Search term (payment number, reference, party name)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(payment_date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]paymentapp.PaymentListItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter paymentapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListByParty godoc
// @Summary      List payments for a party
// @Description  Retrieve a paginated list of payments for one vendor party
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Param        status query string false "Payment status" Enums(RECORDED, VOIDED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]paymentapp.PaymentListItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/payments [get]
func (h *PaymentHandler) ListByParty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	var filter paymentapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	payments, total, err := h.paymentService.ListByParty(c.Request.Context(), tenantID, partyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// UpdateDetails godoc
// @Summary      Update payment details
// @Description  Update the reference number or notes of a recorded payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.UpdatePaymentDetailsRequest true "Payment details update request"
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [put]
func (h *PaymentHandler) UpdateDetails(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req paymentapp.UpdatePaymentDetailsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.UpdateDetails(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Void godoc
// @Summary      Void a payment
// @Description  Void a recorded payment with a reason; voided payments stay in the ledger history but no longer count toward the balance
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.VoidPaymentRequest true "Void request"
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req paymentapp.VoidPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Void(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}
