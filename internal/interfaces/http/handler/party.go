package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partyapp "github.com/govindji/backoffice/internal/application/party"
	"github.com/govindji/backoffice/internal/interfaces/http/dto"
)

// PartyHandler handles vendor party API endpoints
type PartyHandler struct {
	BaseHandler
	partyService *partyapp.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partyapp.PartyService) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
	}
}

// Create godoc
// @Summary      Create a vendor party
// @Description  Create a vendor party with a unique code within the tenant
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body partyapp.CreatePartyRequest true "Party creation request"
// @Success      201 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties [post]
func (h *PartyHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partyapp.CreatePartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if userID, err := getUserID(c); err == nil && userID != uuid.Nil {
		req.CreatedBy = &userID
	}

	party, err := h.partyService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, party)
}

// GetByID godoc
// @Summary      Get party by ID
// @Description  Retrieve a vendor party; includes current ledger balance when available
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id} [get]
func (h *PartyHandler) GetByID(c *gin.Context) {
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

	party, err := h.partyService.GetByID(c.Request.Context(), tenantID, partyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}

// GetByCode godoc
// @Summary      Get party by code
// @Description  Retrieve a vendor party by its short code
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        code path string true "Party code" example:"VEND-001"
// @Success      200 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/code/{code} [get]
func (h *PartyHandler) GetByCode(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Party code is required")
		return
	}

	party, err := h.partyService.GetByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}

// List godoc
// @Summary      List parties
// @Description  Retrieve a paginated list of vendor parties with optional filtering
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        search query string false "Search term (code, name, contact, phone)"
// @Param        status query string false "Party status" Enums(active, archived, all)
// @Param        city query string false "City filter"
// @Param        state query string false "State filter"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(name)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(asc)
// @Success      200 {object} dto.Response{data=[]partyapp.PartyListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties [get]
func (h *PartyHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter partyapp.PartyListFilter
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

	parties, total, err := h.partyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, parties, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a party
// @Description  Update vendor party master data; nil fields keep their current value
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body partyapp.UpdatePartyRequest true "Party update request"
// @Success      200 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id} [put]
func (h *PartyHandler) Update(c *gin.Context) {
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

	var req partyapp.UpdatePartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	party, err := h.partyService.Update(c.Request.Context(), tenantID, partyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}

// UpdateCode godoc
// @Summary      Change a party's code
// @Description  Assign a new unique code to a vendor party
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body partyapp.UpdatePartyCodeRequest true "Party code update request"
// @Success      200 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/code [put]
func (h *PartyHandler) UpdateCode(c *gin.Context) {
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

	var req partyapp.UpdatePartyCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	party, err := h.partyService.UpdateCode(c.Request.Context(), tenantID, partyID, req.Code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}

// Archive godoc
// @Summary      Archive a party
// @Description  Archive a vendor party; archived parties are hidden from default lists
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/archive [post]
func (h *PartyHandler) Archive(c *gin.Context) {
	h.changeStatus(c, h.partyService.Archive)
}

// Unarchive godoc
// @Summary      Unarchive a party
// @Description  Restore an archived vendor party to active status
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=partyapp.PartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/unarchive [post]
func (h *PartyHandler) Unarchive(c *gin.Context) {
	h.changeStatus(c, h.partyService.Unarchive)
}

// Delete godoc
// @Summary      Delete a party
// @Description  Delete a vendor party; rejected when the party has any orders or payments
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id} [delete]
func (h *PartyHandler) Delete(c *gin.Context) {
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

	if err := h.partyService.Delete(c.Request.Context(), tenantID, partyID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Party deleted successfully"})
}

// CountByStatus godoc
// @Summary      Party counts by status
// @Description  Retrieve party counts grouped by status
// @Tags         parties
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Success      200 {object} dto.Response{data=map[string]int64}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/count-by-status [get]
func (h *PartyHandler) CountByStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	counts, err := h.partyService.CountByStatus(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, counts)
}

// changeStatus runs a status-changing operation identified by the party ID path param.
func (h *PartyHandler) changeStatus(c *gin.Context, op func(ctx context.Context, tenantID, partyID uuid.UUID) (*partyapp.PartyResponse, error)) {
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

	party, err := op(c.Request.Context(), tenantID, partyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}
