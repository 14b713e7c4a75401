package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/govindji/backoffice/internal/application/ledger"
)

// LedgerHandler handles vendor ledger statement API endpoints
type LedgerHandler struct {
	BaseHandler
	statementService *ledgerapp.StatementService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(statementService *ledgerapp.StatementService) *LedgerHandler {
	return &LedgerHandler{
		statementService: statementService,
	}
}

// GetStatement godoc
// @Summary      Get party ledger statement
// @Description  Build the reconciled ledger statement for a vendor party: orders and payments merged in chronological order with a running balance, a flattened item list, and any data warnings
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Param        date_from query string false "Start of statement date range (ISO 8601)" format(date-time)
// @Param        date_to query string false "End of statement date range (ISO 8601)" format(date-time)
// @Success      200 {object} dto.Response{data=ledgerapp.StatementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/statement [get]
func (h *LedgerHandler) GetStatement(c *gin.Context) {
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

	var filter ledgerapp.StatementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.statementService.BuildStatement(c.Request.Context(), tenantID, partyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// GetBalance godoc
// @Summary      Get party outstanding balance
// @Description  Compute the current outstanding balance for a vendor party from its full ledger history
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.BalanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /parties/{id}/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
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

	balance, err := h.statementService.GetBalance(c.Request.Context(), tenantID, partyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ledgerapp.BalanceResponse{PartyID: partyID, Balance: balance})
}
