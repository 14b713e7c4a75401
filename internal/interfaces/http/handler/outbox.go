package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/govindji/backoffice/internal/application/event"
)

// OutboxHandler exposes the outbox admin endpoints: dead letter inspection,
// retry, and queue statistics. Mounted under /system and restricted to
// admins in the router.
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{outboxService: outboxService}
}

// entryID parses the :id path parameter, responding 400 on garbage.
func (h *OutboxHandler) entryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return uuid.Nil, false
	}
	return id, true
}

// GetDeadLetterEntries godoc
// @ID           getOutboxDeadLetterEntries
// @Summary      List dead letter entries
// @Description  Page through ledger events that exhausted their delivery retries
// @Tags         outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[OutboxListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	var filter event.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.outboxService.GetDeadLetterEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOutboxListResponse(result))
}

// GetEntry godoc
// @ID           getOutboxEntry
// @Summary      Get an outbox entry by ID
// @Description  Retrieve a single outbox entry with its retry history
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox Entry ID" format(uuid)
// @Success      200 {object} APIResponse[OutboxEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/{id} [get]
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	entry, err := h.outboxService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOutboxEntryResponse(entry))
}

// RetryDeadEntry godoc
// @ID           retryDeadEntryOutbox
// @Summary      Retry a dead letter entry
// @Description  Requeue one dead entry for delivery
// @Tags         outbox
// @Accept       json
// @Produce      json
// @Param        id path string true "Outbox Entry ID" format(uuid)
// @Success      200 {object} APIResponse[OutboxEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/{id}/retry [post]
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	entry, err := h.outboxService.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOutboxEntryResponse(entry))
}

// RetryAllDeadEntries godoc
// @ID           retryAllDeadEntriesOutbox
// @Summary      Retry all dead letter entries
// @Description  Requeue every dead entry for delivery
// @Tags         outbox
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[RetryAllResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/dead/retry-all [post]
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	count, err := h.outboxService.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RetryAllResponse{Count: count})
}

// AnalyzeEventSchema godoc
// @ID           analyzeOutboxEventSchema
// @Summary      Analyze stored payload schema versions
// @Description  Report how many stored payloads of one event type still carry an older schema version
// @Tags         outbox
// @Produce      json
// @Param        event_type path string true "Event type name"
// @Success      200 {object} APIResponse[OutboxSchemaAnalysisResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/schema/{event_type} [get]
func (h *OutboxHandler) AnalyzeEventSchema(c *gin.Context) {
	eventType := c.Param("event_type")
	if eventType == "" {
		h.BadRequest(c, "Missing event type")
		return
	}

	analysis, err := h.outboxService.AnalyzeEventSchema(c.Request.Context(), eventType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOutboxSchemaAnalysisResponse(analysis))
}

// MigrateEventSchema godoc
// @ID           migrateOutboxEventSchema
// @Summary      Migrate stored payloads to the current schema
// @Description  Rewrite one batch of stored payloads of the given event type to the current schema version
// @Tags         outbox
// @Accept       json
// @Produce      json
// @Param        event_type path string true "Event type name"
// @Success      200 {object} APIResponse[OutboxMigrationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/schema/{event_type}/migrate [post]
func (h *OutboxHandler) MigrateEventSchema(c *gin.Context) {
	eventType := c.Param("event_type")
	if eventType == "" {
		h.BadRequest(c, "Missing event type")
		return
	}

	result, err := h.outboxService.MigrateEventSchema(c.Request.Context(), eventType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOutboxMigrationResponse(result))
}

// GetStats godoc
// @ID           getOutboxStats
// @Summary      Get outbox statistics
// @Description  Count outbox entries by delivery status
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[OutboxStatsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.outboxService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOutboxStatsResponse(stats))
}

// OutboxEntryResponse is the API shape of an outbox entry. Timestamps are
// RFC 3339 strings.
type OutboxEntryResponse struct {
	ID            string  `json:"id"`
	TenantID      string  `json:"tenant_id"`
	EventID       string  `json:"event_id"`
	EventType     string  `json:"event_type"`
	AggregateID   string  `json:"aggregate_id"`
	AggregateType string  `json:"aggregate_type"`
	Status        string  `json:"status"`
	RetryCount    int     `json:"retry_count"`
	MaxRetries    int     `json:"max_retries"`
	LastError     string  `json:"last_error,omitempty"`
	NextRetryAt   *string `json:"next_retry_at,omitempty"`
	ProcessedAt   *string `json:"processed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// OutboxListResponse is one page of outbox entries.
type OutboxListResponse struct {
	Entries    []OutboxEntryResponse `json:"entries"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// OutboxStatsResponse reports entry counts per status.
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// RetryAllResponse carries the number of requeued entries.
type RetryAllResponse struct {
	Count int64 `json:"count"`
}

// OutboxSchemaAnalysisResponse reports the schema version spread of stored
// payloads for one event type.
type OutboxSchemaAnalysisResponse struct {
	EventType      string      `json:"event_type"`
	CurrentVersion int         `json:"current_version"`
	TotalEvents    int         `json:"total_events"`
	NeedsMigration int         `json:"needs_migration"`
	UpToDate       int         `json:"up_to_date"`
	VersionCounts  map[int]int `json:"version_counts"`
}

// OutboxMigrationResponse summarizes one schema migration batch.
type OutboxMigrationResponse struct {
	EventType      string `json:"event_type"`
	TotalProcessed int    `json:"total_processed"`
	Upgraded       int    `json:"upgraded"`
	AlreadyCurrent int    `json:"already_current"`
	Failed         int    `json:"failed"`
	DurationMs     int64  `json:"duration_ms"`
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toOutboxEntryResponse(dto *event.OutboxEntryDTO) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            dto.ID.String(),
		TenantID:      dto.TenantID.String(),
		EventID:       dto.EventID.String(),
		EventType:     dto.EventType,
		AggregateID:   dto.AggregateID.String(),
		AggregateType: dto.AggregateType,
		Status:        dto.Status,
		RetryCount:    dto.RetryCount,
		MaxRetries:    dto.MaxRetries,
		LastError:     dto.LastError,
		NextRetryAt:   formatOptionalTime(dto.NextRetryAt),
		ProcessedAt:   formatOptionalTime(dto.ProcessedAt),
		CreatedAt:     dto.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     dto.UpdatedAt.Format(time.RFC3339),
	}
}

func toOutboxListResponse(result *event.OutboxListResult) OutboxListResponse {
	entries := make([]OutboxEntryResponse, len(result.Entries))
	for i := range result.Entries {
		entries[i] = toOutboxEntryResponse(&result.Entries[i])
	}
	return OutboxListResponse{
		Entries:    entries,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}

func toOutboxSchemaAnalysisResponse(dto *event.OutboxSchemaAnalysisDTO) OutboxSchemaAnalysisResponse {
	return OutboxSchemaAnalysisResponse{
		EventType:      dto.EventType,
		CurrentVersion: dto.CurrentVersion,
		TotalEvents:    dto.TotalEvents,
		NeedsMigration: dto.NeedsMigration,
		UpToDate:       dto.UpToDate,
		VersionCounts:  dto.VersionCounts,
	}
}

func toOutboxMigrationResponse(dto *event.OutboxMigrationDTO) OutboxMigrationResponse {
	return OutboxMigrationResponse{
		EventType:      dto.EventType,
		TotalProcessed: dto.TotalProcessed,
		Upgraded:       dto.Upgraded,
		AlreadyCurrent: dto.AlreadyCurrent,
		Failed:         dto.Failed,
		DurationMs:     dto.DurationMs,
	}
}

func toOutboxStatsResponse(dto *event.OutboxStatsDTO) OutboxStatsResponse {
	return OutboxStatsResponse{
		Pending:    dto.Pending,
		Processing: dto.Processing,
		Sent:       dto.Sent,
		Failed:     dto.Failed,
		Dead:       dto.Dead,
		Total:      dto.Total,
	}
}
