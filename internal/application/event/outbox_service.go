package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
	infraevent "github.com/govindji/backoffice/internal/infrastructure/event"
	"go.uber.org/zap"
)

// OutboxService exposes the outbox table for operational use: inspecting
// dead-lettered events, resetting them for another delivery attempt,
// reporting queue depth per status, and rewriting stored payloads when an
// event schema evolves.
type OutboxService struct {
	repo     shared.OutboxRepository
	migrator *infraevent.EventMigrator
	logger   *zap.Logger
}

func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, logger: logger}
}

// SetSchemaMigrator enables the schema analysis and migration operations.
// The migrator must share its version registry with the serializer the
// outbox processor decodes with.
func (s *OutboxService) SetSchemaMigrator(migrator *infraevent.EventMigrator) {
	s.migrator = migrator
}

// OutboxEntryDTO is the API view of one outbox row.
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OutboxFilter carries pagination parameters for outbox queries.
type OutboxFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// OutboxListResult is one page of outbox entries.
type OutboxListResult struct {
	Entries    []OutboxEntryDTO `json:"entries"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// OutboxStatsDTO reports entry counts per delivery status.
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

func normalizeOutboxPage(filter OutboxFilter) (page, pageSize int) {
	page = filter.Page
	if page < 1 {
		page = 1
	}
	pageSize = filter.PageSize
	switch {
	case pageSize < 1:
		pageSize = 20
	case pageSize > 100:
		pageSize = 100
	}
	return page, pageSize
}

// GetDeadLetterEntries pages through entries that exhausted their retries.
func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, filter OutboxFilter) (*OutboxListResult, error) {
	page, pageSize := normalizeOutboxPage(filter)

	entries, total, err := s.repo.FindDead(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to find dead letter entries", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead letter entries")
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	dtos := make([]OutboxEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = toOutboxEntryDTO(entry)
	}

	return &OutboxListResult{
		Entries:    dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetEntry returns a single outbox entry.
func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadEntry puts a dead-lettered entry back in the pending queue.
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := entry.ResetForRetry(); err != nil {
		return nil, shared.NewDomainError("INVALID_STATUS", err.Error())
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to update outbox entry", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retry entry")
	}

	s.logger.Info("Dead letter entry reset for retry",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
	)

	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAllDeadEntries resets every dead-lettered entry and returns how many
// were requeued. Entries that fail to reset or persist are skipped.
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	var count int64
	const pageSize = 100

	for page := 1; ; page++ {
		entries, _, err := s.repo.FindDead(ctx, page, pageSize)
		if err != nil {
			s.logger.Error("Failed to find dead letter entries", zap.Error(err))
			return count, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead letter entries")
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("Failed to update outbox entry", zap.Error(err), zap.String("id", entry.ID.String()))
				continue
			}
			count++
		}

		if len(entries) < pageSize {
			break
		}
	}

	s.logger.Info("Retried dead letter entries", zap.Int64("count", count))
	return count, nil
}

// GetStats counts entries per status.
func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to get outbox stats", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to get outbox stats")
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

// schemaMigrationBatchSize caps how many rows one migration call touches.
// Larger backlogs take repeated calls; rewritten rows read back as current,
// so re-running is safe.
const schemaMigrationBatchSize = 1000

// OutboxSchemaAnalysisDTO reports the schema version spread of the stored
// payloads for one event type.
type OutboxSchemaAnalysisDTO struct {
	EventType      string      `json:"event_type"`
	CurrentVersion int         `json:"current_version"`
	TotalEvents    int         `json:"total_events"`
	NeedsMigration int         `json:"needs_migration"`
	UpToDate       int         `json:"up_to_date"`
	VersionCounts  map[int]int `json:"version_counts"`
}

// OutboxMigrationDTO summarizes an in-place payload migration run.
type OutboxMigrationDTO struct {
	EventType      string `json:"event_type"`
	TotalProcessed int    `json:"total_processed"`
	Upgraded       int    `json:"upgraded"`
	AlreadyCurrent int    `json:"already_current"`
	Failed         int    `json:"failed"`
	DurationMs     int64  `json:"duration_ms"`
}

// AnalyzeEventSchema inspects stored payloads of one event type and reports
// how many still carry an older schema version.
func (s *OutboxService) AnalyzeEventSchema(ctx context.Context, eventType string) (*OutboxSchemaAnalysisDTO, error) {
	if s.migrator == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Schema migration is not configured")
	}

	entries, err := s.repo.FindByEventType(ctx, eventType, schemaMigrationBatchSize)
	if err != nil {
		s.logger.Error("Failed to load outbox entries for analysis", zap.Error(err), zap.String("event_type", eventType))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load outbox entries")
	}

	payloads := make([][]byte, len(entries))
	for i, entry := range entries {
		payloads[i] = entry.Payload
	}

	analysis, err := s.migrator.AnalyzePayloads(eventType, payloads)
	if err != nil {
		return nil, shared.NewDomainError("NOT_FOUND", err.Error())
	}

	return &OutboxSchemaAnalysisDTO{
		EventType:      analysis.EventType,
		CurrentVersion: analysis.CurrentVersion,
		TotalEvents:    analysis.TotalEvents,
		NeedsMigration: analysis.NeedsMigration,
		UpToDate:       analysis.UpToDate,
		VersionCounts:  analysis.VersionCounts,
	}, nil
}

// MigrateEventSchema rewrites stored payloads of one event type to the
// current schema version, one batch per call. Rows that fail to upgrade or
// persist are counted and skipped.
func (s *OutboxService) MigrateEventSchema(ctx context.Context, eventType string) (*OutboxMigrationDTO, error) {
	if s.migrator == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Schema migration is not configured")
	}

	if err := s.migrator.ValidateUpgradeChain(eventType); err != nil {
		return nil, shared.NewDomainError("NOT_FOUND", err.Error())
	}

	entries, err := s.repo.FindByEventType(ctx, eventType, schemaMigrationBatchSize)
	if err != nil {
		s.logger.Error("Failed to load outbox entries for migration", zap.Error(err), zap.String("event_type", eventType))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load outbox entries")
	}

	payloads := make([][]byte, len(entries))
	for i, entry := range entries {
		payloads[i] = entry.Payload
	}

	result, err := s.migrator.MigratePayloads(ctx, eventType, payloads)
	if err != nil {
		s.logger.Error("Payload migration aborted", zap.Error(err), zap.String("event_type", eventType))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Payload migration aborted")
	}

	persisted := 0
	failed := result.Failed
	for i, upgraded := range result.UpgradedPayloads {
		entry := entries[i]
		entry.Payload = upgraded
		if err := s.repo.Update(ctx, entry); err != nil {
			s.logger.Error("Failed to persist upgraded payload",
				zap.Error(err),
				zap.String("event_type", eventType),
				zap.String("entry_id", entry.ID.String()),
			)
			failed++
			continue
		}
		persisted++
	}

	s.logger.Info("Outbox schema migration completed",
		zap.String("event_type", eventType),
		zap.Int("total", result.TotalProcessed),
		zap.Int("upgraded", persisted),
		zap.Int("failed", failed),
	)

	return &OutboxMigrationDTO{
		EventType:      eventType,
		TotalProcessed: result.TotalProcessed,
		Upgraded:       persisted,
		AlreadyCurrent: result.AlreadyCurrent,
		Failed:         failed,
		DurationMs:     result.Duration().Milliseconds(),
	}, nil
}

func (s *OutboxService) findEntry(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find outbox entry", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("ENTRY_NOT_FOUND", "Outbox entry not found")
	}
	if entry == nil {
		return nil, shared.NewDomainError("ENTRY_NOT_FOUND", "Outbox entry not found")
	}
	return entry, nil
}

func toOutboxEntryDTO(entry *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            entry.ID,
		TenantID:      entry.TenantID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
