package event

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventMigrator upgrades stored event payloads to their current schema
// version in bulk. It is the tool of choice when an event type gains a new
// version and the outbox or an external store still holds old payloads.
type EventMigrator struct {
	serializer *VersionedSerializer
	logger     *zap.Logger
}

func NewEventMigrator(serializer *VersionedSerializer, logger *zap.Logger) *EventMigrator {
	return &EventMigrator{
		serializer: serializer,
		logger:     logger,
	}
}

// MigrationResult summarizes a MigratePayloads run.
type MigrationResult struct {
	EventType      string
	TotalProcessed int
	Upgraded       int
	AlreadyCurrent int
	Failed         int
	FailedPayloads []FailedMigration
	// UpgradedPayloads holds the rewritten bytes keyed by the payload's
	// index in the input batch, so callers can persist them in place.
	UpgradedPayloads map[int][]byte
	StartedAt        time.Time
	CompletedAt      time.Time
	FromVersion      int
	ToVersion        int
}

// FailedMigration records a payload that could not be upgraded.
type FailedMigration struct {
	Payload []byte
	Error   string
	Version int
}

func (r *MigrationResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// MigratePayloads upgrades every payload in the batch to the current version
// of eventType. Failures are collected per payload rather than aborting the
// batch. Cancelling the context stops the loop and returns the partial result
// together with the context error.
func (m *EventMigrator) MigratePayloads(ctx context.Context, eventType string, payloads [][]byte) (*MigrationResult, error) {
	result := &MigrationResult{
		EventType:        eventType,
		StartedAt:        time.Now(),
		FailedPayloads:   make([]FailedMigration, 0),
		UpgradedPayloads: make(map[int][]byte),
	}

	currentVersion, ok := m.serializer.GetCurrentVersion(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	result.ToVersion = currentVersion

	for i, payload := range payloads {
		select {
		case <-ctx.Done():
			result.CompletedAt = time.Now()
			return result, ctx.Err()
		default:
		}

		result.TotalProcessed++
		version := ExtractVersion(payload)

		if result.FromVersion == 0 || version < result.FromVersion {
			result.FromVersion = version
		}

		if version >= currentVersion {
			result.AlreadyCurrent++
			continue
		}

		upgraded, _, err := m.serializer.UpgradePayloadOnly(eventType, payload)
		if err != nil {
			result.Failed++
			result.FailedPayloads = append(result.FailedPayloads, FailedMigration{
				Payload: payload,
				Error:   err.Error(),
				Version: version,
			})
			continue
		}

		result.UpgradedPayloads[i] = upgraded
		result.Upgraded++
	}

	result.CompletedAt = time.Now()
	return result, nil
}

// ValidateUpgradeChain reports an error if any intermediate upgrader between
// version 1 and the current version of eventType is missing.
func (m *EventMigrator) ValidateUpgradeChain(eventType string) error {
	config, ok := m.serializer.GetVersionRegistry().GetConfig(eventType)
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	for v := 1; v < config.CurrentVersion; v++ {
		if _, ok := config.Upgraders[v]; !ok {
			return fmt.Errorf("missing upgrader for version %d -> %d", v, v+1)
		}
	}

	return nil
}

// EventVersionAnalysis describes the version spread of a payload batch.
type EventVersionAnalysis struct {
	EventType      string
	CurrentVersion int
	VersionCounts  map[int]int
	OldestVersion  int
	NewestVersion  int
	TotalEvents    int
	NeedsMigration int
	UpToDate       int
}

// AnalyzePayloads inspects a batch without upgrading anything. Run it before
// MigratePayloads to size the migration.
func (m *EventMigrator) AnalyzePayloads(eventType string, payloads [][]byte) (*EventVersionAnalysis, error) {
	currentVersion, ok := m.serializer.GetCurrentVersion(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	analysis := &EventVersionAnalysis{
		EventType:      eventType,
		CurrentVersion: currentVersion,
		VersionCounts:  make(map[int]int),
		OldestVersion:  -1,
		NewestVersion:  -1,
		TotalEvents:    len(payloads),
	}

	for _, payload := range payloads {
		version := ExtractVersion(payload)
		analysis.VersionCounts[version]++

		if analysis.OldestVersion == -1 || version < analysis.OldestVersion {
			analysis.OldestVersion = version
		}
		if version > analysis.NewestVersion {
			analysis.NewestVersion = version
		}

		if version < currentVersion {
			analysis.NeedsMigration++
		} else {
			analysis.UpToDate++
		}
	}

	return analysis, nil
}

// MigrationPlan lists the upgrade steps needed to bring an event type from
// one version to the current one.
type MigrationPlan struct {
	EventType    string
	FromVersion  int
	ToVersion    int
	UpgradeSteps []UpgradeStep
}

// UpgradeStep is one hop in a migration plan.
type UpgradeStep struct {
	FromVersion int
	ToVersion   int
	HasUpgrader bool
}

// IsValid reports whether every step in the plan has a registered upgrader.
func (p *MigrationPlan) IsValid() bool {
	for _, step := range p.UpgradeSteps {
		if !step.HasUpgrader {
			return false
		}
	}
	return true
}

// CreateMigrationPlan builds the step list from fromVersion to the current
// version. A fromVersion at or beyond the current version yields an empty plan.
func (m *EventMigrator) CreateMigrationPlan(eventType string, fromVersion int) (*MigrationPlan, error) {
	config, ok := m.serializer.GetVersionRegistry().GetConfig(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if fromVersion >= config.CurrentVersion {
		return &MigrationPlan{
			EventType:    eventType,
			FromVersion:  fromVersion,
			ToVersion:    config.CurrentVersion,
			UpgradeSteps: []UpgradeStep{},
		}, nil
	}

	steps := make([]UpgradeStep, 0, config.CurrentVersion-fromVersion)
	for v := fromVersion; v < config.CurrentVersion; v++ {
		_, hasUpgrader := config.Upgraders[v]
		steps = append(steps, UpgradeStep{
			FromVersion: v,
			ToVersion:   v + 1,
			HasUpgrader: hasUpgrader,
		})
	}

	return &MigrationPlan{
		EventType:    eventType,
		FromVersion:  fromVersion,
		ToVersion:    config.CurrentVersion,
		UpgradeSteps: steps,
	}, nil
}

// CommonUpgraders offers ready-made upgraders for routine schema edits so
// event packages do not hand-roll the same map manipulation each time.
type CommonUpgraders struct{}

// AddField populates a new field with a default value.
func (CommonUpgraders) AddField(sourceVersion int, fieldName string, defaultValue any) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, func(data map[string]any) (map[string]any, error) {
		data[fieldName] = defaultValue
		return data, nil
	})
}

// RemoveField drops a field entirely.
func (CommonUpgraders) RemoveField(sourceVersion int, fieldName string) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, func(data map[string]any) (map[string]any, error) {
		delete(data, fieldName)
		return data, nil
	})
}

// RenameField moves a value from oldName to newName when present.
func (CommonUpgraders) RenameField(sourceVersion int, oldName, newName string) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[oldName]; ok {
			data[newName] = val
			delete(data, oldName)
		}
		return data, nil
	})
}

// TransformField rewrites a field value in place when present.
func (CommonUpgraders) TransformField(sourceVersion int, fieldName string, transform func(any) any) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[fieldName]; ok {
			data[fieldName] = transform(val)
		}
		return data, nil
	})
}

// WrapInObject nests a scalar field inside an object under wrapperKey.
func (CommonUpgraders) WrapInObject(sourceVersion int, fieldName, wrapperKey string) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[fieldName]; ok {
			data[fieldName] = map[string]any{wrapperKey: val}
		}
		return data, nil
	})
}

// UnwrapFromObject flattens a nested object field back to the value stored
// under wrapperKey.
func (CommonUpgraders) UnwrapFromObject(sourceVersion int, fieldName, wrapperKey string) *BaseEventUpgrader {
	return NewBaseEventUpgrader(sourceVersion, sourceVersion+1, func(data map[string]any) (map[string]any, error) {
		if val, ok := data[fieldName]; ok {
			if obj, ok := val.(map[string]any); ok {
				if unwrapped, ok := obj[wrapperKey]; ok {
					data[fieldName] = unwrapped
				}
			}
		}
		return data, nil
	})
}

// CopyPayload deep-copies a JSON payload so upgraders can mutate freely.
func CopyPayload(payload []byte) ([]byte, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// MigrationStats aggregates migration counters per event type. Safe for
// concurrent use.
type MigrationStats struct {
	mu    sync.RWMutex
	stats map[string]*EventMigrationStats
}

// EventMigrationStats holds the counters for one event type.
type EventMigrationStats struct {
	EventType           string
	TotalMigrated       int64
	TotalFailed         int64
	LastMigratedAt      time.Time
	AverageDurationMs   float64
	MigrationsByVersion map[string]int64 // "v1->v2" => count
}

func NewMigrationStats() *MigrationStats {
	return &MigrationStats{
		stats: make(map[string]*EventMigrationStats),
	}
}

// RecordMigration accounts for one upgrade attempt. Successful attempts feed
// the rolling average duration.
func (s *MigrationStats) RecordMigration(eventType string, fromVersion, toVersion int, durationMs float64, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.stats[eventType]
	if !ok {
		stats = &EventMigrationStats{
			EventType:           eventType,
			MigrationsByVersion: make(map[string]int64),
		}
		s.stats[eventType] = stats
	}

	if success {
		stats.TotalMigrated++
		stats.LastMigratedAt = time.Now()
		n := float64(stats.TotalMigrated)
		stats.AverageDurationMs = stats.AverageDurationMs*(n-1)/n + durationMs/n
	} else {
		stats.TotalFailed++
	}

	stats.MigrationsByVersion[fmt.Sprintf("v%d->v%d", fromVersion, toVersion)]++
}

// GetStats returns a snapshot for an event type.
func (s *MigrationStats) GetStats(eventType string) (*EventMigrationStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[eventType]
	if !ok {
		return nil, false
	}

	snapshot := *stats
	snapshot.MigrationsByVersion = maps.Clone(stats.MigrationsByVersion)
	return &snapshot, true
}
