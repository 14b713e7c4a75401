package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/govindji/backoffice/internal/domain/shared"
)

// EventUpgrader rewrites an event payload from one schema version to the
// next. Upgraders are always single-step; multi-version jumps are built by
// chaining them.
type EventUpgrader interface {
	// SourceVersion is the version the upgrader reads.
	SourceVersion() int
	// TargetVersion is the version the upgrader emits.
	TargetVersion() int
	// Upgrade rewrites the raw JSON payload to the target version.
	Upgrade(payload []byte) ([]byte, error)
}

// VersionedEventConfig is everything the registry knows about one event type.
type VersionedEventConfig struct {
	EventType      string
	CurrentVersion int
	Upgraders      map[int]EventUpgrader      // keyed by source version
	Versions       map[int]shared.DomainEvent // instance per schema version
}

// VersionRegistry holds the schema versions and upgrade chains of every
// versioned event type.
type VersionRegistry struct {
	mu      sync.RWMutex
	configs map[string]*VersionedEventConfig
}

func NewVersionRegistry() *VersionRegistry {
	return &VersionRegistry{
		configs: make(map[string]*VersionedEventConfig),
	}
}

// RegisterVersionedEvent records a versioned event type. The upgraders must
// form a gap-free chain from version 1 to currentVersion, and versions must
// contain an instance for the current version.
func (r *VersionRegistry) RegisterVersionedEvent(
	eventType string,
	currentVersion int,
	versions map[int]shared.DomainEvent,
	upgraders ...EventUpgrader,
) error {
	upgraderMap := make(map[int]EventUpgrader)
	for _, u := range upgraders {
		if u.TargetVersion() != u.SourceVersion()+1 {
			return fmt.Errorf("upgrader must be sequential: got %d -> %d", u.SourceVersion(), u.TargetVersion())
		}
		upgraderMap[u.SourceVersion()] = u
	}

	for v := 1; v < currentVersion; v++ {
		if _, ok := upgraderMap[v]; !ok {
			return fmt.Errorf("missing upgrader for version %d -> %d for event type %s", v, v+1, eventType)
		}
	}

	if _, ok := versions[currentVersion]; !ok {
		return fmt.Errorf("versions map must include current version %d for event type %s", currentVersion, eventType)
	}

	r.mu.Lock()
	r.configs[eventType] = &VersionedEventConfig{
		EventType:      eventType,
		CurrentVersion: currentVersion,
		Upgraders:      upgraderMap,
		Versions:       versions,
	}
	r.mu.Unlock()

	return nil
}

// RegisterSimpleEvent records an event type that only has version 1.
func (r *VersionRegistry) RegisterSimpleEvent(eventType string, eventInstance shared.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[eventType] = &VersionedEventConfig{
		EventType:      eventType,
		CurrentVersion: 1,
		Upgraders:      make(map[int]EventUpgrader),
		Versions: map[int]shared.DomainEvent{
			1: eventInstance,
		},
	}
}

// GetConfig returns the versioning config for an event type.
func (r *VersionRegistry) GetConfig(eventType string) (*VersionedEventConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.configs[eventType]
	return config, ok
}

// GetCurrentVersion returns the latest schema version of an event type.
func (r *VersionRegistry) GetCurrentVersion(eventType string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.configs[eventType]
	if !ok {
		return 0, false
	}
	return config.CurrentVersion, true
}

// IsRegistered reports whether eventType is known to the registry.
func (r *VersionRegistry) IsRegistered(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.configs[eventType]
	return ok
}

// RegisteredTypes lists every registered event type.
func (r *VersionRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.configs))
	for name := range r.configs {
		types = append(types, name)
	}
	return types
}

// UpgradePayload chains the registered upgraders to bring a payload from
// fromVersion to the current version. Payloads already at or past the current
// version pass through untouched.
func (r *VersionRegistry) UpgradePayload(eventType string, payload []byte, fromVersion int) ([]byte, int, error) {
	r.mu.RLock()
	config, ok := r.configs[eventType]
	r.mu.RUnlock()

	if !ok {
		return nil, 0, fmt.Errorf("unknown event type: %s", eventType)
	}

	if fromVersion >= config.CurrentVersion {
		return payload, config.CurrentVersion, nil
	}

	upgraded := payload
	for v := fromVersion; v < config.CurrentVersion; v++ {
		upgrader, ok := config.Upgraders[v]
		if !ok {
			return nil, 0, fmt.Errorf("missing upgrader for version %d -> %d for event type %s", v, v+1, eventType)
		}

		var err error
		upgraded, err = upgrader.Upgrade(upgraded)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to upgrade from v%d to v%d: %w", v, v+1, err)
		}
	}

	return upgraded, config.CurrentVersion, nil
}

// ExtractVersion reads the schema_version field from raw event JSON. Payloads
// without the field, or that fail to parse, count as version 1 so that events
// written before versioning existed keep working.
func ExtractVersion(payload []byte) int {
	var envelope struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return 1
	}
	if envelope.SchemaVersion == 0 {
		return 1
	}
	return envelope.SchemaVersion
}

// BaseEventUpgrader implements EventUpgrader with a map-level transform:
// the payload is decoded to a map, handed to the transform, stamped with the
// target version, and re-encoded.
type BaseEventUpgrader struct {
	sourceVersion int
	targetVersion int
	transformFunc func(data map[string]any) (map[string]any, error)
}

func NewBaseEventUpgrader(source, target int, transform func(data map[string]any) (map[string]any, error)) *BaseEventUpgrader {
	return &BaseEventUpgrader{
		sourceVersion: source,
		targetVersion: target,
		transformFunc: transform,
	}
}

func (u *BaseEventUpgrader) SourceVersion() int {
	return u.sourceVersion
}

func (u *BaseEventUpgrader) TargetVersion() int {
	return u.targetVersion
}

func (u *BaseEventUpgrader) Upgrade(payload []byte) ([]byte, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	transformed, err := u.transformFunc(data)
	if err != nil {
		return nil, fmt.Errorf("transform failed: %w", err)
	}

	transformed["schema_version"] = u.targetVersion

	result, err := json.Marshal(transformed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transformed payload: %w", err)
	}

	return result, nil
}

var _ EventUpgrader = (*BaseEventUpgrader)(nil)
