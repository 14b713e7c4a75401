package event

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/govindji/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// VersionedSerializer is an event codec with schema migration built in.
// Old payloads are run through the registered upgrade chain before decoding,
// so consumers always see the current version of an event.
type VersionedSerializer struct {
	versionRegistry *VersionRegistry
	logger          *zap.Logger
}

func NewVersionedSerializer(logger *zap.Logger) *VersionedSerializer {
	return &VersionedSerializer{
		versionRegistry: NewVersionRegistry(),
		logger:          logger,
	}
}

// Register records a simple version 1 event type.
func (s *VersionedSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	s.versionRegistry.RegisterSimpleEvent(eventType, eventInstance)
}

// RegisterVersioned records an event type with a full upgrade chain.
func (s *VersionedSerializer) RegisterVersioned(
	eventType string,
	currentVersion int,
	versions map[int]shared.DomainEvent,
	upgraders ...EventUpgrader,
) error {
	return s.versionRegistry.RegisterVersionedEvent(eventType, currentVersion, versions, upgraders...)
}

// Serialize encodes the event as JSON. BaseDomainEvent carries the
// schema_version field, so no extra stamping is needed.
func (s *VersionedSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// SerializeWithVersion is an alias of Serialize kept for callers that want
// the version requirement spelled out at the call site.
func (s *VersionedSerializer) SerializeWithVersion(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize decodes a payload, upgrading it first when it carries an older
// schema version.
func (s *VersionedSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	config, ok := s.versionRegistry.GetConfig(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	payload := data
	if version := ExtractVersion(data); version < config.CurrentVersion {
		if s.logger != nil {
			s.logger.Debug("upgrading event version",
				zap.String("event_type", eventType),
				zap.Int("from_version", version),
				zap.Int("to_version", config.CurrentVersion),
			)
		}

		var err error
		payload, _, err = s.versionRegistry.UpgradePayload(eventType, data, version)
		if err != nil {
			return nil, fmt.Errorf("failed to upgrade event: %w", err)
		}
	}

	return decodeAsVersion(config, payload, config.CurrentVersion, eventType)
}

// DeserializeToVersion decodes a payload as a specific schema version,
// upgrading only as far as needed. Downgrades are not supported.
func (s *VersionedSerializer) DeserializeToVersion(eventType string, data []byte, targetVersion int) (shared.DomainEvent, error) {
	config, ok := s.versionRegistry.GetConfig(eventType)
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	version := ExtractVersion(data)
	if version > targetVersion {
		return nil, fmt.Errorf("cannot downgrade event from version %d to %d", version, targetVersion)
	}

	payload := data
	for v := version; v < targetVersion; v++ {
		upgrader, ok := config.Upgraders[v]
		if !ok {
			return nil, fmt.Errorf("missing upgrader for version %d -> %d", v, v+1)
		}

		var err error
		payload, err = upgrader.Upgrade(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to upgrade from v%d to v%d: %w", v, v+1, err)
		}
	}

	return decodeAsVersion(config, payload, targetVersion, eventType)
}

// decodeAsVersion instantiates the struct registered for the given version
// and unmarshals the payload into it.
func decodeAsVersion(config *VersionedEventConfig, payload []byte, version int, eventType string) (shared.DomainEvent, error) {
	eventInstance, ok := config.Versions[version]
	if !ok {
		return nil, fmt.Errorf("no event type registered for version %d of %s", version, eventType)
	}

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	eventPtr := reflect.New(t).Interface()

	if err := json.Unmarshal(payload, eventPtr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("deserialized object does not implement DomainEvent")
	}

	return event, nil
}

// IsRegistered reports whether eventType is known.
func (s *VersionedSerializer) IsRegistered(eventType string) bool {
	return s.versionRegistry.IsRegistered(eventType)
}

// RegisteredTypes lists every registered event type.
func (s *VersionedSerializer) RegisteredTypes() []string {
	return s.versionRegistry.RegisteredTypes()
}

// GetCurrentVersion returns the latest schema version of an event type.
func (s *VersionedSerializer) GetCurrentVersion(eventType string) (int, bool) {
	return s.versionRegistry.GetCurrentVersion(eventType)
}

// GetVersionRegistry exposes the underlying registry for tooling such as the
// batch migrator.
func (s *VersionedSerializer) GetVersionRegistry() *VersionRegistry {
	return s.versionRegistry
}

// UpgradePayloadOnly upgrades a payload to the current version without
// decoding it, which is what batch migrations want.
func (s *VersionedSerializer) UpgradePayloadOnly(eventType string, data []byte) ([]byte, int, error) {
	return s.versionRegistry.UpgradePayload(eventType, data, ExtractVersion(data))
}

// GetEventVersion reads the schema version out of a raw payload.
func (s *VersionedSerializer) GetEventVersion(data []byte) int {
	return ExtractVersion(data)
}
