package event

/*
Event Schema Versioning
=======================

Events persisted in the outbox table outlive the code that wrote them. When a
payload is read back after its Go struct has changed, the versioning layer
upgrades the stored JSON to the current schema before decoding it, so
handlers only ever see the latest shape.

How it works
------------

Every event embeds shared.BaseDomainEvent, which carries a schema_version
field. Payloads written before versioning existed have no such field and are
treated as version 1. An EventUpgrader transforms a payload from one version
to the next; upgraders must be strictly sequential (1->2, 2->3). The
VersionRegistry holds the upgrader chain per event type and validates it at
registration time, so a gap in the chain fails fast instead of at read time.

VersionedSerializer is the codec the outbox publisher and processor share:
Deserialize inspects the stored version, walks the upgrader chain, then
decodes into the struct registered for the current version.

Evolving a schema
-----------------

Say party payments gain a settlement mode. Keep the old struct around for the
registry, add the new one, and write the upgrader:

	type PartyPaymentRecordedEventV2 struct {
	    shared.BaseDomainEvent
	    PartyID        uuid.UUID `json:"party_id"`
	    SettlementMode string    `json:"settlement_mode"`
	}

	v1ToV2 := NewBaseEventUpgrader(1, 2, func(data map[string]any) (map[string]any, error) {
	    data["settlement_mode"] = "cash"
	    return data, nil
	})

	err := serializer.RegisterVersioned(
	    payment.EventTypePartyPaymentRecorded,
	    2,
	    map[int]shared.DomainEvent{
	        1: &payment.PartyPaymentRecordedEvent{},
	        2: &payment.PartyPaymentRecordedEventV2{},
	    },
	    v1ToV2,
	)

For mechanical changes, CommonUpgraders covers the usual cases: AddField,
RemoveField, RenameField, TransformField, WrapInObject, UnwrapFromObject.

Migrating stored payloads
-------------------------

Upgrading on read is enough for correctness, but long-lived outbox rows can
be rewritten in place with EventMigrator:

	migrator := NewEventMigrator(serializer, logger)
	analysis, _ := migrator.AnalyzePayloads(eventType, payloads)
	result, _ := migrator.MigratePayloads(ctx, eventType, payloads)

MigratePayloads collects per-payload failures instead of aborting the batch,
and honors context cancellation by returning the partial result. Track
long-running migrations with MigrationStats (counts, failure totals, rolling
average duration per version step).

Rules of thumb
--------------

  - One upgrader per version step, deterministic, tolerant of missing fields.
  - Never rename an event type string; stored rows route by it. A new name is
    a new event type.
  - Deploy the upgrader before any producer writes the new version.
  - Wire new registrations into RegisterAllEvents so the outbox processor can
    decode them.
*/
