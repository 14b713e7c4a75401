package event

import (
	"github.com/govindji/backoffice/internal/domain/catalog"
	"github.com/govindji/backoffice/internal/domain/identity"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// RegisterAllEvents registers every domain event type with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table. Event types whose schema has evolved register their full
// upgrade chain here.
func RegisterAllEvents(serializer *VersionedSerializer) error {
	// Party domain events
	serializer.Register(party.EventTypePartyCreated, &party.PartyCreatedEvent{})
	serializer.Register(party.EventTypePartyUpdated, &party.PartyUpdatedEvent{})
	serializer.Register(party.EventTypePartyArchived, &party.PartyArchivedEvent{})
	serializer.Register(party.EventTypePartyUnarchived, &party.PartyUnarchivedEvent{})

	// Purchase order events
	serializer.Register(order.EventTypePurchaseOrderCreated, &order.PurchaseOrderCreatedEvent{})
	serializer.Register(order.EventTypePurchaseOrderAmended, &order.PurchaseOrderAmendedEvent{})
	serializer.Register(order.EventTypePurchaseOrderReceived, &order.PurchaseOrderReceivedEvent{})
	serializer.Register(order.EventTypePurchaseOrderCancelled, &order.PurchaseOrderCancelledEvent{})

	// Payment events. Recorded payments gained the method field in version 2;
	// rows written before that default to cash on read.
	err := serializer.RegisterVersioned(
		payment.EventTypePartyPaymentRecorded,
		payment.PartyPaymentRecordedSchemaVersion,
		map[int]shared.DomainEvent{
			1: &payment.PartyPaymentRecordedEventV1{},
			2: &payment.PartyPaymentRecordedEvent{},
		},
		CommonUpgraders{}.AddField(1, "method", string(payment.MethodCash)),
	)
	if err != nil {
		return err
	}
	serializer.Register(payment.EventTypePartyPaymentVoided, &payment.PartyPaymentVoidedEvent{})

	// Catalog domain - Product events
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	serializer.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})
	serializer.Register(catalog.EventTypeProductStatusChanged, &catalog.ProductStatusChangedEvent{})
	serializer.Register(catalog.EventTypeProductPriceChanged, &catalog.ProductPriceChangedEvent{})

	// Catalog domain - Product image events
	serializer.Register(catalog.EventTypeProductImageCreated, &catalog.ProductImageCreatedEvent{})
	serializer.Register(catalog.EventTypeProductImageConfirmed, &catalog.ProductImageConfirmedEvent{})
	serializer.Register(catalog.EventTypeProductImageDeleted, &catalog.ProductImageDeletedEvent{})
	serializer.Register(catalog.EventTypeProductImageKindChanged, &catalog.ProductImageKindChangedEvent{})

	// Identity domain events
	serializer.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	serializer.Register(identity.EventTypeUserPasswordChanged, &identity.UserPasswordChangedEvent{})
	serializer.Register(identity.EventTypeUserRoleChanged, &identity.UserRoleChangedEvent{})
	serializer.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})

	// Printing domain events
	serializer.Register(printing.EventTypePrintTemplateCreated, &printing.PrintTemplateCreatedEvent{})
	serializer.Register(printing.EventTypePrintTemplateUpdated, &printing.PrintTemplateUpdatedEvent{})
	serializer.Register(printing.EventTypePrintTemplateStatusChanged, &printing.PrintTemplateStatusChangedEvent{})
	serializer.Register(printing.EventTypePrintTemplateSetAsDefault, &printing.PrintTemplateSetAsDefaultEvent{})
	serializer.Register(printing.EventTypePrintJobCreated, &printing.PrintJobCreatedEvent{})
	serializer.Register(printing.EventTypePrintJobStatusChanged, &printing.PrintJobStatusChangedEvent{})
	serializer.Register(printing.EventTypePrintJobCompleted, &printing.PrintJobCompletedEvent{})
	serializer.Register(printing.EventTypePrintJobFailed, &printing.PrintJobFailedEvent{})

	return nil
}
