package catalog

import (
	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProductImage = "ProductImage"

// Event type constants
const (
	EventTypeProductImageCreated     = "ProductImageCreated"
	EventTypeProductImageConfirmed   = "ProductImageConfirmed"
	EventTypeProductImageDeleted     = "ProductImageDeleted"
	EventTypeProductImageKindChanged = "ProductImageKindChanged"
)

// ProductImageCreatedEvent is published when an upload slot is reserved
type ProductImageCreatedEvent struct {
	shared.BaseDomainEvent
	ImageID     uuid.UUID `json:"image_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Kind        ImageKind `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"storage_key"`
}

// NewProductImageCreatedEvent creates a new ProductImageCreatedEvent
func NewProductImageCreatedEvent(img *ProductImage) *ProductImageCreatedEvent {
	return &ProductImageCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductImageCreated, AggregateTypeProductImage, img.ID, img.TenantID),
		ImageID:         img.ID,
		ProductID:       img.ProductID,
		Kind:            img.Kind,
		FileName:        img.FileName,
		ContentType:     img.ContentType,
		StorageKey:      img.StorageKey,
	}
}

// EventType returns the event type name
func (e *ProductImageCreatedEvent) EventType() string {
	return EventTypeProductImageCreated
}

// ProductImageConfirmedEvent is published when an upload is confirmed.
// The thumbnail worker listens for this event.
type ProductImageConfirmedEvent struct {
	shared.BaseDomainEvent
	ImageID     uuid.UUID `json:"image_id"`
	ProductID   uuid.UUID `json:"product_id"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
}

// NewProductImageConfirmedEvent creates a new ProductImageConfirmedEvent
func NewProductImageConfirmedEvent(img *ProductImage) *ProductImageConfirmedEvent {
	return &ProductImageConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductImageConfirmed, AggregateTypeProductImage, img.ID, img.TenantID),
		ImageID:         img.ID,
		ProductID:       img.ProductID,
		StorageKey:      img.StorageKey,
		ContentType:     img.ContentType,
	}
}

// EventType returns the event type name
func (e *ProductImageConfirmedEvent) EventType() string {
	return EventTypeProductImageConfirmed
}

// ProductImageDeletedEvent is published when an image is soft deleted
type ProductImageDeletedEvent struct {
	shared.BaseDomainEvent
	ImageID      uuid.UUID   `json:"image_id"`
	ProductID    uuid.UUID   `json:"product_id"`
	StorageKey   string      `json:"storage_key"`
	ThumbnailKey string      `json:"thumbnail_key,omitempty"`
	OldStatus    ImageStatus `json:"old_status"`
}

// NewProductImageDeletedEvent creates a new ProductImageDeletedEvent
func NewProductImageDeletedEvent(img *ProductImage, oldStatus ImageStatus) *ProductImageDeletedEvent {
	return &ProductImageDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductImageDeleted, AggregateTypeProductImage, img.ID, img.TenantID),
		ImageID:         img.ID,
		ProductID:       img.ProductID,
		StorageKey:      img.StorageKey,
		ThumbnailKey:    img.ThumbnailKey,
		OldStatus:       oldStatus,
	}
}

// EventType returns the event type name
func (e *ProductImageDeletedEvent) EventType() string {
	return EventTypeProductImageDeleted
}

// ProductImageKindChangedEvent is published when an image is promoted or demoted
type ProductImageKindChangedEvent struct {
	shared.BaseDomainEvent
	ImageID   uuid.UUID `json:"image_id"`
	ProductID uuid.UUID `json:"product_id"`
	OldKind   ImageKind `json:"old_kind"`
	NewKind   ImageKind `json:"new_kind"`
}

// NewProductImageKindChangedEvent creates a new ProductImageKindChangedEvent
func NewProductImageKindChangedEvent(img *ProductImage, oldKind ImageKind) *ProductImageKindChangedEvent {
	return &ProductImageKindChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductImageKindChanged, AggregateTypeProductImage, img.ID, img.TenantID),
		ImageID:         img.ID,
		ProductID:       img.ProductID,
		OldKind:         oldKind,
		NewKind:         img.Kind,
	}
}

// EventType returns the event type name
func (e *ProductImageKindChangedEvent) EventType() string {
	return EventTypeProductImageKindChanged
}
