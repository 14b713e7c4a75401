package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// MaxImageFileSize is the maximum allowed image size (15MB)
const MaxImageFileSize = 15 * 1024 * 1024

// ImageKind distinguishes the main product photo from gallery shots
type ImageKind string

const (
	ImageKindMain    ImageKind = "main"
	ImageKindGallery ImageKind = "gallery"
)

// IsValid checks if the image kind is valid
func (k ImageKind) IsValid() bool {
	switch k {
	case ImageKindMain, ImageKindGallery:
		return true
	default:
		return false
	}
}

// ImageStatus represents the upload lifecycle of a product image
type ImageStatus string

const (
	// ImageStatusPending means a presigned upload URL was issued but the
	// client has not confirmed the upload yet
	ImageStatusPending ImageStatus = "pending"
	ImageStatusActive  ImageStatus = "active"
	ImageStatusDeleted ImageStatus = "deleted"
)

// IsValid checks if the image status is valid
func (s ImageStatus) IsValid() bool {
	switch s {
	case ImageStatusPending, ImageStatusActive, ImageStatusDeleted:
		return true
	default:
		return false
	}
}

// ProductImage represents an image asset attached to a product. The binary
// lives in object storage; this aggregate only tracks its metadata and the
// pending/active/deleted upload lifecycle.
type ProductImage struct {
	shared.TenantAggregateRoot
	ProductID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	Kind         ImageKind   `gorm:"type:varchar(20);not null;default:'gallery'"`
	Status       ImageStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	FileName     string      `gorm:"type:varchar(255);not null"`
	FileSize     int64       `gorm:"not null"`
	ContentType  string      `gorm:"type:varchar(100);not null"`
	StorageKey   string      `gorm:"type:varchar(500);not null"`
	ThumbnailKey string      `gorm:"type:varchar(500)"` // set after the thumbnail is generated
	SortOrder    int         `gorm:"not null;default:0"`
	UploadedBy   *uuid.UUID  `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProductImage creates a new product image in pending status
func NewProductImage(
	tenantID uuid.UUID,
	productID uuid.UUID,
	kind ImageKind,
	fileName string,
	fileSize int64,
	contentType string,
	storageKey string,
	uploadedBy *uuid.UUID,
) (*ProductImage, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT_ID", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_IMAGE_KIND", "Invalid image kind")
	}
	if err := validateImageFileName(fileName); err != nil {
		return nil, err
	}
	if err := validateImageFileSize(fileSize); err != nil {
		return nil, err
	}
	if err := validateImageContentType(contentType); err != nil {
		return nil, err
	}
	if err := validateStorageKey(storageKey); err != nil {
		return nil, err
	}

	img := &ProductImage{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Kind:                kind,
		Status:              ImageStatusPending,
		FileName:            fileName,
		FileSize:            fileSize,
		ContentType:         contentType,
		StorageKey:          storageKey,
		SortOrder:           0,
		UploadedBy:          uploadedBy,
	}

	img.AddDomainEvent(NewProductImageCreatedEvent(img))

	return img, nil
}

// Confirm activates the image after the client reports a successful upload
func (img *ProductImage) Confirm() error {
	if img.Status == ImageStatusActive {
		return shared.NewDomainError("ALREADY_CONFIRMED", "Image is already confirmed")
	}
	if img.Status == ImageStatusDeleted {
		return shared.NewDomainError("CANNOT_CONFIRM_DELETED", "Cannot confirm a deleted image")
	}

	img.Status = ImageStatusActive
	img.UpdatedAt = time.Now()
	img.IncrementVersion()

	img.AddDomainEvent(NewProductImageConfirmedEvent(img))

	return nil
}

// Delete marks the image as deleted (soft delete)
func (img *ProductImage) Delete() error {
	if img.Status == ImageStatusDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Image is already deleted")
	}

	oldStatus := img.Status
	img.Status = ImageStatusDeleted
	img.UpdatedAt = time.Now()
	img.IncrementVersion()

	img.AddDomainEvent(NewProductImageDeletedEvent(img, oldStatus))

	return nil
}

// SetAsMain promotes the image to the main product photo
func (img *ProductImage) SetAsMain() error {
	if img.Status == ImageStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "Cannot update a deleted image")
	}
	if img.Kind == ImageKindMain {
		return shared.NewDomainError("ALREADY_MAIN_IMAGE", "Image is already the main image")
	}

	img.Kind = ImageKindMain
	img.UpdatedAt = time.Now()
	img.IncrementVersion()

	img.AddDomainEvent(NewProductImageKindChangedEvent(img, ImageKindGallery))

	return nil
}

// SetAsGallery demotes a main image back to the gallery
func (img *ProductImage) SetAsGallery() error {
	if img.Status == ImageStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "Cannot update a deleted image")
	}
	if img.Kind == ImageKindGallery {
		return shared.NewDomainError("ALREADY_GALLERY_IMAGE", "Image is already a gallery image")
	}

	img.Kind = ImageKindGallery
	img.UpdatedAt = time.Now()
	img.IncrementVersion()

	img.AddDomainEvent(NewProductImageKindChangedEvent(img, ImageKindMain))

	return nil
}

// SetThumbnailKey records the storage key of the generated thumbnail
func (img *ProductImage) SetThumbnailKey(key string) error {
	if img.Status == ImageStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "Cannot update a deleted image")
	}
	if err := validateStorageKey(key); err != nil {
		return err
	}

	img.ThumbnailKey = key
	img.UpdatedAt = time.Now()
	img.IncrementVersion()

	return nil
}

// SetSortOrder sets the display order of the image
func (img *ProductImage) SetSortOrder(order int) error {
	if img.Status == ImageStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "Cannot update a deleted image")
	}
	if order < 0 {
		return shared.NewDomainError("INVALID_SORT_ORDER", "Sort order cannot be negative")
	}

	img.SortOrder = order
	img.UpdatedAt = time.Now()
	img.IncrementVersion()

	return nil
}

// IsPending returns true if the image is awaiting upload confirmation
func (img *ProductImage) IsPending() bool {
	return img.Status == ImageStatusPending
}

// IsActive returns true if the image is active
func (img *ProductImage) IsActive() bool {
	return img.Status == ImageStatusActive
}

// IsDeleted returns true if the image is deleted
func (img *ProductImage) IsDeleted() bool {
	return img.Status == ImageStatusDeleted
}

// IsMain returns true if this is the main product photo
func (img *ProductImage) IsMain() bool {
	return img.Kind == ImageKindMain
}

// HasThumbnail returns true once a thumbnail has been generated
func (img *ProductImage) HasThumbnail() bool {
	return img.ThumbnailKey != ""
}

// validation functions

func validateImageFileName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError("INVALID_FILE_NAME", "File name contains invalid characters")
		}
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}

func validateImageFileSize(size int64) error {
	if size <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "File size must be greater than 0")
	}
	if size > MaxImageFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File size cannot exceed 15MB")
	}
	return nil
}

func validateImageContentType(contentType string) error {
	if contentType == "" {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot be empty")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type must be an image type")
	}
	if len(contentType) > 100 {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot exceed 100 characters")
	}
	return nil
}

func validateStorageKey(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot exceed 500 characters")
	}
	// Reject traversal and absolute paths; keys are relative within the bucket
	if strings.Contains(key, "..") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot contain path traversal sequences")
	}
	if strings.HasPrefix(key, "/") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key must be a relative path")
	}
	return nil
}
