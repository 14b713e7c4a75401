package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govindji/backoffice/internal/domain/catalog"
	"github.com/govindji/backoffice/internal/domain/shared"
)

// allowedImageContentTypes is the whitelist for product image uploads.
// SVG is excluded: it can carry scripts.
var allowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// ObjectStorageService defines the interface for object storage operations,
// implemented by the infrastructure layer (S3 or compatible).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file.
	// Returns the upload URL and its expiration time.
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file.
	// Returns the download URL and its expiration time.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ImageServiceConfig holds configuration for the image service
type ImageServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxImagesPerProduct caps non-deleted images per product
	MaxImagesPerProduct int
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:     15 * time.Minute,
		DownloadURLExpiry:   1 * time.Hour,
		MaxImagesPerProduct: 12,
	}
}

// ImageService handles product image upload, download and lifecycle. The
// binary never passes through this process: clients upload straight to
// object storage with a presigned PUT and confirm afterwards.
type ImageService struct {
	imageRepo   catalog.ProductImageRepository
	productRepo catalog.ProductRepository
	storage     ObjectStorageService
	config      ImageServiceConfig
	logger      *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(
	imageRepo catalog.ProductImageRepository,
	productRepo catalog.ProductRepository,
	storage ObjectStorageService,
) *ImageService {
	return &ImageService{
		imageRepo:   imageRepo,
		productRepo: productRepo,
		storage:     storage,
		config:      DefaultImageServiceConfig(),
		logger:      zap.NewNop(),
	}
}

// SetConfig sets the service configuration
func (s *ImageService) SetConfig(config ImageServiceConfig) {
	s.config = config
}

// SetLogger sets the logger
func (s *ImageService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// InitiateUpload creates a pending image record and returns a presigned
// upload URL. The image stays pending until ConfirmUpload.
func (s *ImageService) InitiateUpload(ctx context.Context, tenantID uuid.UUID, req InitiateImageUploadRequest) (*InitiateImageUploadResponse, error) {
	// Validate product exists
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	// Check image limit
	count, err := s.imageRepo.CountByProduct(ctx, tenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxImagesPerProduct) {
		return nil, shared.NewDomainError("IMAGE_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d images per product allowed", s.config.MaxImagesPerProduct))
	}

	// Enforce the content-type whitelist
	if !allowedImageContentTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for product images", req.ContentType))
	}

	kind := catalog.ImageKindGallery
	if req.Kind != "" {
		kind = catalog.ImageKind(req.Kind)
	}

	// Only one main image per product
	if kind == catalog.ImageKindMain {
		existingMain, err := s.imageRepo.FindMainImage(ctx, tenantID, req.ProductID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existingMain != nil {
			return nil, shared.NewDomainError("MAIN_IMAGE_EXISTS",
				"A main image already exists. Delete or demote it first.")
		}
	}

	storageKey := s.generateStorageKey(tenantID, req.ProductID, req.FileName)

	img, err := catalog.NewProductImage(
		tenantID,
		req.ProductID,
		kind,
		req.FileName,
		req.FileSize,
		req.ContentType,
		storageKey,
		req.UploadedBy,
	)
	if err != nil {
		return nil, err
	}

	// Save the image in pending status
	if err := s.imageRepo.Save(ctx, img); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		// Drop the pending record; the client never got a URL to upload with
		_ = s.imageRepo.DeleteForTenant(ctx, tenantID, img.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateImageUploadResponse{
		ImageID:   img.ID,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and activates the image
func (s *ImageService) ConfirmUpload(ctx context.Context, tenantID, imageID uuid.UUID) (*ProductImageResponse, error) {
	img, err := s.imageRepo.FindByIDForTenant(ctx, tenantID, imageID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, img.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND",
			"File not found in storage. Upload the file first.")
	}

	if err := img.Confirm(); err != nil {
		return nil, err
	}

	if err := s.imageRepo.Save(ctx, img); err != nil {
		return nil, err
	}

	response := ToProductImageResponse(img)
	s.attachURLs(ctx, &response, img)

	return &response, nil
}

// GetByID retrieves an image by ID
func (s *ImageService) GetByID(ctx context.Context, tenantID, imageID uuid.UUID) (*ProductImageResponse, error) {
	img, err := s.imageRepo.FindByIDForTenant(ctx, tenantID, imageID)
	if err != nil {
		return nil, err
	}

	response := ToProductImageResponse(img)
	s.attachURLs(ctx, &response, img)

	return &response, nil
}

// GetDownloadURL returns a presigned GET URL for an active image
func (s *ImageService) GetDownloadURL(ctx context.Context, tenantID, imageID uuid.UUID) (*ImageDownloadURLResponse, error) {
	img, err := s.imageRepo.FindByIDForTenant(ctx, tenantID, imageID)
	if err != nil {
		return nil, err
	}

	if !img.IsActive() {
		return nil, shared.NewDomainError("IMAGE_NOT_AVAILABLE", "Image upload has not been confirmed")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, img.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &ImageDownloadURLResponse{
		ImageID:   img.ID,
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

// ListByProduct retrieves all non-deleted images for a product
func (s *ImageService) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductImageResponse, error) {
	// Validate product exists
	if _, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	imgs, err := s.imageRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	responses := ToProductImageResponses(imgs)
	for i := range imgs {
		s.attachURLs(ctx, &responses[i], &imgs[i])
	}

	return responses, nil
}

// SetAsMain promotes an image to the main product photo, demoting the
// current main image to the gallery in the same transaction.
func (s *ImageService) SetAsMain(ctx context.Context, tenantID, imageID uuid.UUID) (*ProductImageResponse, error) {
	img, err := s.imageRepo.FindByIDForTenant(ctx, tenantID, imageID)
	if err != nil {
		return nil, err
	}

	if !img.IsActive() {
		return nil, shared.NewDomainError("IMAGE_NOT_AVAILABLE", "Only confirmed images can be the main image")
	}

	currentMain, err := s.imageRepo.FindMainImage(ctx, tenantID, img.ProductID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	toSave := []*catalog.ProductImage{img}
	if currentMain != nil && currentMain.ID != img.ID {
		if err := currentMain.SetAsGallery(); err != nil {
			return nil, err
		}
		toSave = append(toSave, currentMain)
	}

	if err := img.SetAsMain(); err != nil {
		return nil, err
	}

	if err := s.imageRepo.SaveBatch(ctx, toSave); err != nil {
		return nil, err
	}

	response := ToProductImageResponse(img)
	s.attachURLs(ctx, &response, img)

	return &response, nil
}

// Delete soft deletes an image and clears its objects from storage.
// Storage cleanup is best effort: the row is the source of truth and a
// leftover object costs pennies, not correctness.
func (s *ImageService) Delete(ctx context.Context, tenantID, imageID uuid.UUID) error {
	img, err := s.imageRepo.FindByIDForTenant(ctx, tenantID, imageID)
	if err != nil {
		return err
	}

	if err := img.Delete(); err != nil {
		return err
	}

	if err := s.imageRepo.Save(ctx, img); err != nil {
		return err
	}

	s.deleteObjects(ctx, img)
	return nil
}

// CleanupAbandoned reclaims pending uploads older than the cutoff: the
// client asked for an upload URL but never confirmed. Returns the number
// of records removed.
func (s *ImageService) CleanupAbandoned(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	imgs, err := s.imageRepo.FindPendingOlderThan(ctx, int(olderThan.Seconds()), limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range imgs {
		img := &imgs[i]
		s.deleteObjects(ctx, img)
		if err := s.imageRepo.DeleteForTenant(ctx, img.TenantID, img.ID); err != nil {
			s.logger.Warn("failed to remove abandoned image record",
				zap.String("image_id", img.ID.String()),
				zap.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}

// deleteObjects removes the image's storage objects, logging failures
func (s *ImageService) deleteObjects(ctx context.Context, img *catalog.ProductImage) {
	if err := s.storage.DeleteObject(ctx, img.StorageKey); err != nil {
		s.logger.Warn("failed to delete image object from storage",
			zap.String("image_id", img.ID.String()),
			zap.String("storage_key", img.StorageKey),
			zap.Error(err))
	}
	if img.ThumbnailKey != "" {
		if err := s.storage.DeleteObject(ctx, img.ThumbnailKey); err != nil {
			s.logger.Warn("failed to delete thumbnail object from storage",
				zap.String("image_id", img.ID.String()),
				zap.String("thumbnail_key", img.ThumbnailKey),
				zap.Error(err))
		}
	}
}

// attachURLs adds presigned download URLs to a response for active images
func (s *ImageService) attachURLs(ctx context.Context, response *ProductImageResponse, img *catalog.ProductImage) {
	if !img.IsActive() {
		return
	}

	if url, _, err := s.storage.GenerateDownloadURL(ctx, img.StorageKey, s.config.DownloadURLExpiry); err == nil {
		response.URL = url
	}
	if img.ThumbnailKey != "" {
		if url, _, err := s.storage.GenerateDownloadURL(ctx, img.ThumbnailKey, s.config.DownloadURLExpiry); err == nil {
			response.ThumbnailURL = url
		}
	}
}

// generateStorageKey builds a unique storage key for an upload.
// Format: tenants/{tenantID}/products/{productID}/images/{uniqueID}{ext}
func (s *ImageService) generateStorageKey(tenantID, productID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("tenants/%s/products/%s/images/%s%s",
		tenantID.String(),
		productID.String(),
		uuid.New().String(),
		ext,
	)
}
