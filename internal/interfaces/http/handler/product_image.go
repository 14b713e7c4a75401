package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/govindji/backoffice/internal/application/catalog"
	"github.com/govindji/backoffice/internal/interfaces/http/dto"
)

// ProductImageHandler handles product image API endpoints
type ProductImageHandler struct {
	BaseHandler
	imageService *catalogapp.ImageService
}

// NewProductImageHandler creates a new ProductImageHandler
func NewProductImageHandler(imageService *catalogapp.ImageService) *ProductImageHandler {
	return &ProductImageHandler{
		imageService: imageService,
	}
}

// InitiateUpload godoc
//
//	@Summary		Initiate an image upload
//	@Description	Creates a pending image record and returns a presigned upload URL
//	@Tags			product-images
//	@ID				initiateProductImageUpload
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string										false	"Tenant ID (optional for dev)"
//	@Param			request		body		catalogapp.InitiateImageUploadRequest		true	"Upload initiation request"
//	@Success		201			{object}	APIResponse[catalogapp.InitiateImageUploadResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse	"Product not found"
//	@Failure		422			{object}	ErrorResponse	"Image limit exceeded or disallowed content type"
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/images/upload [post]
func (h *ProductImageHandler) InitiateUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req catalogapp.InitiateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if userID, err := getUserID(c); err == nil && userID != uuid.Nil {
		req.UploadedBy = &userID
	}

	result, err := h.imageService.InitiateUpload(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ConfirmUpload godoc
//
//	@Summary		Confirm an image upload
//	@Description	Marks a pending image as active once the client has finished the presigned PUT
//	@Tags			product-images
//	@ID				confirmProductImageUpload
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Image ID"	format(uuid)
//	@Success		200			{object}	APIResponse[catalogapp.ProductImageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse	"Image is not pending"
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/images/{id}/confirm [post]
func (h *ProductImageHandler) ConfirmUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	result, err := h.imageService.ConfirmUpload(c.Request.Context(), tenantID, imageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
//
//	@Summary		Get an image by ID
//	@Description	Returns image metadata with presigned URLs when active
//	@Tags			product-images
//	@ID				getProductImageById
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Image ID"	format(uuid)
//	@Success		200			{object}	APIResponse[catalogapp.ProductImageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/images/{id} [get]
func (h *ProductImageHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	result, err := h.imageService.GetByID(c.Request.Context(), tenantID, imageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetDownloadURL godoc
//
//	@Summary		Get a presigned download URL
//	@Description	Returns a short-lived presigned GET URL for an active image
//	@Tags			product-images
//	@ID				getProductImageDownloadUrl
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Image ID"	format(uuid)
//	@Success		200			{object}	APIResponse[catalogapp.ImageDownloadURLResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse	"Image is not active"
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/images/{id}/url [get]
func (h *ProductImageHandler) GetDownloadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	result, err := h.imageService.GetDownloadURL(c.Request.Context(), tenantID, imageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByProduct godoc
//
//	@Summary		List images for a product
//	@Description	Returns all active images for a product ordered by sort order
//	@Tags			product-images
//	@ID				listProductImages
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Product ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]catalogapp.ProductImageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/products/{id}/images [get]
func (h *ProductImageHandler) ListByProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	images, err := h.imageService.ListByProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, images)
}

// SetAsMain godoc
//
//	@Summary		Set an image as the main image
//	@Description	Promotes a gallery image to main; the previous main image becomes gallery
//	@Tags			product-images
//	@ID				setProductImageAsMain
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Image ID"	format(uuid)
//	@Success		200			{object}	APIResponse[catalogapp.ProductImageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse	"Image is not active"
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/images/{id}/main [post]
func (h *ProductImageHandler) SetAsMain(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	result, err := h.imageService.SetAsMain(c.Request.Context(), tenantID, imageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
//
//	@Summary		Delete an image
//	@Description	Deletes an image record and its stored objects
//	@Tags			product-images
//	@ID				deleteProductImage
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Image ID"	format(uuid)
//	@Success		200			{object}	SuccessResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/images/{id} [delete]
func (h *ProductImageHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid image ID")
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), tenantID, imageID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Image deleted successfully"})
}
