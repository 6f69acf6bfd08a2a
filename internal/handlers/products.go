package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davidnrm/critiq/internal/models"
	appErrors "github.com/davidnrm/critiq/pkg/errors"
	"github.com/davidnrm/critiq/pkg/response"
)

// ProductHandler manages the product review resource.
type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type productPayload struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required,min=120"`
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req productPayload
	if !bindAndValidate(c, &req) {
		return
	}

	product := models.Product{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, product)
}

// GET /api/products/:productId
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.find(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

// PUT /api/products/:productId
func (h *ProductHandler) Update(c *gin.Context) {
	var req productPayload
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.find(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if product.UserID != currentUserID(c) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	updates := map[string]any{
		"title":       req.Title,
		"description": req.Description,
	}
	if err := h.db.WithContext(c.Request.Context()).Model(product).Updates(updates).Error; err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, product)
}

// DELETE /api/products/:productId
func (h *ProductHandler) Delete(c *gin.Context) {
	product, err := h.find(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if product.UserID != currentUserID(c) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(product).Error; err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *ProductHandler) find(c *gin.Context) (*models.Product, error) {
	productID := c.Param("productId")
	if productID == "" {
		return nil, appErrors.NewBadRequest("productId is required")
	}

	var product models.Product
	err := h.db.WithContext(c.Request.Context()).Take(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrNotFound
	}
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	return &product, nil
}
