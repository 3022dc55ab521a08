package transport

import (
	"net/http"

	"eshopper/internal/domain"
	"eshopper/internal/middleware"
	"eshopper/internal/repository"
	"eshopper/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents a catalog management payload
type ProductRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	Slug              string  `json:"slug" validate:"required,max=100"`
	Description       string  `json:"description"`
	Price             float64 `json:"price" validate:"gte=0"`
	PriceWithDiscount float64 `json:"price_with_discount" validate:"gte=0"`
	Digital           bool    `json:"digital"`
	ImageURL          string  `json:"image_url"`
	Category          string  `json:"category" validate:"max=50"`
	Size              string  `json:"size" validate:"omitempty,oneof=XS S M L XL"`
}

// ProductListResponse wraps a catalog listing
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Count    int               `json:"count"`
}

// CatalogHandler handles HTTP requests for catalog browsing and management
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes. Browsing is public, management
// requires the admin role.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/shop", h.Shop)
	r.Get("/api/shop/{category}", h.ShopCategory)
	r.Get("/api/products/{slug}", h.ProductDetail)

	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// Shop handles the filtered product listing
func (h *CatalogHandler) Shop(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.Shop(r.Context(), r.URL.Query())
	if err != nil {
		h.logger.Error("Failed to load shop listing", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Count:    len(products),
	})
}

// ShopCategory handles the category product listing
func (h *CatalogHandler) ShopCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.catalogService.ShopCategory(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to load category listing",
			zap.String("category", category),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Count:    len(products),
	})
}

// ProductDetail handles the product detail view
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalogService.ProductBySlug(r.Context(), slug)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to load product", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a product to the catalog
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		if err == repository.ErrProductSlugTaken {
			middleware.RespondWithError(w, http.StatusConflict, "product with this slug already exists")
			return
		}

		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("slug", product.Slug))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles replacing the fields of a catalog product
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	input, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, input)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case repository.ErrProductSlugTaken:
			middleware.RespondWithError(w, http.StatusConflict, "product with this slug already exists")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles removing a product from the catalog
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *CatalogHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:              req.Name,
		Slug:              req.Slug,
		Description:       req.Description,
		Price:             req.Price,
		PriceWithDiscount: req.PriceWithDiscount,
		Digital:           req.Digital,
		ImageURL:          req.ImageURL,
		Category:          req.Category,
		Size:              domain.Size(req.Size),
	}, true
}
