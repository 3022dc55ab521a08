package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"eshopper/internal/domain"
	"eshopper/internal/repository"

	"github.com/google/uuid"
)

// bandSelectors is the ordered list of price-band query parameters. At most
// one band applies per request: the first parameter present wins and the
// rest are ignored.
var bandSelectors = []struct {
	Param string
	Band  repository.PriceBand
}{
	{"price_until_hundred", repository.PriceBand{Low: 0, High: 100}},
	{"price_until_two_hundred", repository.PriceBand{Low: 100, High: 200}},
	{"price_until_three_hundred", repository.PriceBand{Low: 200, High: 300}},
	{"price_until_four_hundred", repository.PriceBand{Low: 300, High: 400}},
	{"price_until_five_hundred", repository.PriceBand{Low: 400, High: 500}},
}

// sizeSelectors is the ordered list of size query parameters, first
// present wins.
var sizeSelectors = []struct {
	Param string
	Size  domain.Size
}{
	{"size_xs", domain.SizeXS},
	{"size_s", domain.SizeS},
	{"size_m", domain.SizeM},
	{"size_l", domain.SizeL},
	{"size_xl", domain.SizeXL},
}

// ProductInput carries the fields of a catalog management request.
type ProductInput struct {
	Name              string
	Slug              string
	Description       string
	Price             float64
	PriceWithDiscount float64
	Digital           bool
	ImageURL          string
	Category          string
	Size              domain.Size
}

// CatalogService defines the interface for catalog browsing and management
type CatalogService interface {
	Shop(ctx context.Context, query url.Values) ([]*domain.Product, error)
	ShopCategory(ctx context.Context, category string) ([]*domain.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// FilterFromQuery resolves the raw shop query parameters into a single
// product filter. Absent or empty parameters are ignored rather than
// treated as "exclude all"; malformed input degrades to "filter not
// applied".
func FilterFromQuery(query url.Values) repository.ProductFilter {
	filter := repository.ProductFilter{
		NameContains: query.Get("name_contains"),
	}

	for _, selector := range bandSelectors {
		if query.Get(selector.Param) != "" {
			band := selector.Band
			filter.PriceBand = &band
			break
		}
	}

	for _, selector := range sizeSelectors {
		if query.Get(selector.Param) != "" {
			filter.Size = selector.Size
			break
		}
	}

	return filter
}

// Shop returns the products matching all supplied filters, sorted by
// discounted price then base price ascending.
func (s *catalogService) Shop(ctx context.Context, query url.Values) ([]*domain.Product, error) {
	products, err := s.productRepo.Filter(ctx, FilterFromQuery(query))
	if err != nil {
		return nil, fmt.Errorf("failed to load shop listing: %w", err)
	}
	return products, nil
}

// ShopCategory returns the products of one category with the shop sort.
func (s *catalogService) ShopCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	products, err := s.productRepo.Filter(ctx, repository.ProductFilter{Category: category})
	if err != nil {
		return nil, fmt.Errorf("failed to load category listing: %w", err)
	}
	return products, nil
}

// ProductBySlug returns the product detail for a slug
func (s *catalogService) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

// CreateProduct adds a product to the catalog
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:                uuid.New(),
		Name:              input.Name,
		Slug:              input.Slug,
		Description:       input.Description,
		Price:             input.Price,
		PriceWithDiscount: input.PriceWithDiscount,
		Digital:           input.Digital,
		ImageURL:          input.ImageURL,
		Category:          input.Category,
		Size:              input.Size,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct replaces the catalog fields of an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Slug = input.Slug
	existing.Description = input.Description
	existing.Price = input.Price
	existing.PriceWithDiscount = input.PriceWithDiscount
	existing.Digital = input.Digital
	existing.ImageURL = input.ImageURL
	existing.Category = input.Category
	existing.Size = input.Size
	existing.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
