package service

import (
	"context"
	"fmt"

	"eshopper/internal/domain"
	"eshopper/internal/repository"

	"github.com/google/uuid"
)

// User-facing cart notices. Soft conditions ("not in your cart", "no active
// order") surface as these messages instead of errors.
const (
	MsgItemAdded       = "This item was added to your cart"
	MsgQuantityUpdated = "The quantity of this item was updated"
	MsgItemRemoved     = "This item was removed from your cart"
	MsgItemNotInCart   = "The item was not in your cart"
	MsgNoActiveOrder   = "You do not have an active order"
)

// CartMutationResult reports what a cart transition did. Changed is false
// for the soft no-op cases.
type CartMutationResult struct {
	Message string `json:"message"`
	Changed bool   `json:"changed"`
}

// CartLineView is one priced line of the cart.
type CartLineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

// CartView is the open order with its computed totals.
type CartView struct {
	OrderID       uuid.UUID      `json:"order_id"`
	TransactionID string         `json:"transaction_id"`
	Lines         []CartLineView `json:"lines"`
	Subtotal      float64        `json:"subtotal"`
	Shipping      float64        `json:"shipping"`
	GrandTotal    float64        `json:"grand_total"`
}

// CartService implements the cart state machine over the order aggregate.
type CartService interface {
	AddToCart(ctx context.Context, userID uuid.UUID, slug string) (*CartMutationResult, error)
	RemoveFromCart(ctx context.Context, userID uuid.UUID, slug string) (*CartMutationResult, error)
	DecreaseQuantity(ctx context.Context, userID uuid.UUID, slug string) (*CartMutationResult, error)
	ViewCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type cartService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// AddToCart runs the cumulative add transition. Unknown slugs surface
// ErrProductNotFound; everything else happens atomically in the repository.
func (s *cartService) AddToCart(ctx context.Context, userID uuid.UUID, slug string) (*CartMutationResult, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	outcome, err := s.orderRepo.AddProduct(ctx, userID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add product to cart: %w", err)
	}

	if outcome == repository.OutcomeIncremented {
		return &CartMutationResult{Message: MsgQuantityUpdated, Changed: true}, nil
	}
	return &CartMutationResult{Message: MsgItemAdded, Changed: true}, nil
}

// RemoveFromCart removes the product's membership entirely. Missing order
// or membership is a notice, not an error.
func (s *cartService) RemoveFromCart(ctx context.Context, userID uuid.UUID, slug string) (*CartMutationResult, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	err = s.orderRepo.RemoveProduct(ctx, userID, product.ID)
	switch err {
	case nil:
		return &CartMutationResult{Message: MsgItemRemoved, Changed: true}, nil
	case repository.ErrNoOpenOrder:
		return &CartMutationResult{Message: MsgNoActiveOrder}, nil
	case repository.ErrItemNotInCart:
		return &CartMutationResult{Message: MsgItemNotInCart}, nil
	default:
		return nil, fmt.Errorf("failed to remove product from cart: %w", err)
	}
}

// DecreaseQuantity decrements by one, removing the line when the quantity
// was one. Quantity never reaches zero while the line is still a member.
func (s *cartService) DecreaseQuantity(ctx context.Context, userID uuid.UUID, slug string) (*CartMutationResult, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	removed, err := s.orderRepo.DecreaseProduct(ctx, userID, product.ID)
	switch err {
	case nil:
		if removed {
			return &CartMutationResult{Message: MsgItemRemoved, Changed: true}, nil
		}
		return &CartMutationResult{Message: MsgQuantityUpdated, Changed: true}, nil
	case repository.ErrNoOpenOrder:
		return &CartMutationResult{Message: MsgNoActiveOrder}, nil
	case repository.ErrItemNotInCart:
		return &CartMutationResult{Message: MsgItemNotInCart}, nil
	default:
		return nil, fmt.Errorf("failed to decrease quantity: %w", err)
	}
}

// ViewCart returns the open order with line totals, subtotal, shipping and
// grand total. ErrNoOpenOrder passes through for the handler to soften.
func (s *cartService) ViewCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	order, lines, err := s.orderRepo.OpenOrderLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	return buildCartView(order, lines), nil
}

func buildCartView(order *domain.Order, lines []domain.CartLine) *CartView {
	view := &CartView{
		OrderID:       order.ID,
		TransactionID: order.TransactionID,
		Lines:         make([]CartLineView, 0, len(lines)),
	}

	for _, line := range lines {
		view.Lines = append(view.Lines, CartLineView{
			ProductID: line.Product.ID,
			Slug:      line.Product.Slug,
			Name:      line.Product.Name,
			Quantity:  line.Item.Quantity,
			UnitPrice: line.Product.EffectivePrice(),
			LineTotal: line.Total(),
		})
	}

	view.Subtotal = domain.Subtotal(lines)
	view.Shipping = domain.ShippingPrice(view.Subtotal)
	view.GrandTotal = domain.GrandTotal(view.Subtotal)

	return view
}
