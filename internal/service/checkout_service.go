package service

import (
	"context"
	"fmt"
	"time"

	"eshopper/internal/domain"
	"eshopper/internal/repository"

	"github.com/google/uuid"
)

// CheckoutInput carries the validated contact and shipping fields of a
// checkout submission.
type CheckoutInput struct {
	FirstName   string
	LastName    string
	Email       string
	MobilePhone string
	Address     string
	Country     string
	City        string
	ZipCode     string
}

// CheckoutService renders and accepts checkout submissions. Submitting
// checkout persists an address snapshot linked to the open order; it does
// not finalize the order or clear the cart.
type CheckoutService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*CartView, error)
	Submit(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*domain.ShippingAddress, error)
}

type checkoutService struct {
	orderRepo   repository.OrderRepository
	addressRepo repository.ShippingAddressRepository
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(orderRepo repository.OrderRepository, addressRepo repository.ShippingAddressRepository) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
	}
}

// Summary returns the open order totals shown on the checkout page.
// ErrNoOpenOrder passes through as the soft "no active order" condition.
func (s *checkoutService) Summary(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	order, lines, err := s.orderRepo.OpenOrderLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	return buildCartView(order, lines), nil
}

// Submit persists the shipping address snapshot for the user's open order.
func (s *checkoutService) Submit(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*domain.ShippingAddress, error) {
	order, err := s.orderRepo.OpenOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	address := &domain.ShippingAddress{
		ID:          uuid.New(),
		OrderID:     &order.ID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		MobilePhone: input.MobilePhone,
		Address:     input.Address,
		Country:     input.Country,
		City:        input.City,
		ZipCode:     input.ZipCode,
		DateAdded:   time.Now(),
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to save shipping address: %w", err)
	}

	return address, nil
}
