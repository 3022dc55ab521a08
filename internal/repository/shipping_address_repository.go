package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eshopper/internal/domain"

	"github.com/google/uuid"
)

// ShippingAddressRepository persists checkout-time address snapshots.
type ShippingAddressRepository interface {
	Create(ctx context.Context, address *domain.ShippingAddress) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.ShippingAddress, error)
}

type shippingAddressRepository struct {
	db *sql.DB
}

// NewShippingAddressRepository creates a new instance of ShippingAddressRepository
func NewShippingAddressRepository(db *sql.DB) ShippingAddressRepository {
	return &shippingAddressRepository{db: db}
}

// Create inserts a shipping address snapshot using parameterized queries
func (r *shippingAddressRepository) Create(ctx context.Context, address *domain.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses (id, order_id, product_id, first_name, last_name,
			email, mobile_phone, address, country, city, zip_code, date_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.OrderID,
		address.ProductID,
		address.FirstName,
		address.LastName,
		address.Email,
		address.MobilePhone,
		address.Address,
		address.Country,
		address.City,
		address.ZipCode,
		address.DateAdded,
	)

	if err != nil {
		return fmt.Errorf("failed to create shipping address: %w", err)
	}

	return nil
}

// ListByOrder retrieves the address snapshots submitted for an order
func (r *shippingAddressRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.ShippingAddress, error) {
	query := `
		SELECT id, order_id, product_id, first_name, last_name, email,
		       mobile_phone, address, country, city, zip_code, date_added
		FROM shipping_addresses
		WHERE order_id = $1
		ORDER BY date_added DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.ShippingAddress{}
	for rows.Next() {
		address := &domain.ShippingAddress{}
		err := rows.Scan(
			&address.ID,
			&address.OrderID,
			&address.ProductID,
			&address.FirstName,
			&address.LastName,
			&address.Email,
			&address.MobilePhone,
			&address.Address,
			&address.Country,
			&address.City,
			&address.ZipCode,
			&address.DateAdded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipping address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipping addresses: %w", err)
	}

	return addresses, nil
}
