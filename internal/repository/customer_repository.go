package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eshopper/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound = errors.New("customer profile not found")
)

// CustomerRepository defines the interface for customer profile data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a new customer profile using parameterized queries
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (user_id, first_name, last_name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.UserID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create customer profile: %w", err)
	}

	return nil
}

// FindByUserID retrieves the profile attached to a user account
func (r *customerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT user_id, first_name, last_name, email, created_at
		FROM customers
		WHERE user_id = $1
	`

	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&customer.UserID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer profile: %w", err)
	}

	return customer, nil
}

// EmailExists reports whether any profile already uses the given email.
// Registration rejects duplicate profile emails before creating the account.
func (r *customerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check customer email: %w", err)
	}

	return exists, nil
}
