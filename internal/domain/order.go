package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a (product, user) line in a cart. While Ordered is false it
// belongs to the user's open order; once an order is finalized the flag
// flips and the row becomes part of the purchase history.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Ordered   bool      `json:"ordered" db:"ordered"`
	DateAdded time.Time `json:"date_added" db:"date_added"`
}

// Order groups order items for a user. At most one order per user has
// Ordered == false (the open order); a partial unique index enforces this.
type Order struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Ordered       bool      `json:"ordered" db:"ordered"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	DateOrdered   time.Time `json:"date_ordered" db:"date_ordered"`
}

// ShippingAddress is a checkout-time snapshot of the buyer's contact and
// shipping details. It is linked to the order it was submitted for but has
// an independent lifecycle.
type ShippingAddress struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty" db:"order_id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty" db:"product_id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	MobilePhone string     `json:"mobile_phone" db:"mobile_phone"`
	Address     string     `json:"address" db:"address"`
	Country     string     `json:"country" db:"country"`
	City        string     `json:"city" db:"city"`
	ZipCode     string     `json:"zip_code" db:"zip_code"`
	DateAdded   time.Time  `json:"date_added" db:"date_added"`
}
