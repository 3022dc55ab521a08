package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eshopper/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNoOpenOrder   = errors.New("no active order")
	ErrItemNotInCart = errors.New("item not in cart")
)

// AddOutcome reports which of the two add-to-cart transitions happened.
// Exactly one of them happens per call.
type AddOutcome string

const (
	OutcomeAttached    AddOutcome = "attached"
	OutcomeIncremented AddOutcome = "incremented"
)

// OrderRepository manages the cart/order aggregate: orders, order items and
// the membership relation between them.
type OrderRepository interface {
	// OpenOrder returns the user's order with ordered = false.
	OpenOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	// OpenOrderLines returns the open order together with its priced lines.
	OpenOrderLines(ctx context.Context, userID uuid.UUID) (*domain.Order, []domain.CartLine, error)
	// AddProduct runs the add-to-cart transition atomically: get-or-create
	// the open order, get-or-create the open item, then either increment
	// the quantity of an existing membership or attach the item.
	AddProduct(ctx context.Context, userID, productID uuid.UUID) (AddOutcome, error)
	// RemoveProduct removes the product's membership from the open order
	// entirely, regardless of quantity.
	RemoveProduct(ctx context.Context, userID, productID uuid.UUID) error
	// DecreaseProduct decrements the quantity by one, removing the
	// membership when the quantity was one. Reports whether the line was
	// removed.
	DecreaseProduct(ctx context.Context, userID, productID uuid.UUID) (removed bool, err error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// OpenOrder retrieves the user's open order
func (r *orderRepository) OpenOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, ordered, transaction_id, date_ordered
		FROM orders
		WHERE user_id = $1 AND NOT ordered
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Ordered,
		&order.TransactionID,
		&order.DateOrdered,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoOpenOrder
		}
		return nil, fmt.Errorf("failed to find open order: %w", err)
	}

	return order, nil
}

// OpenOrderLines retrieves the open order and its member lines with the
// referenced products, ordered by when they were added.
func (r *orderRepository) OpenOrderLines(ctx context.Context, userID uuid.UUID) (*domain.Order, []domain.CartLine, error) {
	order, err := r.OpenOrder(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`
		SELECT oi.id, oi.product_id, oi.user_id, oi.quantity, oi.ordered, oi.date_added,
		       %s
		FROM order_products op
		JOIN order_items oi ON oi.id = op.item_id
		JOIN products p ON p.id = oi.product_id
		WHERE op.order_id = $1
		ORDER BY oi.date_added ASC
	`, prefixedProductColumns("p"))

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		item := &domain.OrderItem{}
		product := &domain.Product{}
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.UserID,
			&item.Quantity,
			&item.Ordered,
			&item.DateAdded,
			&product.ID,
			&product.Name,
			&product.Slug,
			&product.Description,
			&product.Price,
			&product.PriceWithDiscount,
			&product.Digital,
			&product.ImageURL,
			&product.Category,
			&product.Size,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, domain.CartLine{Item: item, Product: product})
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return order, lines, nil
}

func prefixedProductColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.name, %[1]s.slug, %[1]s.description, %[1]s.price,
		%[1]s.price_with_discount, %[1]s.digital, %[1]s.image_url, %[1]s.category,
		%[1]s.size, %[1]s.created_at, %[1]s.updated_at`, alias)
}

// AddProduct performs the whole add transition in a single transaction.
// Both get-or-creates upsert against partial unique indexes, so concurrent
// calls for the same user converge on one open order and one open item
// instead of racing query-then-create.
func (r *orderRepository) AddProduct(ctx context.Context, userID, productID uuid.UUID) (AddOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	// Get-or-create the open order.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, ordered, transaction_id, date_ordered)
		VALUES ($1, $2, FALSE, $3, $4)
		ON CONFLICT (user_id) WHERE NOT ordered DO NOTHING
	`, uuid.New(), userID, uuid.New().String(), now)
	if err != nil {
		return "", fmt.Errorf("failed to upsert open order: %w", err)
	}

	var orderID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE user_id = $1 AND NOT ordered
	`, userID).Scan(&orderID)
	if err != nil {
		return "", fmt.Errorf("failed to load open order: %w", err)
	}

	// Get-or-create the open item for this (product, user) pair.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_items (id, product_id, user_id, quantity, ordered, date_added)
		VALUES ($1, $2, $3, 1, FALSE, $4)
		ON CONFLICT (product_id, user_id) WHERE NOT ordered DO NOTHING
	`, uuid.New(), productID, userID, now)
	if err != nil {
		return "", fmt.Errorf("failed to upsert order item: %w", err)
	}

	var itemID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM order_items
		WHERE product_id = $1 AND user_id = $2 AND NOT ordered
	`, productID, userID).Scan(&itemID)
	if err != nil {
		return "", fmt.Errorf("failed to load order item: %w", err)
	}

	// Attach the item when it is not yet a member, increment otherwise.
	// The attach itself is an upsert so two concurrent adds cannot both
	// believe they attached first.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO order_products (order_id, item_id) VALUES ($1, $2)
		ON CONFLICT (order_id, item_id) DO NOTHING
	`, orderID, itemID)
	if err != nil {
		return "", fmt.Errorf("failed to attach item to order: %w", err)
	}

	attached, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read attach result: %w", err)
	}

	outcome := OutcomeAttached
	if attached == 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE order_items SET quantity = quantity + 1 WHERE id = $1
		`, itemID)
		if err != nil {
			return "", fmt.Errorf("failed to increment quantity: %w", err)
		}
		outcome = OutcomeIncremented
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit add to cart: %w", err)
	}

	return outcome, nil
}

// RemoveProduct removes the item's membership and the open item row itself,
// returning the (user, product) pair to the absent state.
func (r *orderRepository) RemoveProduct(ctx context.Context, userID, productID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderID, itemID, _, err := findOpenLine(ctx, tx, userID, productID)
	if err != nil {
		return err
	}

	if err := deleteLine(ctx, tx, orderID, itemID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit remove from cart: %w", err)
	}

	return nil
}

// DecreaseProduct decrements the quantity, removing the line at quantity
// one so a member line never reaches quantity zero.
func (r *orderRepository) DecreaseProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderID, itemID, quantity, err := findOpenLine(ctx, tx, userID, productID)
	if err != nil {
		return false, err
	}

	removed := false
	if quantity > 1 {
		_, err = tx.ExecContext(ctx, `
			UPDATE order_items SET quantity = quantity - 1 WHERE id = $1
		`, itemID)
		if err != nil {
			return false, fmt.Errorf("failed to decrement quantity: %w", err)
		}
	} else {
		if err := deleteLine(ctx, tx, orderID, itemID); err != nil {
			return false, err
		}
		removed = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit decrease quantity: %w", err)
	}

	return removed, nil
}

// findOpenLine locates the open order and the member item for a product.
// Returns ErrNoOpenOrder when the user has no open order and
// ErrItemNotInCart when the product is not a member of it.
func findOpenLine(ctx context.Context, tx *sql.Tx, userID, productID uuid.UUID) (orderID, itemID uuid.UUID, quantity int, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE user_id = $1 AND NOT ordered
	`, userID).Scan(&orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, uuid.Nil, 0, ErrNoOpenOrder
		}
		return uuid.Nil, uuid.Nil, 0, fmt.Errorf("failed to find open order: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT oi.id, oi.quantity
		FROM order_products op
		JOIN order_items oi ON oi.id = op.item_id
		WHERE op.order_id = $1 AND oi.product_id = $2
	`, orderID, productID).Scan(&itemID, &quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, uuid.Nil, 0, ErrItemNotInCart
		}
		return uuid.Nil, uuid.Nil, 0, fmt.Errorf("failed to find cart line: %w", err)
	}

	return orderID, itemID, quantity, nil
}

func deleteLine(ctx context.Context, tx *sql.Tx, orderID, itemID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM order_products WHERE order_id = $1 AND item_id = $2
	`, orderID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart membership: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM order_items WHERE id = $1 AND NOT ordered
	`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}

	return nil
}
