package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eshopper/internal/domain"
)

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) error
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts a contact message using parameterized queries
func (r *contactRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, date_added)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.Name,
		message.Email,
		message.Subject,
		message.Message,
		message.DateAdded,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}
