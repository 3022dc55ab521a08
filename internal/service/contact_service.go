package service

import (
	"context"
	"fmt"
	"time"

	"eshopper/internal/domain"
	"eshopper/internal/repository"

	"github.com/google/uuid"
)

// ContactService accepts contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
}

type contactService struct {
	contactRepo repository.ContactRepository
}

// NewContactService creates a new instance of ContactService
func NewContactService(contactRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

// Submit persists a contact message
func (s *contactService) Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		DateAdded: time.Now(),
	}

	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	return msg, nil
}
