package transport

import (
	"net/http"

	"eshopper/internal/middleware"
	"eshopper/internal/repository"
	"eshopper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout submission payload
type CheckoutRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=30"`
	LastName    string `json:"last_name" validate:"required,max=30"`
	Email       string `json:"email" validate:"required,email"`
	MobilePhone string `json:"mobile_phone" validate:"required,max=30"`
	Address     string `json:"address" validate:"required,max=255"`
	Country     string `json:"country" validate:"required,len=2"`
	City        string `json:"city" validate:"required,max=30"`
	ZipCode     string `json:"zip_code" validate:"required,max=30"`
}

// ContactRequest represents the contact form payload
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
}

// CheckoutHandler handles checkout and contact form requests
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	contactService  service.ContactService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, contactService service.ContactService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		contactService:  contactService,
		logger:          logger,
	}
}

// RegisterRoutes registers checkout and contact routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCheckout)
		r.Post("/", h.SubmitCheckout)
	})

	r.Post("/api/contact", h.SubmitContact)
}

// GetCheckout handles rendering the checkout summary
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.checkoutService.Summary(r.Context(), userID)
	if err != nil {
		if err == repository.ErrNoOpenOrder {
			middleware.RespondWithError(w, http.StatusNotFound, service.MsgNoActiveOrder)
			return
		}

		h.logger.Error("Failed to load checkout summary", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load checkout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// SubmitCheckout handles a checkout form submission. A valid submission
// saves the shipping address snapshot; the order stays open.
func (h *CheckoutHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := h.checkoutService.Submit(r.Context(), userID, service.CheckoutInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		MobilePhone: req.MobilePhone,
		Address:     req.Address,
		Country:     req.Country,
		City:        req.City,
		ZipCode:     req.ZipCode,
	})
	if err != nil {
		if err == repository.ErrNoOpenOrder {
			middleware.RespondWithError(w, http.StatusNotFound, service.MsgNoActiveOrder)
			return
		}

		h.logger.Error("Checkout submission failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit checkout")
		return
	}

	h.logger.Info("Checkout submitted",
		zap.String("user_id", userID.String()),
		zap.String("address_id", address.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

// SubmitContact handles a contact form submission
func (h *CheckoutHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Contact validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.contactService.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message); err != nil {
		h.logger.Error("Contact submission failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Thank you for your message!"})
}
