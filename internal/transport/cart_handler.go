package transport

import (
	"context"
	"net/http"

	"eshopper/internal/middleware"
	"eshopper/internal/repository"
	"eshopper/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the cart state machine
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers cart routes. Every route requires
// authentication; unauthenticated mutation attempts stop at the auth
// middleware with a warning and no state change. rateLimit may be nil.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		if rateLimit != nil {
			r.Use(rateLimit)
		}

		r.Get("/", h.ViewCart)
		r.Post("/items/{slug}", h.AddToCart)
		r.Delete("/items/{slug}", h.RemoveFromCart)
		r.Post("/items/{slug}/decrease", h.DecreaseQuantity)
	})
}

// ViewCart handles viewing the open order with its totals
func (h *CartHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.cartService.ViewCart(r.Context(), userID)
	if err != nil {
		if err == repository.ErrNoOpenOrder {
			middleware.RespondWithError(w, http.StatusNotFound, service.MsgNoActiveOrder)
			return
		}

		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddToCart handles the cumulative add transition
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cartService.AddToCart)
}

// RemoveFromCart handles full membership removal
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cartService.RemoveFromCart)
}

// DecreaseQuantity handles the decrement-or-remove transition
func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cartService.DecreaseQuantity)
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, transition func(context.Context, uuid.UUID, string) (*service.CartMutationResult, error)) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")

	result, err := transition(r.Context(), userID, slug)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Cart mutation failed",
			zap.String("slug", slug),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// requestUserID extracts the authenticated user's id from the context set
// by the auth middleware.
func requestUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.Error("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}

	return userID, true
}
