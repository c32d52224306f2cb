package handler

import (
	"net/http"
	"time"

	"focusai-rest-api/internal/service"
	"focusai-rest-api/pkg/apierror"
	"focusai-rest-api/pkg/response"
)

// UserHandler serves per-user account state.
type UserHandler struct {
	premium *service.PremiumService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(premium *service.PremiumService) *UserHandler {
	return &UserHandler{premium: premium}
}

// PremiumStatus handles GET /api/v1/users/premium
func (h *UserHandler) PremiumStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.Error(w, apierror.BadRequest("user_id is required"))
		return
	}

	status := h.premium.Status(r.Context(), userID)
	response.OK(w, map[string]interface{}{
		"user_id":    status.UserID,
		"premium":    status.Active(time.Now()),
		"expires_at": status.ExpiresAt,
	})
}
