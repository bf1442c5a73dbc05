package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dom/gemrealm/internal/config"
	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/logging"
	"github.com/dom/gemrealm/internal/service"
)

type AuthHandler struct {
	registration *service.RegistrationService
	cookie       config.CookieConfig
	logger       *slog.Logger
}

func NewAuthHandler(registration *service.RegistrationService, cookie config.CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		cookie:       cookie,
		logger:       logger,
	}
}

type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type RegisterResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// UserResponse is the public view of an account. Balances are decimal strings.
type UserResponse struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	Role         string    `json:"role"`
	Gems         string    `json:"gems"`
	Crystals     string    `json:"crystals"`
	XP           string    `json:"xp"`
	Level        int       `json:"level"`
	ReferredByID *string   `json:"referred_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewUserResponse(a *domain.Account) UserResponse {
	resp := UserResponse{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		Role:      string(a.Role),
		Gems:      a.Gems.String(),
		Crystals:  a.Crystals.String(),
		XP:        a.XP.String(),
		Level:     a.Level,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.ReferredByID != nil {
		id := a.ReferredByID.String()
		resp.ReferredByID = &id
	}
	return resp
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.registration.Register(r.Context(), service.RegisterInput{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
	writeJSON(w, http.StatusOK, RegisterResponse{
		Success: true,
		User:    NewUserResponse(result.Account),
	})
}

func (h *AuthHandler) writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "Password must be at most 72 bytes")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Username and password are required")
	case errors.Is(err, domain.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already taken")
	default:
		logging.Error(h.logger, "registration failed", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}
