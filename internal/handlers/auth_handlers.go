// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/solent-ai/genchat/internal/domain"
	"github.com/solent-ai/genchat/internal/middleware"
	"github.com/solent-ai/genchat/internal/services"
)

var (
	usernameRegex     = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	passwordMinLength = 8
)

// AuthHandler holds the dependencies for account handlers.
type AuthHandler struct {
	UserService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{UserService: userService}
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates an account and logs the caller straight in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		writeError(w, "username must be 3-20 characters, alphanumeric or underscore", http.StatusBadRequest)
		return
	}
	if len(req.Password) < passwordMinLength {
		writeError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	account, err := h.UserService.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, _, err := h.UserService.Login(r.Context(), account.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  account,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and returns a JWT, also set as a cookie for
// browser callers.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	token, account, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  account,
	})
}

// Logout clears the auth cookie. Bearer-token callers just drop the
// token client side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetProfile returns the caller's account.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	account, err := h.UserService.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileJSON(account))
}

type profileUpdateRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateProfile edits the caller's name, email and avatar.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.UserService.UpdateProfile(r.Context(), userID, services.ProfileUpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileJSON(account))
}

func profileJSON(account *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":          account.ID,
		"email":       account.Email,
		"username":    account.Username,
		"first_name":  account.FirstName,
		"last_name":   account.LastName,
		"full_name":   account.FullName(),
		"avatar_url":  account.AvatarURL,
		"date_joined": account.CreatedAt,
	}
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
