package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"kotoba-tutor/internal/auth"
	"kotoba-tutor/internal/domain"
	"kotoba-tutor/internal/service"
)

// AuthHandler handles registration, login, logout, and session lookup
type AuthHandler struct {
	authService   *service.AuthService
	secret        []byte
	secureCookies bool
}

// NewAuthHandler creates a new authentication handler. secureCookies should
// be true whenever the app is served over HTTPS.
func NewAuthHandler(authService *service.AuthService, secret []byte, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secret:        secret,
		secureCookies: secureCookies,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	NativeLanguage string `json:"nativeLanguage"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if req.Password == "" {
		fields["password"] = "required"
	}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if len(fields) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Missing required fields",
			"fields": fields,
		})
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name, req.NativeLanguage)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailExists):
			http.Error(w, `{"error":"User already exists"}`, http.StatusBadRequest)
		case errors.Is(err, domain.ErrInvalidInput):
			http.Error(w, `{"error":"Invalid registration details"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// Login handles user login and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"Email and password are required"}`, http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, `{"error":"Invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(auth.TokenTTL.Seconds())))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"message": "Login successful",
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side session state to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session reports the logged-in user, or null. It never fails: a missing,
// invalid, or expired cookie reads the same as being logged out.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	userID, err := auth.VerifyToken(cookie.Value, h.secret)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
