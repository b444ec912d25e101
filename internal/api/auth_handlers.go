package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"todonest/internal/auth"
	"todonest/internal/db"
	"todonest/internal/model"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
	Token   string      `json:"token,omitempty"`
}

// HandleRegister creates a new user account
func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateRegisterRequest(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := s.db.CreateUser(r.Context(), req.Email, strings.TrimSpace(req.Name), hashedPassword)
	if err != nil {
		if db.IsValidation(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to create user", zap.Error(err), zap.String("email", req.Email))
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.config.JWTSecret, s.config.JWTExpiry())
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))

	respondJSON(w, http.StatusCreated, AuthResponse{Success: true, User: user, Token: token})
}

// HandleLogin authenticates a user and returns a bearer token
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Same answer whether the account exists or the password is wrong.
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		s.logger.Debug("failed login attempt",
			zap.String("email", user.Email),
			zap.String("ip", clientIP(r)),
		)
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.config.JWTSecret, s.config.JWTExpiry())
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{Success: true, User: user, Token: token})
}

// HandleProfile returns the current authenticated user
func (s *Server) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := s.db.GetUserByID(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err, "get profile")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{Success: true, User: user})
}

// validateRegisterRequest validates the registration request
func validateRegisterRequest(req RegisterRequest) error {
	if req.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
		return fmt.Errorf("invalid email format")
	}
	return validatePasswordStrength(req.Password)
}

// validatePasswordStrength ensures the password meets the minimum requirements
func validatePasswordStrength(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hasDigit := false
	hasLetter := false
	for _, ch := range password {
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
			hasLetter = true
		}
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	return nil
}
