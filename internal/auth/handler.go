package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"

	"github.com/teju/task-manager/backend/internal/models"
	"github.com/teju/task-manager/backend/internal/store"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register creates a new user and returns a token for the new identity.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if !emailRe.MatchString(req.Email) {
		http.Error(w, `{"error":"invalid email"}`, http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, `{"error":"password must be at least 8 characters"}`, http.StatusBadRequest)
		return
	}
	if req.FullName == "" {
		http.Error(w, `{"error":"fullName is required"}`, http.StatusBadRequest)
		return
	}

	token, user, err := h.svc.Register(r.Context(), req.Email, req.Password, req.FullName)
	if errors.Is(err, store.ErrDuplicateEmail) {
		http.Error(w, `{"error":"email already registered"}`, http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("register: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.AuthResponse{
		Token:    token,
		Email:    user.Email,
		FullName: user.FullName,
	})
}

// Login verifies credentials and returns a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.AuthResponse{
		Token:    token,
		Email:    user.Email,
		FullName: user.FullName,
	})
}
