package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/models"
	"github.com/shopkartapp/shopkart/internal/services"
)

type signupRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Phone       string          `json:"phone"`
	Address     *models.Address `json:"address"`
	DateOfBirth *time.Time      `json:"dateOfBirth"`
	Gender      string          `json:"gender"`
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Gender:   req.Gender,
	}
	if req.DateOfBirth != nil {
		input.DateOfBirth = *req.DateOfBirth
	}

	user, err := h.userService.Signup(ctx, input)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidInput):
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, db.ErrEmailTaken):
		respondMessage(w, http.StatusBadRequest, "User with this email already exists")
		return
	default:
		logger.Error("signup failed", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.userService.Login(ctx, req.Email, req.Password, clientIP(r))
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidInput):
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrNotRegistered):
		respondMessage(w, http.StatusUnauthorized, "Account not registered. Please sign up first.")
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	default:
		logger.Error("login failed", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

type upsertUserRequest struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Address *models.Address `json:"address"`
}

// UpsertUser creates or refreshes a profile by email, used for guest
// checkout.
func (h *Handlers) UpsertUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req upsertUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Upsert(ctx, services.UpsertUserInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidInput):
		respondMessage(w, http.StatusBadRequest, "name and email are required")
		return
	default:
		logger.Error("failed to upsert user", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to upsert user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *Handlers) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	user, err := h.userService.GetByEmail(ctx, mux.Vars(r)["email"])
	switch {
	case err == nil:
	case errors.Is(err, db.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	default:
		logger.Error("failed to fetch user", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *Handlers) GetUserByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	default:
		logger.Error("failed to fetch user", "user_id", userID, "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name        *string         `json:"name"`
	Phone       *string         `json:"phone"`
	Address     *models.Address `json:"address"`
	DateOfBirth *time.Time      `json:"dateOfBirth"`
	Gender      *string         `json:"gender"`
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, db.UserPatch{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	switch {
	case err == nil:
	case errors.Is(err, db.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	default:
		logger.Error("failed to update user", "user_id", userID, "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    user,
	})
}
