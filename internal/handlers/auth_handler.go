package handlers

import (
	"errors"
	"log"

	"bloxstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	observer    *services.SessionObserver
	store       *services.Store
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, observer *services.SessionObserver, store *services.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		observer:    observer,
		store:       store,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
}

// RegisterRequest represents the request body for sign-up.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) authFailure(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrAlreadyRegistered):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrWeakPassword):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"message": services.TranslateAuthError(h.store.Language(), err),
		"error":   err.Error(),
	})
}

// HandleRegister handles new account registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	res, err := h.authService.SignUp(c.UserContext(), req.Email, req.Password, req.Username)
	if err != nil {
		log.Printf("Error registering account %s: %v", req.Email, err)
		return h.authFailure(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account registered successfully",
		"account": res.Account,
		"token":   res.Token,
	})
}

// HandleLogin handles login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	res, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return h.authFailure(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
	})
}

// HandleLogout saves the lists to the profile, signs out and clears local state.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.observer.Logout(c.UserContext()); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Could not sign out", err)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}
