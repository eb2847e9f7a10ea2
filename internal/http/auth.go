package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/auth"
	"github.com/libtrary/libtrary/internal/database/users"
)

// Notifier schedules an email for delivery after the response is sent.
type Notifier interface {
	Notify(subject, body, to string) error
}

// AuthController handles registration, login and confirmation-token routes.
type AuthController struct {
	service   *auth.Service
	notifier  Notifier
	publicURL string
}

// NewAuthController creates the controller.
func NewAuthController(service *auth.Service, notifier Notifier, publicURL string) *AuthController {
	return &AuthController{
		service:   service,
		notifier:  notifier,
		publicURL: publicURL,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResendConfirmationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register handles POST /auth/register. The new account is inactive until
// the emailed confirmation token is redeemed.
func (a *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := a.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			respondBadRequest(c, "email already registered")
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "register")
		}
		return
	}

	a.sendConfirmationEmail(user.Email)
	respondCreated(c, SuccessResponse{
		Message: fmt.Sprintf("User %s registered successfully. Please check your email for confirmation.", user.Username),
	})
}

// Login handles POST /auth/login and issues an access/refresh token pair.
// The username field is matched against the email column.
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	accessToken, refreshToken, err := a.service.Authenticate(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondBadRequest(c, "incorrect email or password")
		case errors.Is(err, auth.ErrEmailNotConfirmed):
			respondBadRequest(c, "email not confirmed")
		default:
			respondInternalError(c, err, "login")
		}
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// ConfirmEmail handles GET /auth/confirm-email?token=...
func (a *AuthController) ConfirmEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondBadRequest(c, "token is required")
		return
	}

	_, err := a.service.ConfirmEmail(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			respondBadRequest(c, "invalid or expired token")
		case errors.Is(err, users.ErrNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "confirm email")
		}
		return
	}

	respondSuccess(c, "Email confirmed. You can now log in.")
}

// ResendConfirmation handles POST /auth/resend-confirmation. The caller must
// prove the credentials before a fresh token is issued.
func (a *AuthController) ResendConfirmation(c *gin.Context) {
	var req ResendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	_, err := a.service.ResendConfirmation(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrAlreadyConfirmed):
			respondBadRequest(c, "email already confirmed")
		case errors.Is(err, auth.ErrInvalidPassword):
			respondBadRequest(c, "incorrect password")
		default:
			respondInternalError(c, err, "resend confirmation")
		}
		return
	}

	a.sendConfirmationEmail(req.Email)
	respondSuccess(c, fmt.Sprintf("Confirmation email sent to %s. Please check your inbox.", req.Email))
}

func (a *AuthController) sendConfirmationEmail(email string) {
	token, err := a.service.Tokens().IssueConfirmationToken(email)
	if err != nil {
		log.Printf("Failed to issue confirmation token for %s: %v", email, err)
		return
	}
	body := fmt.Sprintf(
		"Please confirm your email by clicking the link: %s/auth/confirm-email?token=%s",
		a.publicURL, token,
	)
	if err := a.notifier.Notify("Confirm your email", body, email); err != nil {
		log.Printf("Failed to schedule confirmation email for %s: %v", email, err)
	}
}
