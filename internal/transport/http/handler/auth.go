package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// POST /login
// 200 {success, message, data:{user, token}}; 401 on bad credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, false, msgInvalidBody, codeValidation)
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			respond(c, http.StatusUnauthorized, false, msgUnauthorized, nil)
			return
		}
		fail(c, h.logger, msgLoginFailed, err)
		return
	}

	respond(c, http.StatusOK, true, msgLoginSucceeded, loginResponse{
		User: userResponse{
			ID:        res.User.ID,
			Email:     res.User.Email,
			CreatedAt: res.User.CreatedAt,
			UpdatedAt: res.User.UpdatedAt,
		},
		Token: res.Token,
	})
}
