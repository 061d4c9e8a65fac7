package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and returns a session token for it.
//
// @Summary      Register a new account
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, _, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.FullName,
		Email:    req.Email,
		Password: domain.NewSecret(req.Password),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{Status: statusSuccess, Cookie: token})
}

// Login verifies a name and password and returns a session token.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /user/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.authService.Login(c.Request().Context(), domain.Credentials{
		Username: req.FullName,
		Password: domain.NewSecret(req.Password),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{Status: statusSuccess, Cookie: token})
}

// Logout revokes the bearer token used to authenticate the request.
//
// @Summary      Logout
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), principal); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: statusSuccess})
}
