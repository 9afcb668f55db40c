package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hackerforce/platform/internal/model"
	"github.com/hackerforce/platform/internal/service/auth"
)

type AuthService interface {
	Register(params *model.RegisterParams) (*auth.Session, error)
	Login(usernameOrEmail, password string, rememberMe bool) (*auth.Session, error)
	ForgotPassword(ctx context.Context, usernameOrEmail string) error
	ResetPassword(token, newPassword string) error
	Logout(userID model.UserID) error
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateRegister(params *model.RegisterParams) string {
	if len(params.Username) < 3 || len(params.Username) > 30 {
		return "username must be between 3 and 30 characters"
	}
	if !usernamePattern.MatchString(params.Username) {
		return "username can only contain letters, numbers, underscores, and hyphens"
	}
	if !strings.Contains(params.Email, "@") {
		return "a valid email is required"
	}
	if len(params.Password) < 8 {
		return "password must be at least 8 characters"
	}
	return ""
}

func Register(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.RegisterParams{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}
		if msg := validateRegister(params); msg != "" {
			return sendError(c, http.StatusBadRequest, msg)
		}

		session, err := authService.Register(params)
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusCreated, "User registered successfully", session)
	}
}

func Login(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			UsernameOrEmail string `json:"usernameOrEmail"`
			Password        string `json:"password"`
			RememberMe      bool   `json:"rememberMe"`
		}{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}
		if params.UsernameOrEmail == "" || params.Password == "" {
			return sendError(c, http.StatusBadRequest, "usernameOrEmail and password are required")
		}

		session, err := authService.Login(params.UsernameOrEmail, params.Password, params.RememberMe)
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Login successful", session)
	}
}

// ForgotPassword is success-shaped even when no account matches, so the
// endpoint cannot be used to probe for registered emails.
func ForgotPassword(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			UsernameOrEmail string `json:"usernameOrEmail"`
		}{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}
		if params.UsernameOrEmail == "" {
			return sendError(c, http.StatusBadRequest, "usernameOrEmail is required")
		}

		if err := authService.ForgotPassword(c.Request().Context(), params.UsernameOrEmail); err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Password reset email sent if account exists", nil)
	}
}

func ResetPassword(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Token           string `json:"token"`
			NewPassword     string `json:"newPassword"`
			ConfirmPassword string `json:"confirmPassword"`
		}{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}
		if params.Token == "" {
			return sendError(c, http.StatusBadRequest, "token is required")
		}
		if len(params.NewPassword) < 12 {
			return sendError(c, http.StatusBadRequest, "password must be at least 12 characters")
		}
		if params.ConfirmPassword != params.NewPassword {
			return sendError(c, http.StatusBadRequest, "passwords do not match")
		}

		if err := authService.ResetPassword(params.Token, params.NewPassword); err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Password reset successfully", nil)
	}
}

func Logout(authService AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user := CurrentUser(c); user != nil {
			if err := authService.Logout(user.ID); err != nil {
				return fail(c, err)
			}
		}
		return sendSuccess(c, http.StatusOK, "Logout successful", nil)
	}
}
