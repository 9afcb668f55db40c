package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackerforce/platform/internal/boot"
	"github.com/hackerforce/platform/internal/model"
)

const bcryptCost = 12

type Database interface {
	CreateUser(user *model.User) error
	UserByID(id model.UserID) (*model.User, error)
	UserByUsernameOrEmail(usernameOrEmail string) (*model.User, error)
	UserByResetToken(tokenDigest string, now time.Time) (*model.User, error)
	SaveUser(user *model.User) error
}

type Notifier interface {
	SendPasswordReset(ctx context.Context, email, username, resetLink string) error
}

// Session is the result of a successful register or login.
type Session struct {
	User  model.UserView `json:"user"`
	Token string         `json:"token"`
}

type service struct {
	config   *boot.Config
	db       Database
	notifier Notifier
	now      func() time.Time
}

func New(config *boot.Config, db Database, notifier Notifier) *service {
	return &service{
		config:   config,
		db:       db,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Register(params *model.RegisterParams) (*Session, error) {
	if err := ValidateNewPassword(params.Password, params.Username, params.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:        model.UserID(model.CreateID()),
		CreatedAt: now,
		Username:  params.Username,
		Email:     strings.ToLower(strings.TrimSpace(params.Email)),
		Password:  string(hash),
		Role:      model.UserRoleUser,
		IsActive:  true,
		Rank:      model.RankBeginner,
	}

	if err := s.db.CreateUser(user); err != nil {
		return nil, err
	}

	token, err := GenerateToken(user.ID, []byte(s.config.JWT.Secret), s.config.JWT.Expire, now)
	if err != nil {
		return nil, err
	}

	return &Session{User: user.View(), Token: token}, nil
}

func (s *service) Login(usernameOrEmail, password string, rememberMe bool) (*Session, error) {
	user, err := s.db.UserByUsernameOrEmail(usernameOrEmail)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil, model.ErrorInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, model.ErrorInvalidCredentials
	}

	if !user.IsActive {
		return nil, model.ErrorAccountDeactivated
	}

	now := s.now()
	if user.AccountLocked && user.AccountLockedUntil != nil && user.AccountLockedUntil.After(now) {
		return nil, model.ErrorAccountLocked
	}

	user.LastLogin = &now
	user.RememberMe = rememberMe
	user.AccountLocked = false
	user.AccountLockedUntil = nil

	validity := s.config.JWT.Expire
	if rememberMe {
		validity = s.config.JWT.RememberExpire
		expires := now.Add(s.config.JWT.RememberExpire)
		user.RememberMeExpires = &expires
	} else {
		user.RememberMeExpires = nil
	}

	if err := s.db.SaveUser(user); err != nil {
		return nil, err
	}

	token, err := GenerateToken(user.ID, []byte(s.config.JWT.Secret), validity, now)
	if err != nil {
		return nil, err
	}

	return &Session{User: user.View(), Token: token}, nil
}

// ForgotPassword runs the reset lockout state machine and, when allowed,
// issues a token and hands the reset link to the notifier. It is silent when
// no account matches so that callers cannot probe for registered emails, and
// the token is durable before any delivery is attempted.
func (s *service) ForgotPassword(ctx context.Context, usernameOrEmail string) error {
	user, err := s.db.UserByUsernameOrEmail(usernameOrEmail)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil
		}
		return err
	}

	now := s.now()
	if err := CheckResetAttempt(user, now); err != nil {
		if errors.Is(err, model.ErrorTooManyAttempts) {
			// The lock applied by this attempt must survive a restart.
			if saveErr := s.db.SaveUser(user); saveErr != nil {
				return saveErr
			}
		}
		return err
	}

	secret, err := IssueResetToken(user, now)
	if err != nil {
		return err
	}

	if err := s.db.SaveUser(user); err != nil {
		return err
	}

	resetLink := s.config.FrontendURL + "/reset-password?token=" + secret
	if err := s.notifier.SendPasswordReset(ctx, user.Email, user.Username, resetLink); err != nil {
		// Delivery is fire-and-forget: the token is already persisted.
		log.Errorf("sending password reset email: %+v", err)
	}

	return nil
}

func (s *service) ResetPassword(token, newPassword string) error {
	user, err := s.db.UserByResetToken(hashResetToken(token), s.now())
	if err != nil {
		return err
	}

	if err := ValidateNewPassword(newPassword, user.Username, user.Email); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.Password = string(hash)
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	user.PasswordResetAttempts = 0
	user.AccountLocked = false
	user.AccountLockedUntil = nil

	return s.db.SaveUser(user)
}

func (s *service) Logout(userID model.UserID) error {
	user, err := s.db.UserByID(userID)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil
		}
		return err
	}

	user.RememberMe = false
	user.RememberMeExpires = nil
	return s.db.SaveUser(user)
}
