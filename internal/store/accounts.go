package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackerforce/platform/internal/model"
)

func (s *Store) CreateUser(user *model.User) error {
	res, err := s.db.NamedExec(`insert into user
		(ID, CreatedAt, Username, Email, Password, Role, IsActive,
		 RememberMe, PasswordResetAttempts, AccountLocked,
		 TotalXP, TotalKeys, CoursesCompleted, Rank)
		values(:ID, :CreatedAt, :Username, :Email, :Password, :Role, :IsActive,
		 :RememberMe, :PasswordResetAttempts, :AccountLocked,
		 :TotalXP, :TotalKeys, :CoursesCompleted, :Rank)`, user)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrorConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}

	return nil
}

func (s *Store) UserByID(id model.UserID) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from user where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

// UserByUsernameOrEmail resolves a login identifier: emails are matched
// lowercased, usernames verbatim.
func (s *Store) UserByUsernameOrEmail(usernameOrEmail string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from user where Email = ? or Username = ?`,
		strings.ToLower(usernameOrEmail), usernameOrEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

// UserByResetToken matches a stored reset-token digest that has not expired.
// Only the digest of the secret is ever stored, so the lookup key is the
// digest of the presented secret.
func (s *Store) UserByResetToken(tokenDigest string, now time.Time) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from user
		where PasswordResetToken = ? and PasswordResetExpires > ?`, tokenDigest, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorInvalidResetToken
		}
		return nil, fmt.Errorf("fetching user by reset token: %w", err)
	}
	return user, nil
}

// SaveUser writes back every mutable field of an existing account.
func (s *Store) SaveUser(user *model.User) error {
	now := time.Now().UTC()
	user.UpdatedAt = &now

	res, err := s.db.NamedExec(`update user set
		UpdatedAt = :UpdatedAt,
		Username = :Username,
		Email = :Email,
		Password = :Password,
		Role = :Role,
		IsActive = :IsActive,
		LastLogin = :LastLogin,
		RememberMe = :RememberMe,
		RememberMeExpires = :RememberMeExpires,
		PasswordResetToken = :PasswordResetToken,
		PasswordResetExpires = :PasswordResetExpires,
		PasswordResetAttempts = :PasswordResetAttempts,
		PasswordResetLastAttempt = :PasswordResetLastAttempt,
		AccountLocked = :AccountLocked,
		AccountLockedUntil = :AccountLockedUntil,
		TotalXP = :TotalXP,
		TotalKeys = :TotalKeys,
		CoursesCompleted = :CoursesCompleted,
		Rank = :Rank
		where ID = :ID`, user)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrorConflict
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return model.ErrorUserNotFound
	}

	return nil
}
