package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hackerforce/platform/internal/model"
)

const (
	maxResetAttempts   = 3
	resetAttemptWindow = 24 * time.Hour
	resetLockoutPeriod = 24 * time.Hour
	resetTokenTTL      = time.Hour
	resetTokenBytes    = 32
)

var weakPasswords = []string{"password", "secret", "qwerty"}

// CheckResetAttempt validates a password-reset attempt against the lockout
// policy and records it on the account's security fields. It never persists:
// the caller must save the account whenever the state changed, including the
// lock applied on model.ErrorTooManyAttempts. On model.ErrorAccountLocked the
// state is untouched and the existing lock stands as-is.
func CheckResetAttempt(user *model.User, now time.Time) error {
	if user.AccountLocked && user.AccountLockedUntil != nil && user.AccountLockedUntil.After(now) {
		return model.ErrorAccountLocked
	}

	// The sliding window resets before the threshold check, so the first
	// attempt after a window boundary always starts a fresh count and is
	// never itself blocked.
	if user.PasswordResetLastAttempt == nil || user.PasswordResetLastAttempt.Before(now.Add(-resetAttemptWindow)) {
		user.PasswordResetAttempts = 0
		ts := now
		user.PasswordResetLastAttempt = &ts
	}

	if user.PasswordResetAttempts >= maxResetAttempts {
		user.AccountLocked = true
		until := now.Add(resetLockoutPeriod)
		user.AccountLockedUntil = &until
		return model.ErrorTooManyAttempts
	}

	user.PasswordResetAttempts++
	ts := now
	user.PasswordResetLastAttempt = &ts
	return nil
}

// IssueResetToken generates a fresh reset secret, stores only its digest on
// the account and returns the plaintext secret for out-of-band delivery. The
// caller persists the account before the secret leaves the process.
func IssueResetToken(user *model.User, now time.Time) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	secret := hex.EncodeToString(raw)

	digest := hashResetToken(secret)
	user.PasswordResetToken = &digest
	expires := now.Add(resetTokenTTL)
	user.PasswordResetExpires = &expires

	return secret, nil
}

// hashResetToken is the one-way digest stored in place of the reset secret.
func hashResetToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// ValidateNewPassword rejects passwords containing known-weak keywords or the
// account's own username / email local part (case-insensitive substrings).
func ValidateNewPassword(password, username, email string) error {
	lowered := strings.ToLower(password)

	for _, weak := range weakPasswords {
		if strings.Contains(lowered, weak) {
			return model.ErrorWeakPassword
		}
	}

	if username != "" && strings.Contains(lowered, strings.ToLower(username)) {
		return model.ErrorPasswordTooSimilar
	}
	localPart := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if localPart != "" && strings.Contains(lowered, localPart) {
		return model.ErrorPasswordTooSimilar
	}

	return nil
}
