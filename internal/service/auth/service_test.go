package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackerforce/platform/internal/boot"
	"github.com/hackerforce/platform/internal/model"
)

// fakeDB keeps account copies keyed by id so that only explicitly saved
// mutations are visible to later lookups.
type fakeDB struct {
	users map[model.UserID]model.User
	saves int
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: map[model.UserID]model.User{}}
}

func (f *fakeDB) CreateUser(user *model.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return model.ErrorConflict
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeDB) UserByID(id model.UserID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, model.ErrorUserNotFound
	}
	return &user, nil
}

func (f *fakeDB) UserByUsernameOrEmail(usernameOrEmail string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == usernameOrEmail || user.Email == usernameOrEmail {
			user := user
			return &user, nil
		}
	}
	return nil, model.ErrorUserNotFound
}

func (f *fakeDB) UserByResetToken(tokenDigest string, now time.Time) (*model.User, error) {
	for _, user := range f.users {
		if user.PasswordResetToken != nil && *user.PasswordResetToken == tokenDigest &&
			user.PasswordResetExpires != nil && user.PasswordResetExpires.After(now) {
			user := user
			return &user, nil
		}
	}
	return nil, model.ErrorInvalidResetToken
}

func (f *fakeDB) SaveUser(user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return model.ErrorUserNotFound
	}
	f.users[user.ID] = *user
	f.saves++
	return nil
}

type fakeNotifier struct {
	resets []string
	err    error
}

func (f *fakeNotifier) SendPasswordReset(ctx context.Context, email, username, resetLink string) error {
	f.resets = append(f.resets, resetLink)
	return f.err
}

func testConfig() *boot.Config {
	config := &boot.Config{}
	config.Env = "dev"
	config.FrontendURL = "http://localhost:3000"
	config.JWT.Secret = "test-secret"
	config.JWT.Expire = 24 * time.Hour
	config.JWT.RememberExpire = 30 * 24 * time.Hour
	return config
}

func newTestService(db *fakeDB, notifier *fakeNotifier, now time.Time) *service {
	s := New(testConfig(), db, notifier)
	s.now = func() time.Time { return now }
	return s
}

func seedUser(t *testing.T, db *fakeDB, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.Nil(t, err)

	user := &model.User{
		ID:        "u1",
		Username:  "testuser",
		Email:     "testuser@testdomain.com",
		Password:  string(hash),
		Role:      model.UserRoleUser,
		IsActive:  true,
		Rank:      model.RankBeginner,
		CreatedAt: time.Now().UTC(),
	}
	db.users[user.ID] = *user
	return user
}

func TestRegister(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates account and session", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		db := newFakeDB()
		s := newTestService(db, &fakeNotifier{}, now)

		session, err := s.Register(&model.RegisterParams{
			Username: "newuser",
			Email:    "NewUser@TestDomain.com",
			Password: "Tr1cky&Unrelated!",
		})
		require.Nil(err)
		assert.Equal("newuser", session.User.Username)
		assert.Equal("newuser@testdomain.com", session.User.Email)
		assert.Equal(model.RankBeginner, session.User.Rank)
		assert.NotEmpty(session.Token)

		stored, err := db.UserByID(session.User.ID)
		require.Nil(err)
		assert.True(stored.IsActive)
		assert.Nil(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Tr1cky&Unrelated!")))
	})

	t.Run("rejects weak password", func(t *testing.T) {
		s := newTestService(newFakeDB(), &fakeNotifier{}, now)
		_, err := s.Register(&model.RegisterParams{Username: "newuser", Email: "a@b.com", Password: "MyPassword1!"})
		assert.ErrorIs(t, err, model.ErrorWeakPassword)
	})

	t.Run("rejects password containing username", func(t *testing.T) {
		s := newTestService(newFakeDB(), &fakeNotifier{}, now)
		_, err := s.Register(&model.RegisterParams{Username: "newuser", Email: "a@b.com", Password: "xxNEWUSERxx1!"})
		assert.ErrorIs(t, err, model.ErrorPasswordTooSimilar)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		db := newFakeDB()
		seedUser(t, db, "irrelevant")
		s := newTestService(db, &fakeNotifier{}, now)
		_, err := s.Register(&model.RegisterParams{Username: "testuser", Email: "other@b.com", Password: "Tr1cky&Unrelated!"})
		assert.ErrorIs(t, err, model.ErrorConflict)
	})
}

func TestLogin(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("succeeds with username or email", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		db := newFakeDB()
		seedUser(t, db, "correct-horse")
		s := newTestService(db, &fakeNotifier{}, now)

		session, err := s.Login("testuser", "correct-horse", false)
		require.Nil(err)
		assert.NotEmpty(session.Token)

		session, err = s.Login("testuser@testdomain.com", "correct-horse", false)
		require.Nil(err)
		assert.NotEmpty(session.Token)

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.Equal(now, *stored.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		db := newFakeDB()
		seedUser(t, db, "correct-horse")
		s := newTestService(db, &fakeNotifier{}, now)
		_, err := s.Login("testuser", "wrong-horse", false)
		assert.ErrorIs(t, err, model.ErrorInvalidCredentials)
	})

	t.Run("unknown user maps to invalid credentials", func(t *testing.T) {
		s := newTestService(newFakeDB(), &fakeNotifier{}, now)
		_, err := s.Login("nobody", "whatever", false)
		assert.ErrorIs(t, err, model.ErrorInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		db := newFakeDB()
		user := seedUser(t, db, "correct-horse")
		user.IsActive = false
		db.users[user.ID] = *user
		s := newTestService(db, &fakeNotifier{}, now)
		_, err := s.Login("testuser", "correct-horse", false)
		assert.ErrorIs(t, err, model.ErrorAccountDeactivated)
	})

	t.Run("locked account", func(t *testing.T) {
		db := newFakeDB()
		user := seedUser(t, db, "correct-horse")
		user.AccountLocked = true
		until := now.Add(time.Hour)
		user.AccountLockedUntil = &until
		db.users[user.ID] = *user
		s := newTestService(db, &fakeNotifier{}, now)
		_, err := s.Login("testuser", "correct-horse", false)
		assert.ErrorIs(t, err, model.ErrorAccountLocked)
	})

	t.Run("expired lock clears on login", func(t *testing.T) {
		require := require.New(t)
		db := newFakeDB()
		user := seedUser(t, db, "correct-horse")
		user.AccountLocked = true
		until := now.Add(-time.Hour)
		user.AccountLockedUntil = &until
		db.users[user.ID] = *user
		s := newTestService(db, &fakeNotifier{}, now)

		_, err := s.Login("testuser", "correct-horse", false)
		require.Nil(err)

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.False(t, stored.AccountLocked)
		assert.Nil(t, stored.AccountLockedUntil)
	})

	t.Run("remember me sets expiry", func(t *testing.T) {
		require := require.New(t)
		db := newFakeDB()
		seedUser(t, db, "correct-horse")
		s := newTestService(db, &fakeNotifier{}, now)

		_, err := s.Login("testuser", "correct-horse", true)
		require.Nil(err)

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.True(t, stored.RememberMe)
		assert.Equal(t, now.Add(30*24*time.Hour), *stored.RememberMeExpires)
	})
}

func TestForgotPassword(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("issues token and notifies", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		db := newFakeDB()
		seedUser(t, db, "correct-horse")
		notifier := &fakeNotifier{}
		s := newTestService(db, notifier, now)

		err := s.ForgotPassword(ctx, "testuser")
		require.Nil(err)
		require.Len(notifier.resets, 1)
		assert.Contains(notifier.resets[0], "http://localhost:3000/reset-password?token=")

		stored, err := db.UserByID("u1")
		require.Nil(err)
		require.NotNil(stored.PasswordResetToken)
		assert.NotContains(notifier.resets[0], *stored.PasswordResetToken)
		assert.Equal(now.Add(time.Hour), *stored.PasswordResetExpires)
		assert.Equal(1, stored.PasswordResetAttempts)
	})

	t.Run("unknown account is silent", func(t *testing.T) {
		notifier := &fakeNotifier{}
		s := newTestService(newFakeDB(), notifier, now)
		err := s.ForgotPassword(ctx, "nobody@nowhere.com")
		assert.Nil(t, err)
		assert.Empty(t, notifier.resets)
	})

	t.Run("notifier failure does not corrupt reset state", func(t *testing.T) {
		require := require.New(t)
		db := newFakeDB()
		seedUser(t, db, "correct-horse")
		notifier := &fakeNotifier{err: errors.New("smtp down")}
		s := newTestService(db, notifier, now)

		err := s.ForgotPassword(ctx, "testuser")
		require.Nil(err)

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.NotNil(t, stored.PasswordResetToken)
	})

	t.Run("lock applied at threshold is persisted", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		db := newFakeDB()
		user := seedUser(t, db, "correct-horse")
		user.PasswordResetAttempts = 3
		lastAttempt := now.Add(-time.Hour)
		user.PasswordResetLastAttempt = &lastAttempt
		db.users[user.ID] = *user

		notifier := &fakeNotifier{}
		s := newTestService(db, notifier, now)

		err := s.ForgotPassword(ctx, "testuser")
		assert.ErrorIs(err, model.ErrorTooManyAttempts)
		assert.Empty(notifier.resets)

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.True(stored.AccountLocked)
		assert.Equal(now.Add(24*time.Hour), *stored.AccountLockedUntil)
	})

	t.Run("locked account attempt does not extend the lock", func(t *testing.T) {
		assert := assert.New(t)
		db := newFakeDB()
		user := seedUser(t, db, "correct-horse")
		user.AccountLocked = true
		until := now.Add(6 * time.Hour)
		user.AccountLockedUntil = &until
		db.users[user.ID] = *user
		s := newTestService(db, &fakeNotifier{}, now)

		err := s.ForgotPassword(ctx, "testuser")
		assert.ErrorIs(err, model.ErrorAccountLocked)

		stored, _ := db.UserByID("u1")
		assert.Equal(until, *stored.AccountLockedUntil)
	})
}

func TestResetPassword(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	issueToken := func(t *testing.T, s *service) string {
		t.Helper()
		notifier := s.notifier.(*fakeNotifier)
		require.Nil(t, s.ForgotPassword(ctx, "testuser"))
		require.Len(t, notifier.resets, 1)
		link := notifier.resets[0]
		return link[len("http://localhost:3000/reset-password?token="):]
	}

	t.Run("valid token sets new password and clears reset state", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		db := newFakeDB()
		user := seedUser(t, db, "old-password-value")
		user.PasswordResetAttempts = 2
		db.users[user.ID] = *user
		s := newTestService(db, &fakeNotifier{}, now)
		secret := issueToken(t, s)

		err := s.ResetPassword(secret, "Tr1cky&Unrelated!")
		require.Nil(err)

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.Nil(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Tr1cky&Unrelated!")))
		assert.Nil(stored.PasswordResetToken)
		assert.Nil(stored.PasswordResetExpires)
		assert.Equal(0, stored.PasswordResetAttempts)
		assert.False(stored.AccountLocked)
	})

	t.Run("expired token fails even with matching digest", func(t *testing.T) {
		db := newFakeDB()
		seedUser(t, db, "old-password-value")
		s := newTestService(db, &fakeNotifier{}, now)
		secret := issueToken(t, s)

		s.now = func() time.Time { return now.Add(time.Hour + time.Second) }
		err := s.ResetPassword(secret, "Tr1cky&Unrelated!")
		assert.ErrorIs(t, err, model.ErrorInvalidResetToken)
	})

	t.Run("unknown token fails", func(t *testing.T) {
		s := newTestService(newFakeDB(), &fakeNotifier{}, now)
		err := s.ResetPassword("deadbeef", "Tr1cky&Unrelated!")
		assert.ErrorIs(t, err, model.ErrorInvalidResetToken)
	})

	t.Run("weak replacement password is rejected", func(t *testing.T) {
		db := newFakeDB()
		seedUser(t, db, "old-password-value")
		s := newTestService(db, &fakeNotifier{}, now)
		secret := issueToken(t, s)

		err := s.ResetPassword(secret, "qwerty-keyboard1!")
		assert.ErrorIs(t, err, model.ErrorWeakPassword)

		stored, _ := db.UserByID("u1")
		assert.NotNil(t, stored.PasswordResetToken)
	})
}

func TestLogout(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("clears remember me", func(t *testing.T) {
		require := require.New(t)
		db := newFakeDB()
		user := seedUser(t, db, "correct-horse")
		user.RememberMe = true
		expires := now.Add(24 * time.Hour)
		user.RememberMeExpires = &expires
		db.users[user.ID] = *user
		s := newTestService(db, &fakeNotifier{}, now)

		require.Nil(s.Logout("u1"))

		stored, err := db.UserByID("u1")
		require.Nil(err)
		assert.False(t, stored.RememberMe)
		assert.Nil(t, stored.RememberMeExpires)
	})

	t.Run("unknown user is a no-op", func(t *testing.T) {
		s := newTestService(newFakeDB(), &fakeNotifier{}, now)
		assert.Nil(t, s.Logout("ghost"))
	})
}
