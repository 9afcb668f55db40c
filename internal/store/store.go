package store

import (
	"errors"
	"fmt"
	"path"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/hackerforce/platform/internal/boot"
	"github.com/hackerforce/platform/internal/model"
)

// Store is the shared persistent record store for accounts, courses, progress
// and subscriptions, backed by a single sqlite database under the configured
// data directory.
type Store struct {
	db *sqlx.DB
}

func Open(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory, "platform.db")

	db, err := sqlx.Connect("sqlite3", "file:"+dbName+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

// OpenInMemory opens a throwaway store for tests. The database is named so
// every pooled connection shares the same in-memory instance.
func OpenInMemory() (*Store, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+model.CreateID()+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`create table if not exists user(
		ID text not null primary key,
		CreatedAt                DATETIME not null,
		UpdatedAt                DATETIME null,
		Username                 text not null unique,
		Email                    text not null unique,
		Password                 text not null,
		Role                     text not null default 'user',
		IsActive                 boolean not null default true,
		LastLogin                DATETIME null,
		RememberMe               boolean not null default false,
		RememberMeExpires        DATETIME null,
		PasswordResetToken       text null,
		PasswordResetExpires     DATETIME null,
		PasswordResetAttempts    integer not null default 0,
		PasswordResetLastAttempt DATETIME null,
		AccountLocked            boolean not null default false,
		AccountLockedUntil       DATETIME null,
		TotalXP                  integer not null default 0,
		TotalKeys                integer not null default 0,
		CoursesCompleted         integer not null default 0,
		Rank                     text not null default 'Beginner'
	)`)
	if err != nil {
		return fmt.Errorf("creating user table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists course(
		ID text not null primary key,
		CreatedAt      DATETIME not null,
		Title          text not null,
		Description    text not null,
		Level          integer not null,
		Section        text not null,
		TotalXP        integer not null,
		TotalKeys      integer not null,
		EstimatedHours integer not null,
		IsActive       boolean not null default true
	)`)
	if err != nil {
		return fmt.Errorf("creating course table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists course_module(
		CourseID text not null references course(ID),
		ModuleID text not null,
		Position integer not null,
		Title    text not null,
		Content  text not null,
		primary key (CourseID, ModuleID)
	)`)
	if err != nil {
		return fmt.Errorf("creating course_module table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists course_challenge(
		CourseID    text not null references course(ID),
		ChallengeID text not null,
		Position    integer not null,
		Title       text not null,
		Description text not null,
		XPReward    integer not null,
		KeyReward   integer not null,
		primary key (CourseID, ChallengeID)
	)`)
	if err != nil {
		return fmt.Errorf("creating course_challenge table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists user_progress(
		ID text not null primary key,
		UserID              text not null references user(ID),
		CourseID            text not null references course(ID),
		CompletedModules    text not null default '[]',
		CompletedChallenges text not null default '[]',
		CurrentModule       text not null default '',
		ProgressPercentage  integer not null default 0,
		XPEarned            integer not null default 0,
		KeysEarned          integer not null default 0,
		IsCompleted         boolean not null default false,
		CompletedAt         DATETIME null,
		LastAccessedAt      DATETIME not null,
		CreatedAt           DATETIME not null,
		unique (UserID, CourseID)
	)`)
	if err != nil {
		return fmt.Errorf("creating user_progress table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists subscription(
		ID text not null primary key,
		UserID             text not null references user(ID),
		Plan               text not null,
		Status             text not null default 'active',
		StartDate          DATETIME not null,
		EndDate            DATETIME not null,
		CancelledAt        DATETIME null,
		CancellationReason text null,
		CreatedAt          DATETIME not null
	)`)
	if err != nil {
		return fmt.Errorf("creating subscription table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a sqlite unique-constraint failure,
// e.g. a duplicate username/email or a second progress record for the same
// (user, course) pair.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
