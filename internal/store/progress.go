package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hackerforce/platform/internal/model"
)

// CreateProgress inserts a fresh progress record. A concurrent start of the
// same course surfaces as model.ErrorConflict via the (UserID, CourseID)
// unique constraint; callers treat that as a benign already-exists.
func (s *Store) CreateProgress(progress *model.CourseProgress) error {
	_, err := s.db.NamedExec(`insert into user_progress
		(ID, UserID, CourseID, CompletedModules, CompletedChallenges, CurrentModule,
		 ProgressPercentage, XPEarned, KeysEarned, IsCompleted, CompletedAt, LastAccessedAt, CreatedAt)
		values(:ID, :UserID, :CourseID, :CompletedModules, :CompletedChallenges, :CurrentModule,
		 :ProgressPercentage, :XPEarned, :KeysEarned, :IsCompleted, :CompletedAt, :LastAccessedAt, :CreatedAt)`,
		progress)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrorConflict
		}
		return fmt.Errorf("inserting progress: %w", err)
	}
	return nil
}

func (s *Store) ProgressFor(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error) {
	progress := &model.CourseProgress{}
	err := s.db.Get(progress, `select * from user_progress where UserID = ? and CourseID = ?`,
		userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorCourseNotStarted
		}
		return nil, fmt.Errorf("fetching progress: %w", err)
	}
	return progress, nil
}

func (s *Store) ProgressForUser(userID model.UserID) ([]model.CourseProgress, error) {
	progresses := []model.CourseProgress{}
	err := s.db.Select(&progresses, `select * from user_progress where UserID = ?
		order by LastAccessedAt desc`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user progress: %w", err)
	}
	return progresses, nil
}

func (s *Store) SaveProgress(progress *model.CourseProgress) error {
	res, err := s.db.NamedExec(`update user_progress set
		CompletedModules = :CompletedModules,
		CompletedChallenges = :CompletedChallenges,
		CurrentModule = :CurrentModule,
		ProgressPercentage = :ProgressPercentage,
		XPEarned = :XPEarned,
		KeysEarned = :KeysEarned,
		IsCompleted = :IsCompleted,
		CompletedAt = :CompletedAt,
		LastAccessedAt = :LastAccessedAt
		where ID = :ID`, progress)
	if err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return model.ErrorCourseNotStarted
	}
	return nil
}
