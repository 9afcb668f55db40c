package course

import (
	"errors"
	"fmt"
	"time"

	"github.com/hackerforce/platform/internal/model"
)

type Database interface {
	CourseByID(id model.CourseID) (*model.Course, error)
	ListCourses(filter model.CourseFilter) ([]model.Course, error)
	CountCoursesBySection(section string) (int, error)
	UserByID(id model.UserID) (*model.User, error)
	SaveUser(user *model.User) error
	CreateProgress(progress *model.CourseProgress) error
	ProgressFor(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error)
	ProgressForUser(userID model.UserID) ([]model.CourseProgress, error)
	SaveProgress(progress *model.CourseProgress) error
}

// SubscriptionGate is consulted before any course can be started.
type SubscriptionGate interface {
	HasAccess(userID model.UserID) (bool, error)
}

// CourseWithProgress pairs a catalog course with one user's progress on it.
type CourseWithProgress struct {
	model.Course
	Progress model.CourseProgress `json:"progress"`
}

// UserCourses splits a user's started courses by completion.
type UserCourses struct {
	InProgress []CourseWithProgress `json:"inProgress"`
	Completed  []CourseWithProgress `json:"completed"`
}

type SectionStats struct {
	Section          string   `json:"section"`
	TotalCourses     int      `json:"totalCourses"`
	AvailableCourses []string `json:"availableCourses"`
}

type service struct {
	db   Database
	gate SubscriptionGate
	now  func() time.Time
}

func New(db Database, gate SubscriptionGate) *service {
	return &service{
		db:   db,
		gate: gate,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) ListCourses(filter model.CourseFilter) ([]model.Course, error) {
	return s.db.ListCourses(filter)
}

func (s *service) Course(id model.CourseID) (*model.Course, error) {
	return s.db.CourseByID(id)
}

func (s *service) Progress(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error) {
	return s.db.ProgressFor(userID, courseID)
}

// StartCourse creates the progress record for (user, course), or returns the
// existing one unchanged. Starting requires subscription access.
func (s *service) StartCourse(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error) {
	hasAccess, err := s.gate.HasAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("checking subscription access: %w", err)
	}
	if !hasAccess {
		return nil, model.ErrorSubscriptionRequired
	}

	course, err := s.db.CourseByID(courseID)
	if err != nil {
		return nil, err
	}

	progress, err := s.db.ProgressFor(userID, courseID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, model.ErrorCourseNotStarted) {
		return nil, err
	}

	now := s.now()
	progress = &model.CourseProgress{
		ID:                  model.CreateID(),
		UserID:              userID,
		CourseID:            courseID,
		CompletedModules:    model.IDSet{},
		CompletedChallenges: model.IDSet{},
		CurrentModule:       course.FirstModuleID(),
		LastAccessedAt:      now,
		CreatedAt:           now,
	}

	if err := s.db.CreateProgress(progress); err != nil {
		if errors.Is(err, model.ErrorConflict) {
			// Lost the start race to a concurrent request; theirs counts.
			return s.db.ProgressFor(userID, courseID)
		}
		return nil, err
	}

	return progress, nil
}

// UpdateProgress runs the accrual engine over one module/challenge update and
// persists the progress record plus, when rewards or a completion accrued, the
// account. The two writes are not transactional; a crash between them can
// leave the account behind by one award.
func (s *service) UpdateProgress(userID model.UserID, courseID model.CourseID, moduleID, challengeID string) (*model.CourseProgress, error) {
	course, err := s.db.CourseByID(courseID)
	if err != nil {
		return nil, err
	}

	progress, err := s.db.ProgressFor(userID, courseID)
	if err != nil {
		return nil, err
	}

	award := ApplyUpdate(course, progress, moduleID, challengeID, s.now())

	if award.XP != 0 || award.Keys != 0 || award.CourseCompleted {
		user, err := s.db.UserByID(userID)
		if err != nil {
			return nil, err
		}
		user.TotalXP += award.XP
		user.TotalKeys += award.Keys
		if award.CourseCompleted {
			user.CoursesCompleted++
			user.UpdateRank()
		}
		if err := s.db.SaveUser(user); err != nil {
			return nil, err
		}
	}

	if err := s.db.SaveProgress(progress); err != nil {
		return nil, err
	}

	return progress, nil
}

// RetakeCourse resets an existing progress record in place; lifetime XP,
// keys and the completed-course count already awarded stay with the account.
// Without an existing record it behaves as StartCourse.
func (s *service) RetakeCourse(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error) {
	progress, err := s.db.ProgressFor(userID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrorCourseNotStarted) {
			return s.StartCourse(userID, courseID)
		}
		return nil, err
	}

	Reset(progress, s.now())
	if err := s.db.SaveProgress(progress); err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *service) UserCourses(userID model.UserID) (*UserCourses, error) {
	progresses, err := s.db.ProgressForUser(userID)
	if err != nil {
		return nil, err
	}

	result := &UserCourses{
		InProgress: []CourseWithProgress{},
		Completed:  []CourseWithProgress{},
	}

	for _, progress := range progresses {
		course, err := s.db.CourseByID(progress.CourseID)
		if err != nil {
			if errors.Is(err, model.ErrorCourseNotFound) {
				continue
			}
			return nil, err
		}

		entry := CourseWithProgress{Course: *course, Progress: progress}
		if progress.IsCompleted {
			result.Completed = append(result.Completed, entry)
		} else {
			result.InProgress = append(result.InProgress, entry)
		}
	}

	return result, nil
}

// availableCourses mirrors the curated per-section course lists shown on the
// catalog landing page.
var availableCourses = map[string][]string{
	model.SectionGeneral:    {"Computing Fundamentals", "Cybersecurity Fundamentals"},
	model.SectionRedTeaming: {"Red Teaming I"},
	model.SectionBlueTeam:   {"Blue Teaming I"},
}

func (s *service) SectionStats() ([]SectionStats, error) {
	sections := []string{model.SectionGeneral, model.SectionRedTeaming, model.SectionBlueTeam}

	stats := make([]SectionStats, 0, len(sections))
	for _, section := range sections {
		count, err := s.db.CountCoursesBySection(section)
		if err != nil {
			return nil, err
		}
		stats = append(stats, SectionStats{
			Section:          section,
			TotalCourses:     count,
			AvailableCourses: availableCourses[section],
		})
	}

	return stats, nil
}
