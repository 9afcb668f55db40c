package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hackerforce/platform/internal/model"
)

// CreateCourse inserts the course and its modules/challenges in one
// transaction. Only the seeder calls this; the services treat courses as
// read-only.
func (s *Store) CreateCourse(course *model.Course) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`insert into course
		(ID, CreatedAt, Title, Description, Level, Section, TotalXP, TotalKeys, EstimatedHours, IsActive)
		values(:ID, :CreatedAt, :Title, :Description, :Level, :Section, :TotalXP, :TotalKeys, :EstimatedHours, :IsActive)`,
		course)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrorConflict
		}
		return fmt.Errorf("inserting course: %w", err)
	}

	for i, mod := range course.Modules {
		_, err = tx.Exec(`insert into course_module
			(CourseID, ModuleID, Position, Title, Content)
			values(?, ?, ?, ?, ?)`, course.ID, mod.ID, i, mod.Title, mod.Content)
		if err != nil {
			return fmt.Errorf("inserting module %s: %w", mod.ID, err)
		}
	}

	for i, ch := range course.Challenges {
		_, err = tx.Exec(`insert into course_challenge
			(CourseID, ChallengeID, Position, Title, Description, XPReward, KeyReward)
			values(?, ?, ?, ?, ?, ?, ?)`, course.ID, ch.ID, i, ch.Title, ch.Description, ch.XPReward, ch.KeyReward)
		if err != nil {
			return fmt.Errorf("inserting challenge %s: %w", ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing course: %w", err)
	}
	return nil
}

func (s *Store) CourseByID(id model.CourseID) (*model.Course, error) {
	course := &model.Course{}
	err := s.db.Get(course, `select * from course where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorCourseNotFound
		}
		return nil, fmt.Errorf("fetching course: %w", err)
	}

	if err := s.loadCourseContent(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Store) loadCourseContent(course *model.Course) error {
	err := s.db.Select(&course.Modules, `select ModuleID, Title, Content
		from course_module where CourseID = ? order by Position`, course.ID)
	if err != nil {
		return fmt.Errorf("fetching modules: %w", err)
	}

	err = s.db.Select(&course.Challenges, `select ChallengeID, Title, Description, XPReward, KeyReward
		from course_challenge where CourseID = ? order by Position`, course.ID)
	if err != nil {
		return fmt.Errorf("fetching challenges: %w", err)
	}
	return nil
}

func (s *Store) ListCourses(filter model.CourseFilter) ([]model.Course, error) {
	query := `select * from course where IsActive = true`
	args := []interface{}{}

	if filter.Search != "" {
		query += ` and Title like ?`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Section != "" {
		query += ` and Section = ?`
		args = append(args, filter.Section)
	}
	if filter.Level != 0 {
		query += ` and Level = ?`
		args = append(args, filter.Level)
	}

	switch filter.Sort {
	case "oldest":
		query += ` order by CreatedAt asc`
	case "hardest":
		query += ` order by Level desc`
	case "easiest":
		query += ` order by Level asc`
	default:
		query += ` order by CreatedAt desc`
	}

	courses := []model.Course{}
	if err := s.db.Select(&courses, query, args...); err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}

	for i := range courses {
		if err := s.loadCourseContent(&courses[i]); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

func (s *Store) CountCoursesBySection(section string) (int, error) {
	var count int
	err := s.db.Get(&count, `select count(*) from course where Section = ? and IsActive = true`, section)
	if err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return count, nil
}
