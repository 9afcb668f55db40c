package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hackerforce/platform/internal/model"
	"github.com/hackerforce/platform/internal/service/course"
)

type CourseService interface {
	ListCourses(filter model.CourseFilter) ([]model.Course, error)
	Course(id model.CourseID) (*model.Course, error)
	Progress(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error)
	StartCourse(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error)
	UpdateProgress(userID model.UserID, courseID model.CourseID, moduleID, challengeID string) (*model.CourseProgress, error)
	RetakeCourse(userID model.UserID, courseID model.CourseID) (*model.CourseProgress, error)
	UserCourses(userID model.UserID) (*course.UserCourses, error)
	SectionStats() ([]course.SectionStats, error)
}

func ListCourses(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter := model.CourseFilter{
			Search:  c.QueryParam("search"),
			Section: c.QueryParam("section"),
			Sort:    c.QueryParam("sort"),
		}
		if level := c.QueryParam("level"); level != "" {
			parsed, err := strconv.Atoi(level)
			if err != nil {
				return sendError(c, http.StatusBadRequest, "level must be a number")
			}
			filter.Level = model.CourseLevel(parsed)
		}

		courses, err := courseService.ListCourses(filter)
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Courses retrieved successfully", courses)
	}
}

func GetCourse(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := courseService.Course(model.CourseID(c.Param("id")))
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Course retrieved successfully", found)
	}
}

func StartCourse(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		progress, err := courseService.StartCourse(user.ID, model.CourseID(c.Param("id")))
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Course started successfully", progress)
	}
}

func UpdateProgress(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			ModuleID    string `json:"moduleId"`
			ChallengeID string `json:"challengeId"`
		}{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}
		if params.ModuleID == "" {
			return sendError(c, http.StatusBadRequest, "moduleId is required")
		}

		user := CurrentUser(c)
		progress, err := courseService.UpdateProgress(user.ID, model.CourseID(c.Param("id")), params.ModuleID, params.ChallengeID)
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Progress updated successfully", progress)
	}
}

func RetakeCourse(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		progress, err := courseService.RetakeCourse(user.ID, model.CourseID(c.Param("id")))
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Course reset for retake", progress)
	}
}

func GetProgress(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		progress, err := courseService.Progress(user.ID, model.CourseID(c.Param("id")))
		if err != nil {
			if errors.Is(err, model.ErrorCourseNotStarted) {
				return sendSuccess(c, http.StatusOK, "Progress retrieved successfully", nil)
			}
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Progress retrieved successfully", progress)
	}
}

func GetUserCourses(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		courses, err := courseService.UserCourses(user.ID)
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "User courses retrieved successfully", courses)
	}
}

func GetSectionStats(courseService CourseService) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := courseService.SectionStats()
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Section stats retrieved successfully", stats)
	}
}
