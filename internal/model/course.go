package model

import "time"

type CourseID string

type CourseLevel int

const (
	CourseLevelI CourseLevel = iota + 1
	CourseLevelII
	CourseLevelIII
	CourseLevelIV
	CourseLevelV
)

const (
	SectionGeneral    = "General"
	SectionRedTeaming = "Red Teaming"
	SectionBlueTeam   = "Blue Teaming"
)

// Module is one unit of course content. Module and challenge ids are stable
// strings scoped to their course, e.g. "mod1".
type Module struct {
	ID      string `db:"ModuleID" json:"id"`
	Title   string `db:"Title" json:"title"`
	Content string `db:"Content" json:"content"`
}

// Challenge carries fixed rewards granted once per completion cycle.
type Challenge struct {
	ID          string `db:"ChallengeID" json:"id"`
	Title       string `db:"Title" json:"title"`
	Description string `db:"Description" json:"description"`
	XPReward    int    `db:"XPReward" json:"xpReward"`
	KeyReward   int    `db:"KeyReward" json:"keyReward"`
}

// Course is read-only to the auth/course/subscription services; only the
// seeder writes courses.
type Course struct {
	ID             CourseID    `db:"ID" json:"id"`
	CreatedAt      time.Time   `db:"CreatedAt" json:"createdAt"`
	Title          string      `db:"Title" json:"title"`
	Description    string      `db:"Description" json:"description"`
	Level          CourseLevel `db:"Level" json:"level"`
	Section        string      `db:"Section" json:"section"`
	TotalXP        int         `db:"TotalXP" json:"totalXP"`
	TotalKeys      int         `db:"TotalKeys" json:"totalKeys"`
	EstimatedHours int         `db:"EstimatedHours" json:"estimatedHours"`
	IsActive       bool        `db:"IsActive" json:"isActive"`
	Modules        []Module    `json:"modules"`
	Challenges     []Challenge `json:"challenges"`
}

// CourseFilter narrows and orders the active-course catalog.
type CourseFilter struct {
	Search  string
	Section string
	Level   CourseLevel
	Sort    string // newest (default), oldest, hardest, easiest
}

// ChallengeByID returns the challenge with the given id, or nil when the
// course has no such challenge.
func (c *Course) ChallengeByID(id string) *Challenge {
	for i := range c.Challenges {
		if c.Challenges[i].ID == id {
			return &c.Challenges[i]
		}
	}
	return nil
}

// FirstModuleID returns the id of the first module in course order, or ""
// for a course with no modules.
func (c *Course) FirstModuleID() string {
	if len(c.Modules) == 0 {
		return ""
	}
	return c.Modules[0].ID
}
