package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// IDSet is a set of module/challenge ids stored as a JSON array column.
// Membership is what matters; element order is not significant.
type IDSet []string

func (s IDSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless it is already present and reports whether the set
// changed.
func (s *IDSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

func (s IDSet) Value() (driver.Value, error) {
	if s == nil {
		s = IDSet{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshalling id set: %w", err)
	}
	return string(data), nil
}

func (s *IDSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = IDSet{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	default:
		return fmt.Errorf("unsupported id set column type %T", src)
	}
}

// CourseProgress is the per-(user, course) progress record, unique on that
// pair. It is created on course start, mutated on every progress update and
// reset in place (never deleted) on retake.
type CourseProgress struct {
	ID                  string     `db:"ID" json:"id"`
	UserID              UserID     `db:"UserID" json:"userId"`
	CourseID            CourseID   `db:"CourseID" json:"courseId"`
	CompletedModules    IDSet      `db:"CompletedModules" json:"completedModules"`
	CompletedChallenges IDSet      `db:"CompletedChallenges" json:"completedChallenges"`
	CurrentModule       string     `db:"CurrentModule" json:"currentModule"`
	ProgressPercentage  int        `db:"ProgressPercentage" json:"progressPercentage"`
	XPEarned            int        `db:"XPEarned" json:"xpEarned"`
	KeysEarned          int        `db:"KeysEarned" json:"keysEarned"`
	IsCompleted         bool       `db:"IsCompleted" json:"isCompleted"`
	CompletedAt         *time.Time `db:"CompletedAt" json:"completedAt,omitempty"`
	LastAccessedAt      time.Time  `db:"LastAccessedAt" json:"lastAccessedAt"`
	CreatedAt           time.Time  `db:"CreatedAt" json:"createdAt"`
}
