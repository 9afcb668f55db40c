package model

import "time"

type UserID string

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserRank is an ordinal tier derived solely from lifetime completed-course
// count.
type UserRank string

const (
	RankBeginner     UserRank = "Beginner"
	RankNovice       UserRank = "Novice"
	RankIntermediate UserRank = "Intermediate"
	RankAdvanced     UserRank = "Advanced"
	RankExpert       UserRank = "Expert"
)

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID                       UserID     `db:"ID" json:"id"`
	CreatedAt                time.Time  `db:"CreatedAt" json:"createdAt"`
	UpdatedAt                *time.Time `db:"UpdatedAt" json:"updatedAt,omitempty"`
	Username                 string     `db:"Username" json:"username"`
	Email                    string     `db:"Email" json:"email"`
	Password                 string     `db:"Password" json:"-"`
	Role                     UserRole   `db:"Role" json:"role"`
	IsActive                 bool       `db:"IsActive" json:"isActive"`
	LastLogin                *time.Time `db:"LastLogin" json:"lastLogin,omitempty"`
	RememberMe               bool       `db:"RememberMe" json:"-"`
	RememberMeExpires        *time.Time `db:"RememberMeExpires" json:"-"`
	PasswordResetToken       *string    `db:"PasswordResetToken" json:"-"`
	PasswordResetExpires     *time.Time `db:"PasswordResetExpires" json:"-"`
	PasswordResetAttempts    int        `db:"PasswordResetAttempts" json:"-"`
	PasswordResetLastAttempt *time.Time `db:"PasswordResetLastAttempt" json:"-"`
	AccountLocked            bool       `db:"AccountLocked" json:"-"`
	AccountLockedUntil       *time.Time `db:"AccountLockedUntil" json:"-"`
	TotalXP                  int        `db:"TotalXP" json:"totalXP"`
	TotalKeys                int        `db:"TotalKeys" json:"totalKeys"`
	CoursesCompleted         int        `db:"CoursesCompleted" json:"coursesCompleted"`
	Rank                     UserRank   `db:"Rank" json:"rank"`
}

// UserView is the subset of User safe to return from auth endpoints.
type UserView struct {
	ID        UserID   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	TotalXP   int      `json:"totalXP"`
	TotalKeys int      `json:"totalKeys"`
	Rank      UserRank `json:"rank"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		TotalXP:   u.TotalXP,
		TotalKeys: u.TotalKeys,
		Rank:      u.Rank,
	}
}

// RankFor returns the rank earned by the given completed-course count, or ""
// when the count is below the lowest threshold. The caller keeps the current
// rank in that case.
func RankFor(coursesCompleted int) UserRank {
	switch {
	case coursesCompleted >= 15:
		return RankExpert
	case coursesCompleted >= 12:
		return RankAdvanced
	case coursesCompleted >= 9:
		return RankIntermediate
	case coursesCompleted >= 6:
		return RankNovice
	case coursesCompleted >= 3:
		return RankBeginner
	}
	return ""
}

// UpdateRank recomputes the rank from the completed-course count. Counts below
// the lowest threshold leave the rank unchanged.
func (u *User) UpdateRank() {
	if rank := RankFor(u.CoursesCompleted); rank != "" {
		u.Rank = rank
	}
}
