package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// RateLimiter is a fixed-window request counter backed by its own in-memory
// sqlite database. Counters are ephemeral: a restart clears them.
type RateLimiter struct {
	db       *sqlx.DB
	points   int
	duration time.Duration
}

func NewRateLimiter(points int, duration time.Duration) (*RateLimiter, error) {
	db, err := sqlx.Connect("sqlite3", "file:ratelimit.db?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	limiter := &RateLimiter{db, points, duration}
	limiter.init()

	return limiter, nil
}

func (l *RateLimiter) init() {
	l.db.MustExec(`create table if not exists rate_limit (
		key text primary key,
		window_start DATETIME not null,
		count integer not null
	)`)
}

func (l *RateLimiter) Close() error {
	return l.db.Close()
}

// Allow consumes one point for key and reports whether the request is within
// budget for the current window.
func (l *RateLimiter) Allow(key string, now time.Time) (bool, error) {
	var row struct {
		WindowStart time.Time `db:"window_start"`
		Count       int       `db:"count"`
	}
	err := l.db.Get(&row, `select window_start, count from rate_limit where key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, err = l.db.Exec(`insert into rate_limit (key, window_start, count) values (?, ?, 1)`, key, now)
			if err != nil {
				return false, fmt.Errorf("inserting rate limit row: %w", err)
			}
			return l.points >= 1, nil
		}
		return false, fmt.Errorf("getting rate limit row: %w", err)
	}

	if now.Sub(row.WindowStart) >= l.duration {
		_, err = l.db.Exec(`update rate_limit set window_start = ?, count = 1 where key = ?`, now, key)
		if err != nil {
			return false, fmt.Errorf("resetting rate limit window: %w", err)
		}
		return l.points >= 1, nil
	}

	_, err = l.db.Exec(`update rate_limit set count = count + 1 where key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("incrementing rate limit count: %w", err)
	}
	return row.Count+1 <= l.points, nil
}
