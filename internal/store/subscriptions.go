package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hackerforce/platform/internal/model"
)

func (s *Store) CreateSubscription(sub *model.Subscription) error {
	_, err := s.db.NamedExec(`insert into subscription
		(ID, UserID, Plan, Status, StartDate, EndDate, CancelledAt, CancellationReason, CreatedAt)
		values(:ID, :UserID, :Plan, :Status, :StartDate, :EndDate, :CancelledAt, :CancellationReason, :CreatedAt)`,
		sub)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}
	return nil
}

// ActiveSubscription returns the user's active subscription regardless of its
// billing window.
func (s *Store) ActiveSubscription(userID model.UserID) (*model.Subscription, error) {
	sub := &model.Subscription{}
	err := s.db.Get(sub, `select * from subscription where UserID = ? and Status = ?`,
		userID, model.SubscriptionActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorSubscriptionNotFound
		}
		return nil, fmt.Errorf("fetching subscription: %w", err)
	}
	return sub, nil
}

// ActiveSubscriptionAt additionally requires the billing window to cover now.
func (s *Store) ActiveSubscriptionAt(userID model.UserID, now time.Time) (*model.Subscription, error) {
	sub := &model.Subscription{}
	err := s.db.Get(sub, `select * from subscription
		where UserID = ? and Status = ? and EndDate > ?`,
		userID, model.SubscriptionActive, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorSubscriptionNotFound
		}
		return nil, fmt.Errorf("fetching subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) LatestSubscription(userID model.UserID) (*model.Subscription, error) {
	sub := &model.Subscription{}
	err := s.db.Get(sub, `select * from subscription where UserID = ?
		order by CreatedAt desc limit 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorSubscriptionNotFound
		}
		return nil, fmt.Errorf("fetching subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) SaveSubscription(sub *model.Subscription) error {
	_, err := s.db.NamedExec(`update subscription set
		Status = :Status,
		EndDate = :EndDate,
		CancelledAt = :CancelledAt,
		CancellationReason = :CancellationReason
		where ID = :ID`, sub)
	if err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}
	return nil
}

// ExpireOverdue flips active subscriptions whose window has lapsed to
// expired and returns how many were flipped.
func (s *Store) ExpireOverdue(now time.Time) (int64, error) {
	res, err := s.db.Exec(`update subscription set Status = ?
		where Status = ? and EndDate < ?`,
		model.SubscriptionExpired, model.SubscriptionActive, now)
	if err != nil {
		return 0, fmt.Errorf("expiring subscriptions: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return rows, nil
}
