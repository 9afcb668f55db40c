package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/hackerforce/platform/internal/model"
)

const (
	monthlyDuration = 30 * 24 * time.Hour
	// A yearly plan grants three bonus months on top of the twelve paid for.
	yearlyDuration = 15 * monthlyDuration
)

type Database interface {
	CreateSubscription(sub *model.Subscription) error
	ActiveSubscription(userID model.UserID) (*model.Subscription, error)
	ActiveSubscriptionAt(userID model.UserID, now time.Time) (*model.Subscription, error)
	LatestSubscription(userID model.UserID) (*model.Subscription, error)
	SaveSubscription(sub *model.Subscription) error
	ExpireOverdue(now time.Time) (int64, error)
	UserByID(id model.UserID) (*model.User, error)
}

type Notifier interface {
	SendSubscriptionCancelled(ctx context.Context, email string) error
}

type service struct {
	db       Database
	notifier Notifier
	now      func() time.Time
}

func New(db Database, notifier Notifier) *service {
	return &service{
		db:       db,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Subscribe(userID model.UserID, plan model.SubscriptionPlan) (*model.Subscription, error) {
	if _, err := s.db.ActiveSubscription(userID); err == nil {
		return nil, model.ErrorConflict
	} else if !errors.Is(err, model.ErrorSubscriptionNotFound) {
		return nil, err
	}

	now := s.now()
	duration := monthlyDuration
	if plan == model.PlanYearly {
		duration = yearlyDuration
	}

	sub := &model.Subscription{
		ID:        model.CreateID(),
		UserID:    userID,
		Plan:      plan,
		Status:    model.SubscriptionActive,
		StartDate: now,
		EndDate:   now.Add(duration),
		CreatedAt: now,
	}

	if err := s.db.CreateSubscription(sub); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *service) Cancel(ctx context.Context, userID model.UserID, reason string) error {
	sub, err := s.db.ActiveSubscription(userID)
	if err != nil {
		return err
	}

	now := s.now()
	sub.Status = model.SubscriptionCancelled
	sub.CancelledAt = &now
	if reason != "" {
		sub.CancellationReason = &reason
	}

	if err := s.db.SaveSubscription(sub); err != nil {
		return err
	}

	user, err := s.db.UserByID(userID)
	if err == nil {
		if err := s.notifier.SendSubscriptionCancelled(ctx, user.Email); err != nil {
			log.Errorf("sending cancellation email: %+v", err)
		}
	}

	return nil
}

func (s *service) UserSubscription(userID model.UserID) (*model.Subscription, error) {
	return s.db.LatestSubscription(userID)
}

// HasAccess is the subscription gate consulted before course progress can
// start: true only for an active subscription whose window covers now.
func (s *service) HasAccess(userID model.UserID) (bool, error) {
	_, err := s.db.ActiveSubscriptionAt(userID, s.now())
	if err != nil {
		if errors.Is(err, model.ErrorSubscriptionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ProcessExpired flips lapsed active subscriptions to expired. The server
// runs this periodically.
func (s *service) ProcessExpired() error {
	expired, err := s.db.ExpireOverdue(s.now())
	if err != nil {
		return err
	}
	if expired > 0 {
		log.Infof("expired %d lapsed subscriptions", expired)
	}
	return nil
}
