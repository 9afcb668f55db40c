package model

import "time"

type SubscriptionPlan string

const (
	PlanMonthly SubscriptionPlan = "monthly"
	PlanYearly  SubscriptionPlan = "yearly"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	ID                 string             `db:"ID" json:"id"`
	UserID             UserID             `db:"UserID" json:"userId"`
	Plan               SubscriptionPlan   `db:"Plan" json:"plan"`
	Status             SubscriptionStatus `db:"Status" json:"status"`
	StartDate          time.Time          `db:"StartDate" json:"startDate"`
	EndDate            time.Time          `db:"EndDate" json:"endDate"`
	CancelledAt        *time.Time         `db:"CancelledAt" json:"cancelledAt,omitempty"`
	CancellationReason *string            `db:"CancellationReason" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time          `db:"CreatedAt" json:"createdAt"`
}
