package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hackerforce/platform/internal/model"
)

type SubscriptionService interface {
	Subscribe(userID model.UserID, plan model.SubscriptionPlan) (*model.Subscription, error)
	Cancel(ctx context.Context, userID model.UserID, reason string) error
	UserSubscription(userID model.UserID) (*model.Subscription, error)
}

func Subscribe(subscriptionService SubscriptionService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Plan model.SubscriptionPlan `json:"plan"`
		}{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}
		if params.Plan != model.PlanMonthly && params.Plan != model.PlanYearly {
			return sendError(c, http.StatusBadRequest, "plan must be monthly or yearly")
		}

		user := CurrentUser(c)
		sub, err := subscriptionService.Subscribe(user.ID, params.Plan)
		if err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusCreated, "Subscription created successfully", sub)
	}
}

func CancelSubscription(subscriptionService SubscriptionService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &struct {
			Reason string `json:"reason"`
		}{}
		if err := c.Bind(params); err != nil {
			return sendError(c, http.StatusBadRequest, "invalid request body")
		}

		user := CurrentUser(c)
		if err := subscriptionService.Cancel(c.Request().Context(), user.ID, params.Reason); err != nil {
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Subscription cancelled", nil)
	}
}

func GetSubscription(subscriptionService SubscriptionService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		sub, err := subscriptionService.UserSubscription(user.ID)
		if err != nil {
			if errors.Is(err, model.ErrorSubscriptionNotFound) {
				return sendSuccess(c, http.StatusOK, "Subscription retrieved successfully", nil)
			}
			return fail(c, err)
		}
		return sendSuccess(c, http.StatusOK, "Subscription retrieved successfully", sub)
	}
}
