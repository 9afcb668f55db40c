package model

import "errors"

var ErrorInvalidCredentials = errors.New("invalid credentials")
var ErrorAccountDeactivated = errors.New("account is deactivated")
var ErrorAccountLocked = errors.New("account is temporarily locked")
var ErrorTooManyAttempts = errors.New("too many password reset attempts")
var ErrorInvalidResetToken = errors.New("invalid or expired reset token")
var ErrorWeakPassword = errors.New("password contains weak keywords")
var ErrorPasswordTooSimilar = errors.New("password cannot be similar to username or email")
var ErrorUserNotFound = errors.New("user not found")
var ErrorCourseNotFound = errors.New("course not found")
var ErrorCourseNotStarted = errors.New("course not started")
var ErrorSubscriptionRequired = errors.New("subscription required to access courses")
var ErrorSubscriptionNotFound = errors.New("no active subscription found")
var ErrorConflict = errors.New("already exists")
var ErrorRateLimited = errors.New("too many requests")
