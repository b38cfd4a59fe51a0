package types

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailInUse           = errors.New("email already in use")
	ErrNGONotFound          = errors.New("ngo not found")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrTagNotFound          = errors.New("tag not found")
	ErrTagInUse             = errors.New("tag in use")
	ErrDuplicateTag         = errors.New("duplicate tag")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrResetTokenInvalid    = errors.New("reset token invalid or expired")
	ErrImageNotFound        = errors.New("image not found")
)
