package passreset

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrCodeNotFound          = errors.New("reset code not found")
	ErrCodeAlreadyUsed       = errors.New("reset code already consumed")
	ErrFailedToGenerateToken = errors.New("failed to generate reset token")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrDeliveryFailed        = errors.New("failed to deliver reset token")
)
