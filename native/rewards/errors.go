package rewards

import "errors"

var (
	ErrAlreadyInitialized      = errors.New("rewards: pool already initialized")
	ErrPoolNotFound            = errors.New("rewards: pool not found")
	ErrPoolInactive            = errors.New("rewards: pool not active")
	ErrUnauthorized            = errors.New("rewards: unauthorized")
	ErrInvalidAmount           = errors.New("rewards: amount must be positive")
	ErrInvalidRewardType       = errors.New("rewards: invalid reward type")
	ErrInvalidExpiry           = errors.New("rewards: expiry must be in the future")
	ErrRewardNotFound          = errors.New("rewards: reward not found")
	ErrAlreadyClaimed          = errors.New("rewards: reward already claimed")
	ErrRewardExpired           = errors.New("rewards: reward expired")
	ErrInsufficientPoolBalance = errors.New("rewards: insufficient pool balance")
	ErrOverflow                = errors.New("rewards: balance overflow")
	ErrTransferFailed          = errors.New("rewards: transfer failed")
)
