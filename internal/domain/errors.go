package domain

import "errors"

// Kind classifies a domain error for the transport layer.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindInsufficientResource Kind = "insufficient_resource"
	KindInvalidInput         Kind = "invalid_input"
	KindAlreadyDone          Kind = "already_done"
	KindUnauthorized         Kind = "unauthorized"
	KindConflict             Kind = "conflict"
	KindInternal             Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrPlayerNotFound     = newError(KindNotFound, "Player not found")
	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrUpgradeNotFound    = newError(KindNotFound, "Upgrade not found")
	ErrTaskNotFound       = newError(KindNotFound, "Task not found")
	ErrNoRewardsAvailable = newError(KindNotFound, "No rewards available")

	ErrInsufficientEnergy  = newError(KindInsufficientResource, "Not enough energy")
	ErrInsufficientBalance = newError(KindInsufficientResource, "Not enough coins")

	ErrInvalidTimestamp = newError(KindInvalidInput, "Invalid timestamp")
	ErrCostMismatch     = newError(KindInvalidInput, "Cost mismatch")
	ErrTaskNotCompleted = newError(KindInvalidInput, "Task not completed")
	ErrInvalidAmount    = newError(KindInvalidInput, "Invalid amount")
	ErrBalanceOverflow  = newError(KindInvalidInput, "Balance limit reached")

	ErrMaxLevelReached      = newError(KindAlreadyDone, "Upgrade already at max level")
	ErrAlreadyClaimedToday  = newError(KindAlreadyDone, "Reward already claimed today")
	ErrRewardAlreadyClaimed = newError(KindAlreadyDone, "Reward already claimed")

	ErrInvalidCredentials = newError(KindUnauthorized, "Invalid credentials")
	ErrInvalidToken       = newError(KindUnauthorized, "Invalid token")

	ErrUserExists = newError(KindConflict, "User already exists")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
