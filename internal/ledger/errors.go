package ledger

import "errors"

// InvalidAmountError is returned when a stake or funding amount is not positive.
type InvalidAmountError struct {
	Message string
}

func (e *InvalidAmountError) Error() string {
	return e.Message
}

func IsInvalidAmountError(err error) bool {
	var target *InvalidAmountError
	return errors.As(err, &target)
}

// InsufficientBalanceError is returned when the participant's balance on the
// asset ledger cannot cover the requested stake amount.
type InsufficientBalanceError struct {
	Participant string
	Message     string
}

func (e *InsufficientBalanceError) Error() string {
	return e.Message
}

func IsInsufficientBalanceError(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}

// StakingPeriodNotMetError is returned when unstake is attempted before the
// minimum staking period has elapsed since the last stake action.
type StakingPeriodNotMetError struct {
	Participant string
	Message     string
}

func (e *StakingPeriodNotMetError) Error() string {
	return e.Message
}

func IsStakingPeriodNotMetError(err error) bool {
	var target *StakingPeriodNotMetError
	return errors.As(err, &target)
}

// UnauthorizedError is returned when the caller lacks permission for a
// restricted operation.
type UnauthorizedError struct {
	Caller  string
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

func IsUnauthorizedError(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

// NoActiveStakeError is returned when unstake is attempted by a participant
// with a zero staked amount.
type NoActiveStakeError struct {
	Participant string
	Message     string
}

func (e *NoActiveStakeError) Error() string {
	return e.Message
}

func IsNoActiveStakeError(err error) bool {
	var target *NoActiveStakeError
	return errors.As(err, &target)
}

// StakingPausedError is returned when new stakes are rejected because the
// owner has paused the ledger.
type StakingPausedError struct {
	Message string
}

func (e *StakingPausedError) Error() string {
	return e.Message
}

func IsStakingPausedError(err error) bool {
	var target *StakingPausedError
	return errors.As(err, &target)
}
