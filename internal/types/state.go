package types

// Enum values for Stake State
type StakeState string

const (
	StateStaking      StakeState = "STAKING"
	StateWithdrawable StakeState = "WITHDRAWABLE"
	StateWithdrawn    StakeState = "WITHDRAWN"
)

func (s StakeState) String() string {
	return string(s)
}

// QualifiedStatesForWithdrawable returns the qualified current states for the
// transition to WITHDRAWABLE once the minimum staking period has elapsed.
func QualifiedStatesForWithdrawable() []StakeState {
	return []StakeState{StateStaking}
}

// QualifiedStatesForWithdrawn returns the qualified current states for the
// transition to WITHDRAWN on unstake.
func QualifiedStatesForWithdrawn() []StakeState {
	return []StakeState{StateStaking, StateWithdrawable}
}
