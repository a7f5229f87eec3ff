package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiedStates(t *testing.T) {
	assert.Equal(t, []StakeState{StateStaking}, QualifiedStatesForWithdrawable())
	assert.Equal(t, []StakeState{StateStaking, StateWithdrawable}, QualifiedStatesForWithdrawn())
}

func TestStakeStateString(t *testing.T) {
	assert.Equal(t, "STAKING", StateStaking.String())
	assert.Equal(t, "WITHDRAWABLE", StateWithdrawable.String())
	assert.Equal(t, "WITHDRAWN", StateWithdrawn.String())
}
