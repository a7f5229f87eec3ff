package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomAddress returns a random participant address.
func RandomAddress(t *testing.T) string {
	t.Helper()

	addr, err := RandomAlphaNum(40)
	require.NoError(t, err)
	return "0x" + addr
}

// RandomAmount returns a random positive stake amount.
func RandomAmount(t *testing.T) sdkmath.Int {
	t.Helper()

	return sdkmath.NewInt(int64(gofakeit.IntRange(1, 1_000_000)))
}

// RandomStakeDocument returns a stake document in STAKING state with a
// consistent since/matures_at pair.
func RandomStakeDocument(t *testing.T, minStakingPeriod time.Duration) *model.StakeDocument {
	t.Helper()

	since := gofakeit.PastDate().UTC().Truncate(time.Millisecond)
	return &model.StakeDocument{
		Participant: RandomAddress(t),
		Amount:      RandomAmount(t).String(),
		Since:       since,
		MaturesAt:   since.Add(minStakingPeriod),
		State:       types.StateStaking,
		UpdatedAt:   since,
	}
}
