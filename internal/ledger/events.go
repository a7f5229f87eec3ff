package ledger

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
)

// EventSink receives the observable side effects of ledger operations.
// Sink failures are logged by the ledger but never roll back the state
// transition that produced the event.
type EventSink interface {
	TokensStaked(ctx context.Context, participant string, amount sdkmath.Int, since time.Time) error
	TokensUnstaked(ctx context.Context, participant string, principal, reward sdkmath.Int) error
}

type nopSink struct{}

func (nopSink) TokensStaked(context.Context, string, sdkmath.Int, time.Time) error {
	return nil
}

func (nopSink) TokensUnstaked(context.Context, string, sdkmath.Int, sdkmath.Int) error {
	return nil
}

func NopSink() EventSink {
	return nopSink{}
}
