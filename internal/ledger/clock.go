package ledger

import "time"

// Clock supplies the current time to the ledger. The host-environment clock
// is injected rather than read from time.Now directly so that reward
// calculations stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func SystemClock() Clock {
	return systemClock{}
}
