package types

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventTokensStaked      EventType = "stakeledger.v1.EventTokensStaked"
	EventTokensUnstaked    EventType = "stakeledger.v1.EventTokensUnstaked"
	EventStakeWithdrawable EventType = "stakeledger.v1.EventStakeWithdrawable"
)
