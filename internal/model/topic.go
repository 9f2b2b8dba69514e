package model

var (
	// ChainEventTopic carries every committed log of the chain.
	ChainEventTopic = "CHAIN_EVENT"
)
