package model

type RaffleEnterEvent struct {
	Player string `structs:"player" mapstructure:"player"`
}

type RequestedRaffleWinnerEvent struct {
	RequestID uint64 `structs:"request_id" mapstructure:"request_id"`
}

type RecentWinnerEvent struct {
	Winner string `structs:"winner" mapstructure:"winner"`
}

type SubscriptionCreatedEvent struct {
	SubID uint64 `structs:"sub_id" mapstructure:"sub_id"`
	Owner string `structs:"owner" mapstructure:"owner"`
}

type SubscriptionFundedEvent struct {
	SubID      uint64 `structs:"sub_id" mapstructure:"sub_id"`
	OldBalance string `structs:"old_balance" mapstructure:"old_balance"`
	NewBalance string `structs:"new_balance" mapstructure:"new_balance"`
}

type ConsumerAddedEvent struct {
	SubID    uint64 `structs:"sub_id" mapstructure:"sub_id"`
	Consumer string `structs:"consumer" mapstructure:"consumer"`
}

type ConsumerRemovedEvent struct {
	SubID    uint64 `structs:"sub_id" mapstructure:"sub_id"`
	Consumer string `structs:"consumer" mapstructure:"consumer"`
}

type RandomWordsRequestedEvent struct {
	KeyHash                     string `structs:"key_hash" mapstructure:"key_hash"`
	RequestID                   uint64 `structs:"request_id" mapstructure:"request_id"`
	PreSeed                     uint64 `structs:"pre_seed" mapstructure:"pre_seed"`
	SubID                       uint64 `structs:"sub_id" mapstructure:"sub_id"`
	MinimumRequestConfirmations uint16 `structs:"minimum_request_confirmations" mapstructure:"minimum_request_confirmations"`
	CallbackGasLimit            uint32 `structs:"callback_gas_limit" mapstructure:"callback_gas_limit"`
	NumWords                    uint32 `structs:"num_words" mapstructure:"num_words"`
	Sender                      string `structs:"sender" mapstructure:"sender"`
}

type RandomWordsFulfilledEvent struct {
	RequestID  uint64 `structs:"request_id" mapstructure:"request_id"`
	OutputSeed uint64 `structs:"output_seed" mapstructure:"output_seed"`
	Payment    string `structs:"payment" mapstructure:"payment"`
	Success    bool   `structs:"success" mapstructure:"success"`
}
