package model

type Raffle struct {
	Address              string `json:"address"`
	Network              string `json:"network"`
	ChainID              int64  `json:"chain_id"`
	Coordinator          string `json:"coordinator"`
	GasLane              string `json:"gas_lane"`
	SubscriptionID       uint64 `json:"subscription_id"`
	CallbackGasLimit     uint32 `json:"callback_gas_limit"`
	EntranceFee          string `json:"entrance_fee"`
	Interval             int64  `json:"interval"`
	State                string `json:"state"`
	LastTimestamp        int64  `json:"last_timestamp"`
	RecentWinner         string `json:"recent_winner"`
	OutstandingRequestID uint64 `json:"outstanding_request_id,omitempty"`
	Round                uint64 `json:"round"`
	NumberOfPlayers      int64  `json:"number_of_players"`
	Balance              string `json:"balance"`
}

type GetRaffleRequest struct {
	Address string `json:"address" form:"address"`
}

type GetRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}

type GetEntranceFeeResponse struct {
	EntranceFee string `json:"entrance_fee"`
}

type GetIntervalResponse struct {
	Interval int64 `json:"interval"`
}

type GetPlayerRequest struct {
	Address string `json:"address" form:"address"`
	Index   int    `json:"index" form:"index"`
}

type GetPlayerResponse struct {
	Player string `json:"player"`
}

type GetNumberOfPlayersResponse struct {
	NumberOfPlayers int64 `json:"number_of_players"`
}

type GetRaffleStateResponse struct {
	State      uint8  `json:"state"`
	StateLabel string `json:"state_label"`
}

type GetLastTimeStampResponse struct {
	LastTimeStamp int64 `json:"last_time_stamp"`
}

type GetRecentWinnerResponse struct {
	RecentWinner string `json:"recent_winner"`
}

type EnterLotteryRequest struct {
	Address string `json:"address"`
	From    string `json:"from"`
	// Value is the attached payment in wei. If empty the entrance fee is used.
	Value string `json:"value"`
	// Signature is the personal_sign of From over the sender message. It is
	// optional for operators.
	Signature string `json:"signature"`
}

type EnterLotteryResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type CheckUpkeepRequest struct {
	Address   string `json:"address" form:"address"`
	CheckData string `json:"check_data" form:"check_data"`
}

type CheckUpkeepResponse struct {
	UpkeepNeeded bool   `json:"upkeep_needed"`
	PerformData  string `json:"perform_data"`
}

type PerformUpkeepRequest struct {
	Address     string `json:"address"`
	From        string `json:"from"`
	PerformData string `json:"perform_data"`
	Signature   string `json:"signature"`
}

type PerformUpkeepResponse struct {
	RequestID uint64   `json:"request_id"`
	Receipt   *Receipt `json:"receipt"`
}
