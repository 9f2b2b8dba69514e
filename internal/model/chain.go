package model

type GetBalanceRequest struct {
	Address string `json:"address" form:"address"`
}

type GetBalanceResponse struct {
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type FaucetRequest struct {
	Address string `json:"address"`
	// Amount is ether denominated, e.g. "10".
	Amount string `json:"amount"`
}

type FaucetResponse struct {
	Balance string `json:"balance"`
}

type IncreaseTimeRequest struct {
	Seconds int64 `json:"seconds"`
}

type IncreaseTimeResponse struct {
	Timestamp int64 `json:"timestamp"`
}

type MineRequest struct{}

type MineResponse struct {
	BlockNumber uint64 `json:"block_number"`
	Timestamp   int64  `json:"timestamp"`
}

type SetRejectPaymentsRequest struct {
	Address string `json:"address"`
	Reject  bool   `json:"reject"`
}

type SetRejectPaymentsResponse struct{}
