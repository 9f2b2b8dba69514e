package model

import "encoding/json"

type Deployment struct {
	Network  string         `json:"network"`
	ChainID  int64          `json:"chain_id"`
	Contract string         `json:"contract"`
	Address  string         `json:"address"`
	TxHash   string         `json:"tx_hash"`
	Args     map[string]any `json:"args"`
}

type DeployResult struct {
	Coordinator    *Deployment `json:"coordinator,omitempty"`
	Raffle         Deployment  `json:"raffle"`
	SubscriptionID uint64      `json:"subscription_id"`
}

type GetContractAddressesRequest struct{}

// GetContractAddressesResponse maps a chain id to the deployed raffle
// addresses, oldest first.
type GetContractAddressesResponse map[string][]string

type GetAbiRequest struct{}

type GetAbiResponse struct {
	Abi json.RawMessage `json:"abi"`
}

type GetEventsRequest struct {
	Address string `json:"address" form:"address"`
	Name    string `json:"name" form:"name"`
	Offset  int    `json:"offset" form:"offset"`
	Limit   int    `json:"limit" form:"limit"`
}

type GetEventsResponse struct {
	Events []Log `json:"events"`
}
