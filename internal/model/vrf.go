package model

type Subscription struct {
	SubID     uint64   `json:"sub_id"`
	Balance   string   `json:"balance"`
	ReqCount  uint64   `json:"req_count"`
	Owner     string   `json:"owner"`
	Consumers []string `json:"consumers"`
}

type GetSubscriptionRequest struct {
	Coordinator string `json:"coordinator" form:"coordinator"`
	SubID       uint64 `json:"sub_id" form:"sub_id"`
}

type GetSubscriptionResponse struct {
	Subscription Subscription `json:"subscription"`
}

type FulfillRandomWordsRequest struct {
	Coordinator string `json:"coordinator"`
	From        string `json:"from"`
	RequestID   uint64 `json:"request_id"`
	Consumer    string `json:"consumer"`
	// Words overrides the generated random words when not empty. Each word is
	// a decimal uint256.
	Words []string `json:"words"`
}

type FulfillRandomWordsResponse struct {
	Success bool     `json:"success"`
	Payment string   `json:"payment"`
	Receipt *Receipt `json:"receipt"`
}
