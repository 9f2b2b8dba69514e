package model

import (
	"github.com/mitchellh/mapstructure"
)

type Log struct {
	Index       int            `json:"index"`
	TxHash      string         `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
	Timestamp   int64          `json:"timestamp"`
	Address     string         `json:"address"`
	Name        string         `json:"name"`
	Topic       string         `json:"topic"`
	Args        map[string]any `json:"args"`
}

// Decode copies the log arguments into one of the typed event structs.
func (l Log) Decode(v any) error {
	return mapstructure.Decode(l.Args, v)
}

type Receipt struct {
	TxHash          string `json:"tx_hash"`
	From            string `json:"from"`
	To              string `json:"to,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
	Value           string `json:"value"`
	BlockNumber     uint64 `json:"block_number"`
	Timestamp       int64  `json:"timestamp"`
	Logs            []Log  `json:"logs"`
}

// FindLog returns the first log with the given event name.
func (r *Receipt) FindLog(name string) (Log, bool) {
	for _, l := range r.Logs {
		if l.Name == name {
			return l, true
		}
	}

	return Log{}, false
}
