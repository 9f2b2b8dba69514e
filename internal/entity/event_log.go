package entity

type EventLog struct {
	SnowFlakeBase

	TxHash      string `gorm:"index;size:66"`
	BlockNumber uint64
	LogIndex    int
	Address     string `gorm:"index;size:42"`
	Name        string `gorm:"index"`
	Topic       string `gorm:"size:66"`
	Args        Map
	Timestamp   int64
}
