package entity

type Deployment struct {
	Base

	Network  string `gorm:"index"`
	ChainID  int64
	Contract ContractKind
	Address  string `gorm:"size:42"`
	TxHash   string `gorm:"size:66"`
	Args     Map
}
