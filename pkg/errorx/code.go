package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Chain codes
	InsufficientFunds Code = 200001
	PaymentRejected   Code = 200002
	ContractNotFound  Code = 200003

	// Raffle codes
	InsufficientEntranceFee   Code = 300001
	RaffleNotOpen             Code = 300002
	UpkeepNotNeeded           Code = 300003
	TransferFailed            Code = 300004
	PlayerIndexOutOfRange     Code = 300005
	OnlyCoordinatorCanFulfill Code = 300006
	UnexpectedRequest         Code = 300007

	// VRF coordinator codes
	NonexistentRequest  Code = 400001
	InvalidSubscription Code = 400002
	InvalidConsumer     Code = 400003
	MustBeSubOwner      Code = 400004
	TooManyConsumers    Code = 400005
	InsufficientBalance Code = 400006
	InvalidRandomWords  Code = 400007
)
