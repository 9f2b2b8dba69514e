package model

// OperatorToken is the payload of the bearer token required by the operator
// endpoints.
type OperatorToken struct {
	Name string `json:"name"`
}
