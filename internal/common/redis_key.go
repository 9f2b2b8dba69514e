package common

import (
	"fmt"
	"strings"
)

func RedisKeyRaffle(address string) string {
	return fmt.Sprintf("raffle:%s", strings.ToLower(address))
}
