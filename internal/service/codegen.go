// internal/service/codegen.go
package service

import (
	"fmt"
	"math/rand"
)

// maxCodeAttempts bounds the collision retry in CreateOrder. With ~6.76M
// possible codes and only pending orders holding one, exhausting this
// signals a bug, not load.
const maxCodeAttempts = 5

// GenerateCode returns a correlation code: 2 uppercase letters + 4 digits,
// e.g. "AB1234". Payers put it in the transfer memo.
func GenerateCode() string {
	letters := string(rune('A'+rand.Intn(26))) + string(rune('A'+rand.Intn(26)))
	return fmt.Sprintf("%s%04d", letters, rand.Intn(10000))
}
