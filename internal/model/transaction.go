// internal/model/transaction.go
package model

import "time"

const TransactionDirectionIn = "in"

// Transaction is one entry from the external ledger index feed.
type Transaction struct {
	Direction string    `json:"direction"`
	Memo      string    `json:"memo"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
