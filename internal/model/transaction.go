package model

import "time"

type TransactionType string

const (
	TransactionEarn  TransactionType = "EARN"
	TransactionSpend TransactionType = "SPEND"
)

// Transaction is an immutable ledger entry. ChoreID is set only for EARN
// entries. Entries are never updated, only appended and cascade-deleted with
// their person.
type Transaction struct {
	ID          int64           `json:"id"`
	PersonID    int64           `json:"person_id"`
	ChoreID     *int64          `json:"chore_id,omitempty"`
	Description string          `json:"description"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
}
