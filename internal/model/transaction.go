package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one statement line as handed over by the document-extraction
// subsystem. Only Description is consumed by the matching engine; Amount and
// Date travel alongside for the caller's benefit.
type Transaction struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewTransaction creates a transaction with a generated identifier.
func NewTransaction(description string, amount decimal.Decimal, date time.Time) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Date:        date,
	}
}
