package model

import (
	"github.com/shopspring/decimal"
)

// Transaction is one row of a bank export after cleanup.
type Transaction struct {
	Date        string          // as exported, e.g. "01/02/2025"
	Description string          // whitespace-normalized
	Amount      decimal.Decimal // negative = debit, positive = credit
}

// CategorizedTransaction is a Transaction with its resolved category and a
// short merchant hint for display.
type CategorizedTransaction struct {
	Transaction
	Merchant string
	Match
}
