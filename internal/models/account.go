package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a versioned balance record. Version is the optimistic-concurrency
// fencing token: every committed balance mutation increments it by exactly 1,
// and a mutation only applies if the stored version still matches the snapshot
// it was computed from.
type Account struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"-"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

func NewAccount(ownerID string) Account {
	return Account{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Balance: decimal.Zero,
		Version: 0,
	}
}
