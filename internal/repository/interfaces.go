package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bkaratas/account-service/internal/models"
)

// ErrNoRows is returned by lookups when no matching row exists. The postgres
// and memory stores both translate their own not-found signals to it so the
// service layer can use errors.Is without knowing the backend.
var ErrNoRows = errors.New("repository: no rows")

type Users interface {
	Create(ctx context.Context, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type Accounts interface {
	Create(ctx context.Context, a models.Account) (models.Account, error)
	GetByID(ctx context.Context, id string) (models.Account, error)
	// GetForOwner loads an account only when it belongs to ownerID.
	GetForOwner(ctx context.Context, id, ownerID string) (models.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error)

	// ApplyDelta is the conditional update primitive: balance += delta and
	// version += 1, but only if the stored version still equals expected.
	// It reports the number of rows actually changed (0 or 1); 0 means a
	// concurrent mutation won the race.
	ApplyDelta(ctx context.Context, id string, expected int64, delta decimal.Decimal) (int64, error)

	// WithTx runs fn against a tx-scoped Accounts inside one database
	// transaction: commit on nil, rollback and propagate on error.
	WithTx(ctx context.Context, fn func(Accounts) error) error
}
