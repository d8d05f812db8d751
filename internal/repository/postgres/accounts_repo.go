package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bkaratas/account-service/internal/models"
	repo "github.com/bkaratas/account-service/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same repo code
// serves pooled reads and tx-scoped writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type accountsRepo struct {
	db   querier
	pool *pgxpool.Pool // nil when tx-scoped
}

func (r *accountsRepo) Create(ctx context.Context, a models.Account) (models.Account, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO accounts(id, owner_id, balance, version)
		 VALUES($1, $2, $3, $4)
		 RETURNING id, owner_id, balance, version, created_at, updated_at`,
		a.ID, a.OwnerID, a.Balance, a.Version,
	).Scan(&a.ID, &a.OwnerID, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, owner_id, balance, version, created_at, updated_at
		   FROM accounts
		  WHERE id=$1`,
		id,
	))
}

func (r *accountsRepo) GetForOwner(ctx context.Context, id, ownerID string) (models.Account, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, owner_id, balance, version, created_at, updated_at
		   FROM accounts
		  WHERE id=$1 AND owner_id=$2`,
		id, ownerID,
	))
}

func (r *accountsRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, balance, version, created_at, updated_at
		   FROM accounts
		  WHERE owner_id=$1
		  ORDER BY created_at`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApplyDelta is the compare-and-swap write: the WHERE clause fences on the
// version read at snapshot time, and the caller inspects the affected-row
// count. No row locks are taken.
func (r *accountsRepo) ApplyDelta(ctx context.Context, id string, expected int64, delta decimal.Decimal) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts
		    SET balance = balance + $3,
		        version = version + 1,
		        updated_at = now()
		  WHERE id = $1 AND version = $2`,
		id, expected, delta,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *accountsRepo) WithTx(ctx context.Context, fn func(repo.Accounts) error) error {
	if r.pool == nil {
		// already inside a transaction
		return fn(r)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	if err := fn(&accountsRepo{db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *accountsRepo) scanOne(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, repo.ErrNoRows
	}
	return a, err
}
