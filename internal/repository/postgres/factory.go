package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/bkaratas/account-service/internal/repository"
)

type Repositories struct {
	Users    repo.Users
	Accounts repo.Accounts
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:    &usersRepo{pool},
		Accounts: &accountsRepo{db: pool, pool: pool},
	}
}
