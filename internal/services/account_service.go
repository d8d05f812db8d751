package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bkaratas/account-service/internal/config"
	"github.com/bkaratas/account-service/internal/metrics"
	"github.com/bkaratas/account-service/internal/models"
	repo "github.com/bkaratas/account-service/internal/repository"
)

// AccountService is the balance mutation engine. Correctness under concurrent
// requests comes from the repository's conditional update: every mutation is
// fenced on the version read at snapshot time, and a transfer aborts its whole
// unit of work unless both legs report exactly one affected row. No locks are
// taken and conflicts are never retried here; the caller decides.
type AccountService struct {
	accounts       repo.Accounts
	receiverMaxBal decimal.Decimal
}

func NewAccountService(r repo.Accounts, cfg config.Config) *AccountService {
	return &AccountService{accounts: r, receiverMaxBal: cfg.ReceiverMaxBalance}
}

type TransferResult struct {
	Sender   string
	Receiver string
	Amount   decimal.Decimal
}

func (s *AccountService) Create(ctx context.Context, ownerID string) (models.Account, error) {
	a, err := s.accounts.Create(ctx, models.NewAccount(ownerID))
	if err != nil {
		return models.Account{}, err
	}
	metrics.AccountsCreated.Inc()
	return a, nil
}

func (s *AccountService) List(ctx context.Context, ownerID string) ([]models.Account, error) {
	return s.accounts.ListByOwner(ctx, ownerID)
}

func (s *AccountService) Get(ctx context.Context, id, ownerID string) (models.Account, error) {
	a, err := s.accounts.GetForOwner(ctx, id, ownerID)
	if errors.Is(err, repo.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	return a, err
}

// Deposit adds amount to the caller's account. A single conditional update is
// issued against the snapshot version; a lost race surfaces as ErrConflict.
func (s *AccountService) Deposit(ctx context.Context, id, ownerID string, amount decimal.Decimal) (models.Account, error) {
	if err := validAmount(amount); err != nil {
		metrics.DepositsTotal.WithLabelValues("rejected").Inc()
		return models.Account{}, err
	}

	snap, err := s.accounts.GetForOwner(ctx, id, ownerID)
	if errors.Is(err, repo.ErrNoRows) {
		metrics.DepositsTotal.WithLabelValues("rejected").Inc()
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}

	affected, err := s.accounts.ApplyDelta(ctx, snap.ID, snap.Version, amount)
	if err != nil {
		return models.Account{}, err
	}
	if affected != 1 {
		metrics.DepositsTotal.WithLabelValues("conflict").Inc()
		return models.Account{}, ErrConflict
	}
	metrics.DepositsTotal.WithLabelValues("success").Inc()
	return s.accounts.GetForOwner(ctx, id, ownerID)
}

// Transfer moves amount between two accounts atomically. Guard order follows
// the request contract: amount, source, target and its balance ceiling, same
// account, sufficient funds. Both conditional updates run in one unit of work
// and the whole thing rolls back unless each changed exactly one row.
func (s *AccountService) Transfer(ctx context.Context, senderID, receiverID, ownerID string, amount decimal.Decimal) (TransferResult, error) {
	res, err := s.transfer(ctx, senderID, receiverID, ownerID, amount)
	switch {
	case err == nil:
		metrics.TransfersTotal.WithLabelValues("success").Inc()
	case errors.Is(err, ErrConflict):
		metrics.TransfersTotal.WithLabelValues("conflict").Inc()
	default:
		metrics.TransfersTotal.WithLabelValues("rejected").Inc()
	}
	return res, err
}

func (s *AccountService) transfer(ctx context.Context, senderID, receiverID, ownerID string, amount decimal.Decimal) (TransferResult, error) {
	if err := validAmount(amount); err != nil {
		return TransferResult{}, err
	}

	sender, err := s.accounts.GetForOwner(ctx, senderID, ownerID)
	if errors.Is(err, repo.ErrNoRows) {
		return TransferResult{}, ErrInvalidSource
	}
	if err != nil {
		return TransferResult{}, err
	}

	receiver, err := s.accounts.GetByID(ctx, receiverID)
	if errors.Is(err, repo.ErrNoRows) || (err == nil && receiver.Balance.GreaterThanOrEqual(s.receiverMaxBal)) {
		return TransferResult{}, ErrInvalidTarget
	}
	if err != nil {
		return TransferResult{}, err
	}

	if sender.ID == receiver.ID {
		return TransferResult{}, ErrSameAccount
	}
	if sender.Balance.LessThan(amount) {
		return TransferResult{}, ErrInsufficientFunds
	}

	err = s.accounts.WithTx(ctx, func(tx repo.Accounts) error {
		debited, err := tx.ApplyDelta(ctx, sender.ID, sender.Version, amount.Neg())
		if err != nil {
			return err
		}
		credited, err := tx.ApplyDelta(ctx, receiver.ID, receiver.Version, amount)
		if err != nil {
			return err
		}
		// Either leg losing its version race voids the whole unit of work,
		// even if the other leg succeeded.
		if debited != 1 || credited != 1 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	slog.Info("transfer completed", "sender", sender.ID, "receiver", receiver.ID, "amount", amount)
	return TransferResult{Sender: sender.ID, Receiver: receiver.ID, Amount: amount}, nil
}

// validAmount accepts positive decimals with at most 4 fractional digits,
// matching the NUMERIC(19,4) storage scale.
func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.Exponent() < -4 {
		return ErrInvalidAmount
	}
	return nil
}
