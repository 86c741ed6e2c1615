package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (r *Repository) Balance(ctx context.Context) (decimal.Decimal, error) {
	return r.BalanceOf(ctx, r.treasury)
}

func (r *Repository) BalanceOf(ctx context.Context, holder common.Address) (decimal.Decimal, error) {
	balance, err := r.queries.GetTokenBalance(ctx, addressKey(holder))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.Wrap(err, "error during query")
	}
	result, err := decimalFromNumeric(balance)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to parse balance")
	}
	return result, nil
}

// Transfer debits the treasury and credits to. Inside a transaction both sides commit with it.
func (r *Repository) Transfer(ctx context.Context, to common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errs.InvalidArgument, "transfer amount %s must be positive", amount)
	}
	return errors.WithStack(r.atomic(ctx, func(repo *Repository) error {
		affected, err := repo.queries.DebitTokenBalance(ctx, gen.DebitTokenBalanceParams{
			Amount: numericFromDecimal(amount),
			Holder: addressKey(repo.treasury),
		})
		if err != nil {
			return errors.Wrap(err, "failed to debit treasury")
		}
		if affected == 0 {
			return errors.Errorf("insufficient treasury balance for transfer of %s", amount)
		}
		if err := repo.queries.CreditTokenBalance(ctx, gen.CreditTokenBalanceParams{
			Holder:  addressKey(to),
			Balance: numericFromDecimal(amount),
		}); err != nil {
			return errors.Wrap(err, "failed to credit recipient")
		}
		return errors.WithStack(repo.recordTransfer(ctx, repo.treasury, to, amount))
	}))
}

// Deposit credits the treasury. The sender's balance is not tracked here.
func (r *Repository) Deposit(ctx context.Context, from common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errs.InvalidArgument, "deposit amount %s must be positive", amount)
	}
	return errors.WithStack(r.atomic(ctx, func(repo *Repository) error {
		if err := repo.queries.CreditTokenBalance(ctx, gen.CreditTokenBalanceParams{
			Holder:  addressKey(repo.treasury),
			Balance: numericFromDecimal(amount),
		}); err != nil {
			return errors.Wrap(err, "failed to credit treasury")
		}
		return errors.WithStack(repo.recordTransfer(ctx, from, repo.treasury, amount))
	}))
}

func (r *Repository) recordTransfer(ctx context.Context, from, to common.Address, amount decimal.Decimal) error {
	err := r.queries.CreateTokenTransfer(ctx, gen.CreateTokenTransferParams{
		FromAddress: addressKey(from),
		ToAddress:   addressKey(to),
		Amount:      numericFromDecimal(amount),
		CreatedAt:   timestamptz(time.Now()),
	})
	if err != nil {
		return errors.Wrap(err, "failed to record transfer")
	}
	return nil
}
