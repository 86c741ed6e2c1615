package memory

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

func poolTotals(s *state) entity.PoolTotals {
	totals := entity.PoolTotals{TotalDistributed: decimal.Zero, TotalVesting: decimal.Zero}
	for _, claim := range s.claims {
		totals.TotalDistributed = totals.TotalDistributed.Add(claim.ClaimableNow)
	}
	for _, entry := range s.vesting {
		if entry.Released {
			totals.TotalDistributed = totals.TotalDistributed.Add(entry.Amount)
		} else {
			totals.TotalVesting = totals.TotalVesting.Add(entry.Amount)
		}
	}
	return totals
}

func (r *Repository) Balance(ctx context.Context) (decimal.Decimal, error) {
	return r.BalanceOf(ctx, r.store.treasury)
}

func (r *Repository) BalanceOf(ctx context.Context, holder common.Address) (decimal.Decimal, error) {
	result := decimal.Zero
	err := r.view(func(s *state) error {
		if balance, ok := s.balances[holder]; ok {
			result = balance
		}
		return nil
	})
	return result, err
}

func (r *Repository) Transfer(ctx context.Context, to common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errs.InvalidArgument, "transfer amount %s must be positive", amount)
	}
	return r.view(func(s *state) error {
		from := r.store.treasury
		balance := s.balances[from]
		if balance.LessThan(amount) {
			return errors.Errorf("insufficient treasury balance %s for transfer of %s", balance, amount)
		}
		s.balances[from] = balance.Sub(amount)
		s.balances[to] = s.balances[to].Add(amount)
		return nil
	})
}

// Deposit credits the treasury. The sender's balance is not tracked by this store.
func (r *Repository) Deposit(ctx context.Context, from common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errs.InvalidArgument, "deposit amount %s must be positive", amount)
	}
	return r.view(func(s *state) error {
		s.balances[r.store.treasury] = s.balances[r.store.treasury].Add(amount)
		return nil
	})
}
