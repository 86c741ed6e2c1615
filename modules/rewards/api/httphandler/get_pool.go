package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type getPoolResult struct {
	TotalDistributed decimal.Decimal `json:"totalDistributed"`
	TotalVesting     decimal.Decimal `json:"totalVesting"`
	RewardsRemaining decimal.Decimal `json:"rewardsRemaining"`
	RewardsAvailable decimal.Decimal `json:"rewardsAvailable"`
}

type getPoolResponse = HttpResponse[getPoolResult]

func (h *HttpHandler) GetPool(ctx *fiber.Ctx) (err error) {
	state, err := h.usecase.GetPoolState(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetPoolState")
	}

	resp := getPoolResponse{
		Result: &getPoolResult{
			TotalDistributed: state.TotalDistributed,
			TotalVesting:     state.TotalVesting,
			RewardsRemaining: state.RewardsRemaining,
			RewardsAvailable: state.RewardsAvailable,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
