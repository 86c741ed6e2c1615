package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type getVestingRequest struct {
	Wallet string `params:"wallet"`
}

type getVestingResult struct {
	List   []vestingEntry  `json:"list"`
	Locked decimal.Decimal `json:"locked"`
}

type getVestingResponse = HttpResponse[getVestingResult]

func (h *HttpHandler) GetVesting(ctx *fiber.Ctx) (err error) {
	var req getVestingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	wallet, err := parseWallet(req.Wallet)
	if err != nil {
		return errors.WithStack(err)
	}

	entries, err := h.usecase.GetVestingEntries(ctx.UserContext(), wallet)
	if err != nil {
		return errors.Wrap(err, "error during GetVestingEntries")
	}

	locked := decimal.Zero
	for _, entry := range entries {
		if !entry.Released {
			locked = locked.Add(entry.Amount)
		}
	}

	resp := getVestingResponse{
		Result: &getVestingResult{
			List:   lo.Map(entries, func(entry entity.VestingEntry, _ int) vestingEntry { return mapVestingEntry(entry) }),
			Locked: locked,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
