package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type getPayoutAddressRequest struct {
	Wallet string `params:"wallet"`
}

type getPayoutAddressResult struct {
	Wallet common.Address `json:"wallet"`
	Payout common.Address `json:"payout"`
}

type getPayoutAddressResponse = HttpResponse[getPayoutAddressResult]

func (h *HttpHandler) GetPayoutAddress(ctx *fiber.Ctx) (err error) {
	var req getPayoutAddressRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	wallet, err := parseWallet(req.Wallet)
	if err != nil {
		return errors.WithStack(err)
	}

	payout, err := h.usecase.GetPayoutAddress(ctx.UserContext(), wallet)
	if err != nil {
		return errors.Wrap(err, "error during GetPayoutAddress")
	}

	resp := getPayoutAddressResponse{
		Result: &getPayoutAddressResult{
			Wallet: wallet,
			Payout: payout,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
