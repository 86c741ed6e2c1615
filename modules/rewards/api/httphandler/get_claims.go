package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getClaimsRequest struct {
	Wallet    string `params:"wallet"`
	Unclaimed bool   `query:"unclaimed"`
}

func (r getClaimsRequest) Validate() error {
	var errList []error
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getClaimsResult struct {
	List []award `json:"list"`
}

type getClaimsResponse = HttpResponse[getClaimsResult]

// GetClaims lists the wallet's awards in activated epochs with the leaf fields and proof needed to claim them.
func (h *HttpHandler) GetClaims(ctx *fiber.Ctx) (err error) {
	var req getClaimsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	wallet, err := parseWallet(req.Wallet)
	if err != nil {
		return errors.WithStack(err)
	}

	claims, err := h.usecase.GetWalletClaims(ctx.UserContext(), wallet)
	if err != nil {
		return errors.Wrap(err, "error during GetWalletClaims")
	}

	list := make([]award, 0, len(claims))
	for _, claim := range claims {
		if req.Unclaimed && claim.Claim != nil {
			continue
		}
		item := award{
			Epoch:                  claim.Epoch,
			Root:                   claim.Award.Root,
			TotalPoints:            claim.Award.TotalPoints,
			PohAmount:              claim.Award.PohAmount,
			ClaimableNow:           claim.Award.ClaimableNow,
			VestingAmount:          claim.Award.VestingAmount,
			VestingDurationSeconds: claim.Award.VestingDurationSeconds,
			Veteran:                claim.Award.Veteran,
			Proof:                  claim.Award.Proof,
		}
		if claim.Claim != nil {
			item.Claimed = true
			item.ClaimedAt = optionalTime(claim.Claim.ClaimedAt)
			payout := claim.Claim.PayoutAddress
			item.PayoutAddress = &payout
		}
		list = append(list, item)
	}

	resp := getClaimsResponse{
		Result: &getClaimsResult{
			List: list,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
