package httphandler

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gofiber/fiber/v2"
)

const ActionSetPayoutAddress = "set_payout_address"

type setPayoutAddressRequest struct {
	signedRequest
	Payout common.Address `json:"payout"` // zero address resets to the caller
}

func (r setPayoutAddressRequest) Validate() error {
	return errs.WithPublicMessage(errors.Join(r.signedRequest.validate()...), "validation error")
}

func SetPayoutAddressFields(payout common.Address) []string {
	return []string{field("payout", strings.ToLower(payout.Hex()))}
}

func (h *HttpHandler) SetPayoutAddress(ctx *fiber.Ctx) (err error) {
	var req setPayoutAddressRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionSetPayoutAddress, SetPayoutAddressFields(req.Payout)...)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.SetPayoutAddress(ctx.UserContext(), caller, req.Payout, time.Unix(req.Deadline, 0)); err != nil {
		return errors.Wrap(err, "error during SetPayoutAddress")
	}

	return errors.WithStack(ctx.JSON(mutationResponse{
		Result: &mutationResult{Caller: caller},
	}))
}
