package httphandler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/ledger"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	ActionClaim      = "claim"
	ActionClaimBatch = "claim_batch"
)

type claimRequest struct {
	signedRequest
	Epoch                  uint64          `json:"epoch"`
	ClaimableNow           decimal.Decimal `json:"claimableNow"`
	VestingAmount          decimal.Decimal `json:"vestingAmount"`
	VestingDurationSeconds uint64          `json:"vestingDurationSeconds"`
	Proof                  []common.Hash   `json:"proof"`
}

func (r claimRequest) Validate() error {
	return errs.WithPublicMessage(errors.Join(r.signedRequest.validate()...), "validation error")
}

// ClaimFields are the signed fields of a claim.
func ClaimFields(epoch uint64, claimableNow, vestingAmount decimal.Decimal, durationSeconds uint64, proof []common.Hash) []string {
	return []string{
		field("epoch", strconv.FormatUint(epoch, 10)),
		field("claimableNow", claimableNow.String()),
		field("vestingAmount", vestingAmount.String()),
		field("vestingDurationSeconds", strconv.FormatUint(durationSeconds, 10)),
		field("proof", hashesValue(proof)),
	}
}

func (h *HttpHandler) Claim(ctx *fiber.Ctx) (err error) {
	var req claimRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionClaim, ClaimFields(req.Epoch, req.ClaimableNow, req.VestingAmount, req.VestingDurationSeconds, req.Proof)...)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.Claim(ctx.UserContext(), caller, ledger.ClaimRequest{
		Epoch:                  req.Epoch,
		ClaimableNow:           req.ClaimableNow,
		VestingAmount:          req.VestingAmount,
		VestingDurationSeconds: req.VestingDurationSeconds,
		Proof:                  req.Proof,
	}); err != nil {
		return errors.Wrap(err, "error during Claim")
	}

	return errors.WithStack(ctx.JSON(mutationResponse{
		Result: &mutationResult{Caller: caller},
	}))
}

type claimBatchRequest struct {
	signedRequest
	Epochs                 []uint64          `json:"epochs"`
	ClaimableNows          []decimal.Decimal `json:"claimableNows"`
	VestingAmounts         []decimal.Decimal `json:"vestingAmounts"`
	VestingDurationSeconds []uint64          `json:"vestingDurationSeconds"`
	Proofs                 [][]common.Hash   `json:"proofs"`
}

func (r claimBatchRequest) Validate() error {
	errList := r.signedRequest.validate()
	if len(r.Epochs) == 0 {
		errList = append(errList, errors.New("'epochs' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

// ClaimBatchFields are the signed fields of a batch claim.
func ClaimBatchFields(epochs []uint64, claimableNows, vestingAmounts []decimal.Decimal, durations []uint64, proofs [][]common.Hash) []string {
	return []string{
		uintsField("epochs", epochs),
		decimalsField("claimableNows", claimableNows),
		decimalsField("vestingAmounts", vestingAmounts),
		uintsField("vestingDurationSeconds", durations),
		proofsField("proofs", proofs),
	}
}

// ClaimBatch claims every epoch of the request or none of them. Mismatched array lengths are rejected by the ledger.
func (h *HttpHandler) ClaimBatch(ctx *fiber.Ctx) (err error) {
	var req claimBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionClaimBatch, ClaimBatchFields(req.Epochs, req.ClaimableNows, req.VestingAmounts, req.VestingDurationSeconds, req.Proofs)...)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.ClaimBatch(ctx.UserContext(), caller, req.Epochs, req.ClaimableNows, req.VestingAmounts, req.VestingDurationSeconds, req.Proofs); err != nil {
		return errors.Wrap(err, "error during ClaimBatch")
	}

	return errors.WithStack(ctx.JSON(mutationResponse{
		Result: &mutationResult{Caller: caller},
	}))
}
