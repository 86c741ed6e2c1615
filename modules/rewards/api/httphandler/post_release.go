package httphandler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	ActionRelease      = "release"
	ActionReleaseBatch = "release_batch"
)

type releaseRequest struct {
	signedRequest
	Epoch uint64 `json:"epoch"`
}

func (r releaseRequest) Validate() error {
	return errs.WithPublicMessage(errors.Join(r.signedRequest.validate()...), "validation error")
}

func ReleaseFields(epoch uint64) []string {
	return []string{field("epoch", strconv.FormatUint(epoch, 10))}
}

func (h *HttpHandler) ReleaseVested(ctx *fiber.Ctx) (err error) {
	var req releaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionRelease, ReleaseFields(req.Epoch)...)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.ReleaseVested(ctx.UserContext(), caller, req.Epoch); err != nil {
		return errors.Wrap(err, "error during ReleaseVested")
	}

	return errors.WithStack(ctx.JSON(mutationResponse{
		Result: &mutationResult{Caller: caller},
	}))
}

type releaseBatchRequest struct {
	signedRequest
	Epochs []uint64 `json:"epochs"`
}

func (r releaseBatchRequest) Validate() error {
	errList := r.signedRequest.validate()
	if len(r.Epochs) == 0 {
		errList = append(errList, errors.New("'epochs' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func ReleaseBatchFields(epochs []uint64) []string {
	return []string{uintsField("epochs", epochs)}
}

func (h *HttpHandler) ReleaseVestedBatch(ctx *fiber.Ctx) (err error) {
	var req releaseBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionReleaseBatch, ReleaseBatchFields(req.Epochs)...)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.ReleaseVestedBatch(ctx.UserContext(), caller, req.Epochs); err != nil {
		return errors.Wrap(err, "error during ReleaseVestedBatch")
	}

	return errors.WithStack(ctx.JSON(mutationResponse{
		Result: &mutationResult{Caller: caller},
	}))
}
