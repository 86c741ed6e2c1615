package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	ActionStageRoot    = "stage_root"
	ActionActivateRoot = "activate_root"
	ActionCancelRoot   = "cancel_root"
)

type stageRootRequest struct {
	signedRequest
	Root common.Hash `json:"root"`
}

func (r stageRootRequest) Validate() error {
	return errs.WithPublicMessage(errors.Join(r.signedRequest.validate()...), "validation error")
}

func StageRootFields(root common.Hash) []string {
	return []string{field("root", root.Hex())}
}

type rootStateResponse = HttpResponse[rootState]

// StageRoot stages a root computed outside the epoch close job. Only the owner may call it.
func (h *HttpHandler) StageRoot(ctx *fiber.Ctx) (err error) {
	var req stageRootRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionStageRoot, StageRootFields(req.Root)...)
	if err != nil {
		return errors.WithStack(err)
	}

	state, err := h.usecase.StageRoot(ctx.UserContext(), caller, req.Root)
	if err != nil {
		return errors.Wrap(err, "error during StageRoot")
	}

	result := mapRootState(state)
	return errors.WithStack(ctx.JSON(rootStateResponse{Result: &result}))
}

type ownerRequest struct {
	signedRequest
}

func (r ownerRequest) Validate() error {
	return errs.WithPublicMessage(errors.Join(r.signedRequest.validate()...), "validation error")
}

func (h *HttpHandler) ActivateRoot(ctx *fiber.Ctx) (err error) {
	var req ownerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionActivateRoot)
	if err != nil {
		return errors.WithStack(err)
	}

	state, err := h.usecase.ActivateRoot(ctx.UserContext(), caller)
	if err != nil {
		return errors.Wrap(err, "error during ActivateRoot")
	}

	result := mapRootState(state)
	return errors.WithStack(ctx.JSON(rootStateResponse{Result: &result}))
}

func (h *HttpHandler) CancelRoot(ctx *fiber.Ctx) (err error) {
	var req ownerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionCancelRoot)
	if err != nil {
		return errors.WithStack(err)
	}

	state, err := h.usecase.CancelRoot(ctx.UserContext(), caller)
	if err != nil {
		return errors.Wrap(err, "error during CancelRoot")
	}

	result := mapRootState(state)
	return errors.WithStack(ctx.JSON(rootStateResponse{Result: &result}))
}
