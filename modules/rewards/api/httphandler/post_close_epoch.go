package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

const ActionCloseEpoch = "close_epoch"

type closeEpochResult struct {
	Distribution distribution `json:"distribution"`
	RootState    rootState    `json:"rootState"`
	Dropped      int          `json:"droppedDevices"`
}

type closeEpochResponse = HttpResponse[closeEpochResult]

// CloseEpoch runs the epoch close job now instead of waiting for the scheduler.
func (h *HttpHandler) CloseEpoch(ctx *fiber.Ctx) (err error) {
	var req ownerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	caller, err := h.authenticate(req.signedRequest, ActionCloseEpoch)
	if err != nil {
		return errors.WithStack(err)
	}

	report, err := h.usecase.CloseEpoch(ctx.UserContext(), caller)
	if err != nil {
		return errors.Wrap(err, "error during CloseEpoch")
	}

	resp := closeEpochResponse{
		Result: &closeEpochResult{
			Distribution: mapDistribution(report.Distribution),
			RootState:    mapRootState(report.RootState),
			Dropped:      len(report.Dropped),
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
