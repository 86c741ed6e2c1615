package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getRootStateResponse = HttpResponse[rootState]

func (h *HttpHandler) GetRootState(ctx *fiber.Ctx) (err error) {
	state, err := h.usecase.GetRootState(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetRootState")
	}

	result := mapRootState(state)
	resp := getRootStateResponse{
		Result: &result,
	}

	return errors.WithStack(ctx.JSON(resp))
}
