package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gaze-network/epoch-rewards/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
)

// StatusOf maps an error kind to its HTTP status. Unknown kinds map to 500.
func StatusOf(kind errs.ErrorKind) int {
	switch kind {
	case errs.InputError, errs.ProofError, errs.InvalidArgument:
		return http.StatusBadRequest
	case errs.Unauthorized:
		return http.StatusUnauthorized
	case errs.NotFound:
		return http.StatusNotFound
	case errs.StateConflict:
		return http.StatusConflict
	case errs.NotYetEligible:
		return http.StatusTooEarly
	default:
		return http.StatusInternalServerError
	}
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		kind := errs.KindOf(err)
		if e := new(errs.PublicError); errors.As(err, &e) {
			status := StatusOf(kind)
			if kind == "" {
				status = http.StatusBadRequest
			}
			return errors.WithStack(ctx.Status(status).JSON(fiber.Map{
				"error": e.Message(),
				"code":  e.Code(),
			}))
		}
		if kind != "" {
			return errors.WithStack(ctx.Status(StatusOf(kind)).JSON(fiber.Map{
				"error": err.Error(),
				"code":  string(kind),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).JSON(fiber.Map{
				"error": e.Error(),
			}))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error", err,
			slogx.String("event", "api_unhandled_error"),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":     "Internal Server Error",
			"requestId": requestcontext.GetRequestId(ctx.UserContext()),
		}))
	}
}
