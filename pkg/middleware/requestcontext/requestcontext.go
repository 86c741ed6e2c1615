package requestcontext

import (
	"context"
	"net/http"

	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// Option derives a value from the request and stores it in ctx.
type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

// New applies opts in order and sets the result as the fiber user context.
// A failing option aborts the request with a 500 in the API's {"error": ...} envelope.
func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for i, opt := range opts {
			next, err := opt(ctx, c)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to extract request context", err,
					slogx.String("event", "requestcontext/error"),
					slogx.Int("option", i),
				)
				return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
			}
			ctx = next
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
