package requestcontext

import (
	"context"

	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

type requestIdKey struct{}

// GetRequestId returns the request id stored by WithRequestId, or "".
func GetRequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}

// WithRequestId reuses the id set by the requestid middleware, generating one when it is not mounted,
// and tags every log line of the request with it.
func WithRequestId() Option {
	header := requestid.ConfigDefault.Header
	key := requestid.ConfigDefault.ContextKey
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		id, _ := c.Locals(key).(string)
		if id == "" {
			id = c.Get(header)
		}
		if id == "" {
			id = fiberutils.UUIDv4()
		}
		c.Set(header, id)
		c.Locals(key, id)

		ctx = context.WithValue(ctx, requestIdKey{}, id)
		return logger.WithContext(ctx, "request_id", id), nil
	}
}
