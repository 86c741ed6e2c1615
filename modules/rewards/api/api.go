package api

import (
	"github.com/gaze-network/epoch-rewards/modules/rewards/api/httphandler"
	"github.com/gaze-network/epoch-rewards/modules/rewards/usecase"
	"github.com/jonboulle/clockwork"
)

func NewHTTPHandler(usecase *usecase.Usecase, clock clockwork.Clock) *httphandler.HttpHandler {
	return httphandler.New(usecase, clock)
}
