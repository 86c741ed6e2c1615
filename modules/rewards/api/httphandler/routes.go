package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/rewards")

	r.Get("/root", h.GetRootState)
	r.Get("/epochs", h.GetEpochs)
	r.Get("/epochs/latest", h.GetLatestDistribution)
	r.Get("/epochs/:epoch", h.GetEpoch)
	r.Get("/claims/:wallet", h.GetClaims)
	r.Get("/vesting/:wallet", h.GetVesting)
	r.Get("/payout/:wallet", h.GetPayoutAddress)
	r.Get("/pool", h.GetPool)

	r.Post("/claim", h.Claim)
	r.Post("/claim/batch", h.ClaimBatch)
	r.Post("/release", h.ReleaseVested)
	r.Post("/release/batch", h.ReleaseVestedBatch)
	r.Post("/payout", h.SetPayoutAddress)

	r.Post("/root/stage", h.StageRoot)
	r.Post("/root/activate", h.ActivateRoot)
	r.Post("/root/cancel", h.CancelRoot)
	r.Post("/epochs/close", h.CloseEpoch)
	return nil
}
