package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type epochRoot struct {
	Epoch       uint64      `json:"epoch"`
	Root        common.Hash `json:"root"`
	ActivatedAt time.Time   `json:"activatedAt"`
}

type getEpochsResult struct {
	List []epochRoot `json:"list"`
}

type getEpochsResponse = HttpResponse[getEpochsResult]

func (h *HttpHandler) GetEpochs(ctx *fiber.Ctx) (err error) {
	roots, err := h.usecase.GetEpochs(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetEpochs")
	}

	list := lo.Map(roots, func(root entity.EpochRoot, _ int) epochRoot {
		return epochRoot{
			Epoch:       root.Epoch,
			Root:        root.Root,
			ActivatedAt: root.ActivatedAt,
		}
	})

	resp := getEpochsResponse{
		Result: &getEpochsResult{
			List: list,
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}

type getEpochRequest struct {
	Epoch string `params:"epoch"`
}

type getEpochResult struct {
	epochRoot
	Distribution *distribution `json:"distribution"`
}

type getEpochResponse = HttpResponse[getEpochResult]

func (h *HttpHandler) GetEpoch(ctx *fiber.Ctx) (err error) {
	var req getEpochRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	epoch, err := parseEpoch(req.Epoch)
	if err != nil {
		return errors.WithStack(err)
	}

	info, err := h.usecase.GetEpoch(ctx.UserContext(), epoch)
	if err != nil {
		return errors.Wrap(err, "error during GetEpoch")
	}

	result := getEpochResult{
		epochRoot: epochRoot{
			Epoch:       info.EpochRoot.Epoch,
			Root:        info.EpochRoot.Root,
			ActivatedAt: info.EpochRoot.ActivatedAt,
		},
	}
	if info.Distribution != nil {
		dist := mapDistribution(*info.Distribution)
		result.Distribution = &dist
	}
	resp := getEpochResponse{
		Result: &result,
	}

	return errors.WithStack(ctx.JSON(resp))
}

type getLatestDistributionResponse = HttpResponse[distribution]

// GetLatestDistribution returns the latest closed period, staged or activated.
func (h *HttpHandler) GetLatestDistribution(ctx *fiber.Ctx) (err error) {
	dist, err := h.usecase.GetLatestDistribution(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetLatestDistribution")
	}

	result := mapDistribution(*dist)
	resp := getLatestDistributionResponse{
		Result: &result,
	}

	return errors.WithStack(ctx.JSON(resp))
}
