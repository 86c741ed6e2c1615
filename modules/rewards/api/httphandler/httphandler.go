package httphandler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	rewardscommon "github.com/gaze-network/epoch-rewards/common"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/modules/rewards/usecase"
	"github.com/jonboulle/clockwork"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	clock   clockwork.Clock
}

func New(usecase *usecase.Usecase, clock clockwork.Clock) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		clock:   clock,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

func parseWallet(wallet string) (common.Address, error) {
	addr, err := rewardscommon.ParseAddress(wallet)
	if err != nil {
		return common.Address{}, errs.WithPublicMessage(err, "'wallet' is not a valid address")
	}
	return addr, nil
}

func parseEpoch(epoch string) (uint64, error) {
	n, err := strconv.ParseUint(epoch, 10, 64)
	if err != nil || n == 0 {
		return 0, errs.WithPublicMessage(errors.Wrap(errs.InputError, "invalid epoch"), "'epoch' must be a positive integer")
	}
	return n, nil
}
