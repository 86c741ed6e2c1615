package usecase

import (
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/epoch"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/ledger"
)

type Usecase struct {
	rewardsDg  datagateway.RewardsDataGateway
	ledger     *ledger.Ledger
	commitment *commitment.StateMachine
	closer     *epoch.Closer
}

func New(rewardsDg datagateway.RewardsDataGateway, ledger *ledger.Ledger, commitment *commitment.StateMachine, closer *epoch.Closer) *Usecase {
	return &Usecase{
		rewardsDg:  rewardsDg,
		ledger:     ledger,
		commitment: commitment,
		closer:     closer,
	}
}
