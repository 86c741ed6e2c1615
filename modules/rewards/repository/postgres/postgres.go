package postgres

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/internal/postgres"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
)

// epochCloseLockKey is the advisory lock key serializing epoch close across processes.
const epochCloseLockKey int64 = 0x72657761726473 // "rewards"

var (
	_ datagateway.RewardsDataGateway       = (*Repository)(nil)
	_ datagateway.CollaboratorsDataGateway = (*Repository)(nil)
)

type Repository struct {
	db       postgres.DB
	queries  *gen.Queries
	tx       pgx.Tx
	treasury common.Address
}

// NewRepository returns a repository whose in-database token ledger pays from treasury.
func NewRepository(db postgres.DB, treasury common.Address) *Repository {
	return &Repository{
		db:       db,
		queries:  gen.New(db),
		treasury: treasury,
	}
}
