package httphandler

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/epoch-rewards/modules/rewards/datagateway"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/allocation"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/commitment"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/epoch"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/ledger"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/merkle"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/vesting"
	"github.com/gaze-network/epoch-rewards/modules/rewards/repository/memory"
	"github.com/gaze-network/epoch-rewards/modules/rewards/usecase"
	"github.com/gaze-network/epoch-rewards/pkg/decimals"
	"github.com/gaze-network/epoch-rewards/pkg/errorhandler"
	"github.com/gaze-network/epoch-rewards/pkg/ethsig"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenDecimals = 18

var (
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	other    = common.HexToAddress("0x000000000000000000000000000000000000000b")
	genesis  = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	app      *fiber.App
	repo     *memory.Repository
	clock    *clockwork.FakeClock
	sm       *commitment.StateMachine
	ownerKey *ecdsa.PrivateKey
	userKey  *ecdsa.PrivateKey
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ownerKey := newKey(t)
	userKey := newKey(t)
	owner := crypto.PubkeyToAddress(ownerKey.PublicKey)

	repo := memory.NewRepository(treasury)
	require.NoError(t, repo.Deposit(context.Background(), treasury, decimal.NewFromInt(1000)))
	clock := clockwork.NewFakeClockAt(genesis)

	sm := commitment.New(repo, clock, owner, commitment.DefaultTimelock)
	closer := epoch.NewCloser(repo, repo, sm, nil, clock, epoch.Config{
		Calendar: epoch.Calendar{Genesis: genesis, Length: epoch.DefaultPeriodLength},
		Pools: map[entity.Tier]decimal.Decimal{
			entity.TierDataNode: decimal.NewFromInt(1000),
		},
		Params:        allocation.DefaultParams(),
		Policy:        vesting.DefaultPolicy(),
		TokenDecimals: tokenDecimals,
	})
	uc := usecase.New(repo, ledger.New(repo, nil, clock, tokenDecimals), sm, closer)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorhandler.NewHTTPErrorHandler(),
	})
	require.NoError(t, New(uc, clock).Mount(app))

	return &fixture{
		app:      app,
		repo:     repo,
		clock:    clock,
		sm:       sm,
		ownerKey: ownerKey,
		userKey:  userKey,
	}
}

func (f *fixture) user() common.Address {
	return crypto.PubkeyToAddress(f.userKey.PublicKey)
}

// sign fills the authentication fields of body for action.
func (f *fixture) sign(t *testing.T, key *ecdsa.PrivateKey, body map[string]any, action string, fields ...string) map[string]any {
	t.Helper()
	caller := crypto.PubkeyToAddress(key.PublicKey)
	deadline := f.clock.Now().Add(time.Minute).Unix()
	sig, err := ethsig.Sign(Message(action, caller, deadline, fields...), key)
	require.NoError(t, err)
	body["caller"] = caller.Hex()
	body["deadline"] = deadline
	body["signature"] = hexutil.Encode(sig)
	return body
}

func (f *fixture) do(t *testing.T, method, path string, body map[string]any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var resp HttpResponse[T]
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	require.NotNil(t, resp.Result, string(raw))
	return *resp.Result
}

// activate stages and activates a tree paying the user 100 now and 300 over 90 days.
func (f *fixture) activate(t *testing.T) *merkle.Tree {
	t.Helper()
	leaves := []merkle.Leaf{
		{Wallet: f.user(), ClaimableNow: decimal.NewFromInt(100), VestingAmount: decimal.NewFromInt(300), VestingDurationSeconds: 90 * 24 * 3600},
		{Wallet: other, ClaimableNow: decimal.NewFromInt(50)},
	}
	tree, err := merkle.Build(leaves, tokenDecimals)
	require.NoError(t, err)

	awards := make([]entity.WalletEpochAward, 0, len(leaves))
	total := decimal.Zero
	for _, leaf := range leaves {
		proof, _ := tree.Proof(leaf.Wallet)
		amount := leaf.ClaimableNow.Add(leaf.VestingAmount)
		total = total.Add(amount)
		awards = append(awards, entity.WalletEpochAward{
			Root:                   tree.Root,
			Wallet:                 leaf.Wallet,
			TotalPoints:            amount,
			PohAmount:              amount,
			ClaimableNow:           leaf.ClaimableNow,
			VestingAmount:          leaf.VestingAmount,
			VestingDurationSeconds: leaf.VestingDurationSeconds,
			Proof:                  proof,
		})
	}
	ctx := context.Background()
	owner := crypto.PubkeyToAddress(f.ownerKey.PublicKey)
	staged, err := f.sm.StageWith(ctx, owner, tree.Root, func(tx datagateway.RewardsDataGatewayWithTx) (int64, error) {
		return tx.CreateDistribution(ctx, entity.Distribution{
			PeriodStart: genesis.Add(-epoch.DefaultPeriodLength),
			PeriodEnd:   genesis,
			Root:        tree.Root,
			Status:      entity.DistributionStatusStaged,
			LeafVersion: merkle.LeafVersion,
			Wallets:     len(awards),
			TotalAmount: total,
		}, awards)
	})
	require.NoError(t, err)
	require.True(t, staged.IsPending())

	status, raw := f.do(t, http.MethodGet, "/v1/rewards/root", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "pending", decode[rootState](t, raw).Status)

	f.clock.Advance(commitment.DefaultTimelock)
	status, raw = f.do(t, http.MethodPost, "/v1/rewards/root/activate", f.sign(t, f.ownerKey, map[string]any{}, ActionActivateRoot))
	require.Equal(t, http.StatusOK, status, string(raw))
	state := decode[rootState](t, raw)
	require.Equal(t, uint64(1), state.Epoch)
	require.Equal(t, "active", state.Status)
	return tree
}

func (f *fixture) claimBody(t *testing.T, key *ecdsa.PrivateKey, tree *merkle.Tree, claimable, vested string) map[string]any {
	t.Helper()
	proof, ok := tree.Proof(f.user())
	require.True(t, ok)
	body := map[string]any{
		"epoch":                  1,
		"claimableNow":           claimable,
		"vestingAmount":          vested,
		"vestingDurationSeconds": 90 * 24 * 3600,
		"proof":                  proof,
	}
	fields := ClaimFields(1, decimals.MustFromString(claimable), decimals.MustFromString(vested), 90*24*3600, proof)
	return f.sign(t, key, body, ActionClaim, fields...)
}

func TestClaimFlow(t *testing.T) {
	f := newFixture(t)
	tree := f.activate(t)

	status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim", f.claimBody(t, f.userKey, tree, "100", "300"))
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, f.user(), decode[mutationResult](t, raw).Caller)

	status, raw = f.do(t, http.MethodPost, "/v1/rewards/claim", f.claimBody(t, f.userKey, tree, "100", "300"))
	assert.Equal(t, http.StatusConflict, status, string(raw))

	status, raw = f.do(t, http.MethodGet, "/v1/rewards/claims/"+f.user().Hex(), nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	claims := decode[getClaimsResult](t, raw)
	require.Len(t, claims.List, 1)
	assert.True(t, claims.List[0].Claimed)
	assert.Equal(t, "300", claims.List[0].VestingAmount.String())
	assert.NotEmpty(t, claims.List[0].Proof)

	status, raw = f.do(t, http.MethodGet, "/v1/rewards/claims/"+f.user().Hex()+"?unclaimed=true", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Empty(t, decode[getClaimsResult](t, raw).List)

	status, raw = f.do(t, http.MethodGet, "/v1/rewards/pool", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	pool := decode[getPoolResult](t, raw)
	assert.Equal(t, "100", pool.TotalDistributed.String())
	assert.Equal(t, "300", pool.TotalVesting.String())
	assert.Equal(t, "900", pool.RewardsRemaining.String())
	assert.Equal(t, "600", pool.RewardsAvailable.String())

	status, raw = f.do(t, http.MethodGet, "/v1/rewards/vesting/"+f.user().Hex(), nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "300", decode[getVestingResult](t, raw).Locked.String())
}

func TestClaimRejections(t *testing.T) {
	f := newFixture(t)
	tree := f.activate(t)

	t.Run("tampered amount", func(t *testing.T) {
		status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim", f.claimBody(t, f.userKey, tree, "101", "300"))
		assert.Equal(t, http.StatusBadRequest, status, string(raw))
	})
	t.Run("signed by another key", func(t *testing.T) {
		body := f.claimBody(t, newKey(t), tree, "100", "300")
		body["caller"] = f.user().Hex()
		status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim", body)
		assert.Equal(t, http.StatusUnauthorized, status, string(raw))
	})
	t.Run("expired deadline", func(t *testing.T) {
		body := f.claimBody(t, f.userKey, tree, "100", "300")
		f.clock.Advance(2 * time.Minute)
		status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim", body)
		assert.Equal(t, http.StatusUnauthorized, status, string(raw))
	})
	t.Run("missing signature", func(t *testing.T) {
		status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim", map[string]any{"epoch": 1})
		assert.Equal(t, http.StatusBadRequest, status, string(raw))
	})
	t.Run("batch length mismatch", func(t *testing.T) {
		epochs := []uint64{1}
		amounts := []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(1)}
		vested := []decimal.Decimal{decimal.NewFromInt(300)}
		durations := []uint64{90 * 24 * 3600}
		proofs := [][]common.Hash{nil}
		body := f.sign(t, f.userKey, map[string]any{
			"epochs":                 epochs,
			"claimableNows":          amounts,
			"vestingAmounts":         vested,
			"vestingDurationSeconds": durations,
			"proofs":                 proofs,
		}, ActionClaimBatch, ClaimBatchFields(epochs, amounts, vested, durations, proofs)...)
		status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim/batch", body)
		assert.Equal(t, http.StatusBadRequest, status, string(raw))
	})

	status, raw := f.do(t, http.MethodGet, "/v1/rewards/pool", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.True(t, decode[getPoolResult](t, raw).TotalDistributed.IsZero())
}

func TestReleaseBeforeUnlock(t *testing.T) {
	f := newFixture(t)
	tree := f.activate(t)
	status, raw := f.do(t, http.MethodPost, "/v1/rewards/claim", f.claimBody(t, f.userKey, tree, "100", "300"))
	require.Equal(t, http.StatusOK, status, string(raw))

	release := func() (int, []byte) {
		return f.do(t, http.MethodPost, "/v1/rewards/release", f.sign(t, f.userKey, map[string]any{"epoch": 1}, ActionRelease, ReleaseFields(1)...))
	}

	f.clock.Advance(90*24*time.Hour - time.Second)
	status, raw = release()
	assert.Equal(t, http.StatusTooEarly, status, string(raw))

	f.clock.Advance(time.Second)
	status, raw = release()
	require.Equal(t, http.StatusOK, status, string(raw))

	balance, err := f.repo.BalanceOf(context.Background(), f.user())
	require.NoError(t, err)
	assert.Equal(t, "400", balance.String())
}

func TestRootAuthorization(t *testing.T) {
	f := newFixture(t)
	root := common.HexToHash("0x01")

	status, raw := f.do(t, http.MethodPost, "/v1/rewards/root/stage", f.sign(t, f.userKey, map[string]any{"root": root.Hex()}, ActionStageRoot, StageRootFields(root)...))
	assert.Equal(t, http.StatusUnauthorized, status, string(raw))

	status, raw = f.do(t, http.MethodPost, "/v1/rewards/epochs/close", f.sign(t, f.userKey, map[string]any{}, ActionCloseEpoch))
	assert.Equal(t, http.StatusUnauthorized, status, string(raw))

	status, raw = f.do(t, http.MethodPost, "/v1/rewards/root/stage", f.sign(t, f.ownerKey, map[string]any{"root": root.Hex()}, ActionStageRoot, StageRootFields(root)...))
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = f.do(t, http.MethodPost, "/v1/rewards/root/activate", f.sign(t, f.ownerKey, map[string]any{}, ActionActivateRoot))
	assert.Equal(t, http.StatusTooEarly, status, string(raw))

	status, raw = f.do(t, http.MethodPost, "/v1/rewards/root/cancel", f.sign(t, f.ownerKey, map[string]any{}, ActionCancelRoot))
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "cancelled", decode[rootState](t, raw).Status)
}

func TestGetEpoch(t *testing.T) {
	f := newFixture(t)
	tree := f.activate(t)

	status, raw := f.do(t, http.MethodGet, "/v1/rewards/epochs/1", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	result := decode[getEpochResult](t, raw)
	assert.Equal(t, tree.Root, result.Root)
	require.NotNil(t, result.Distribution)
	assert.Equal(t, "active", result.Distribution.Status)
	assert.Equal(t, uint64(1), result.Distribution.Epoch)
	assert.Equal(t, 2, result.Distribution.Wallets)

	status, _ = f.do(t, http.MethodGet, "/v1/rewards/epochs/2", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodGet, "/v1/rewards/epochs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodGet, "/v1/rewards/claims/not-an-address", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSetPayoutAddressReplay(t *testing.T) {
	f := newFixture(t)
	payoutTo := func(payout common.Address) map[string]any {
		return f.sign(t, f.userKey, map[string]any{"payout": payout.Hex()}, ActionSetPayoutAddress, SetPayoutAddressFields(payout)...)
	}
	currentPayout := func() common.Address {
		status, raw := f.do(t, http.MethodGet, "/v1/rewards/payout/"+f.user().Hex(), nil)
		require.Equal(t, http.StatusOK, status, string(raw))
		return decode[getPayoutAddressResult](t, raw).Payout
	}

	change := payoutTo(other)
	status, raw := f.do(t, http.MethodPost, "/v1/rewards/payout", change)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, other, currentPayout())

	f.clock.Advance(time.Second)
	status, raw = f.do(t, http.MethodPost, "/v1/rewards/payout", payoutTo(common.Address{}))
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, f.user(), currentPayout())

	// the first request is still within its deadline
	status, raw = f.do(t, http.MethodPost, "/v1/rewards/payout", change)
	assert.Equal(t, http.StatusConflict, status, string(raw))
	assert.Equal(t, f.user(), currentPayout())
}
