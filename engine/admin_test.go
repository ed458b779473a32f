package engine

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/flasharb-go/access"
	"github.com/defistate/flasharb-go/risk"
	"github.com/defistate/flasharb-go/streams/events"
)

func TestOwnerGating(t *testing.T) {
	h := newHarness(t)
	stranger := common.HexToAddress("0x0000000000000000000000000000000000001234")

	assert.ErrorIs(t, h.eng.Pause(stranger), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.Unpause(stranger), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.TriggerCircuitBreaker(stranger, "x"), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.ResetCircuitBreaker(stranger), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.SetMaxDailyVolume(stranger, big.NewInt(1)), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.SetProtocolFeeBps(stranger, 50), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.SetFeeRecipient(stranger, stranger), ErrUnauthorized)
	assert.ErrorIs(t, h.eng.SetRiskConfig(stranger, h.assetA, risk.AssetConfig{
		MaxLoanAmount: big.NewInt(1),
		Active:        true,
	}), ErrUnauthorized)
	_, err := h.eng.EmergencyWithdraw(stranger, h.assetA)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTwoStepOwnershipTransfer(t *testing.T) {
	h := newHarness(t)
	candidate := common.HexToAddress("0x0000000000000000000000000000000000009999")

	t.Run("only owner proposes", func(t *testing.T) {
		err := h.eng.ProposeOwner(candidate, candidate)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("zero candidate rejected", func(t *testing.T) {
		err := h.eng.ProposeOwner(h.owner, common.Address{})
		require.ErrorIs(t, err, access.ErrZeroAddress)
	})

	t.Run("accept requires pending owner", func(t *testing.T) {
		require.NoError(t, h.eng.ProposeOwner(h.owner, candidate))
		assert.Equal(t, candidate, h.eng.PendingOwner())

		err := h.eng.AcceptOwnership(h.owner)
		require.ErrorIs(t, err, access.ErrNotPendingOwner)

		require.NoError(t, h.eng.AcceptOwnership(candidate))
		assert.Equal(t, candidate, h.eng.Owner())
		assert.Equal(t, common.Address{}, h.eng.PendingOwner())
	})

	t.Run("old owner loses the surface", func(t *testing.T) {
		err := h.eng.Pause(h.owner)
		require.ErrorIs(t, err, ErrUnauthorized)
		require.NoError(t, h.eng.Pause(candidate))
	})

	assert.True(t, h.emitter.has(events.OwnershipProposed))
	assert.True(t, h.emitter.has(events.OwnershipTransferred))
}

func TestEmergencyWithdraw(t *testing.T) {
	h := newHarness(t)

	t.Run("requires pause", func(t *testing.T) {
		_, err := h.eng.EmergencyWithdraw(h.owner, h.assetA)
		require.ErrorIs(t, err, ErrNotPaused)
	})

	require.NoError(t, h.eng.Pause(h.owner))

	t.Run("zero balance is an error", func(t *testing.T) {
		_, err := h.eng.EmergencyWithdraw(h.owner, h.assetA)
		require.ErrorIs(t, err, ErrNoBalanceToWithdraw)
	})

	t.Run("drains the full balance to the owner", func(t *testing.T) {
		stranded := big.NewInt(777)
		h.host.Ledger().Mint(h.assetA, h.self, stranded)

		withdrawn, err := h.eng.EmergencyWithdraw(h.owner, h.assetA)
		require.NoError(t, err)
		assert.Zero(t, withdrawn.Cmp(stranded))
		assert.Zero(t, h.selfBalance(h.assetA).Sign())
		assert.Zero(t, h.host.Ledger().BalanceOf(h.assetA, h.owner).Cmp(stranded))
		assert.True(t, h.emitter.has(events.EmergencyWithdrawal))
	})
}

func TestFeeConfiguration(t *testing.T) {
	h := newHarness(t)

	t.Run("protocol fee capped at 1000", func(t *testing.T) {
		require.ErrorIs(t, h.eng.SetProtocolFeeBps(h.owner, 1_001), ErrInvalidProtocolFee)
		require.NoError(t, h.eng.SetProtocolFeeBps(h.owner, 1_000))
	})

	t.Run("fee recipient must be non-zero", func(t *testing.T) {
		require.ErrorIs(t, h.eng.SetFeeRecipient(h.owner, common.Address{}), ErrInvalidFeeRecipient)

		next := common.HexToAddress("0x0000000000000000000000000000000000007777")
		require.NoError(t, h.eng.SetFeeRecipient(h.owner, next))
	})

	t.Run("updated split applies to the next settlement", func(t *testing.T) {
		require.NoError(t, h.eng.SetProtocolFeeBps(h.owner, 1_000))
		settlement, err := h.initiate(h.request(1_000))
		require.NoError(t, err)

		expectedCut := new(big.Int).Mul(settlement.GrossProfit, big.NewInt(1_000))
		expectedCut.Div(expectedCut, big.NewInt(10_000))
		assert.Zero(t, settlement.ProtocolFee.Cmp(expectedCut))
	})
}

func TestRiskConfigUpdates(t *testing.T) {
	h := newHarness(t)

	t.Run("rejects invalid config", func(t *testing.T) {
		err := h.eng.SetRiskConfig(h.owner, h.assetA, risk.AssetConfig{
			MaxLoanAmount: big.NewInt(0),
			Active:        true,
		})
		require.ErrorIs(t, err, risk.ErrInvalidAssetConfig)
	})

	t.Run("tightened cap binds immediately", func(t *testing.T) {
		require.NoError(t, h.eng.SetRiskConfig(h.owner, h.assetA, risk.AssetConfig{
			MaxLoanAmount: big.NewInt(500),
			LTVRatioBps:   8_000,
			RiskScore:     40,
			Active:        true,
		}))
		assert.True(t, h.emitter.has(events.RiskConfigUpdated))

		_, err := h.initiate(h.request(1_000))
		require.ErrorIs(t, err, risk.ErrAmountAboveAssetCap)

		_, err = h.initiate(h.request(500))
		require.NoError(t, err)
	})
}
