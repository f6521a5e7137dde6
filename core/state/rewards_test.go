package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"rewardpool/native/rewards"
	"rewardpool/storage"
)

func testAddr(b byte) [20]byte {
	var out [20]byte
	out[0] = b
	return out
}

func TestAdminRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	_, ok, err := manager.Admin()
	require.NoError(t, err)
	require.False(t, ok)

	admin := testAddr(1)
	require.NoError(t, manager.SetAdmin(admin))

	got, ok, err := manager.Admin()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, admin, got)
}

func TestRewardPoolRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	_, ok, err := manager.RewardPool()
	require.NoError(t, err)
	require.False(t, ok)

	pool := &rewards.RewardPool{
		Admin:            testAddr(1),
		TotalBalance:     big.NewInt(1_000),
		TotalDistributed: big.NewInt(250),
		Active:           true,
		CreatedAt:        1700000000,
		UpdatedAt:        1700000100,
	}
	require.NoError(t, manager.SetRewardPool(pool))

	got, ok, err := manager.RewardPool()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pool.Admin, got.Admin)
	require.Zero(t, pool.TotalBalance.Cmp(got.TotalBalance))
	require.Zero(t, pool.TotalDistributed.Cmp(got.TotalDistributed))
	require.True(t, got.Active)
	require.Equal(t, pool.CreatedAt, got.CreatedAt)
	require.Equal(t, pool.UpdatedAt, got.UpdatedAt)
}

func TestUserRewardsRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	recipient := testAddr(2)

	list, err := manager.UserRewards(recipient)
	require.NoError(t, err)
	require.Empty(t, list)

	fixed, err := rewards.NewFixedReward(big.NewInt(200))
	require.NoError(t, err)
	pct, err := rewards.NewPercentageReward(5000)
	require.NoError(t, err)

	in := []*rewards.Reward{
		{
			Recipient: recipient,
			Type:      fixed,
			ExpiresAt: 1700000500,
			CreatedAt: 1700000000,
		},
		{
			Recipient: recipient,
			Type:      pct,
			Claimed:   true,
			ClaimedAt: 1700000200,
			Payout:    big.NewInt(125),
			CreatedAt: 1700000100,
		},
	}
	require.NoError(t, manager.SetUserRewards(recipient, in))

	out, err := manager.UserRewards(recipient)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, rewards.RewardFixed, out[0].Type.Kind)
	require.Zero(t, out[0].Type.Amount.Cmp(big.NewInt(200)))
	require.Equal(t, int64(1700000500), out[0].ExpiresAt)
	require.False(t, out[0].Claimed)
	require.Nil(t, out[0].Payout)

	require.Equal(t, rewards.RewardPercentage, out[1].Type.Kind)
	require.Equal(t, uint32(5000), out[1].Type.RateBps)
	require.True(t, out[1].Claimed)
	require.Equal(t, int64(1700000200), out[1].ClaimedAt)
	require.Zero(t, out[1].Payout.Cmp(big.NewInt(125)))
}

func TestGrantsAreScopedPerRecipient(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	fixed, err := rewards.NewFixedReward(big.NewInt(10))
	require.NoError(t, err)

	first := testAddr(3)
	second := testAddr(4)
	require.NoError(t, manager.SetUserRewards(first, []*rewards.Reward{{Recipient: first, Type: fixed}}))

	list, err := manager.UserRewards(second)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSettledBalanceAccumulates(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	recipient := testAddr(5)

	balance, err := manager.SettledBalance(recipient)
	require.NoError(t, err)
	require.Zero(t, balance.Sign())

	require.NoError(t, manager.Transfer(recipient, big.NewInt(200)))
	require.NoError(t, manager.Transfer(recipient, big.NewInt(300)))

	balance, err = manager.SettledBalance(recipient)
	require.NoError(t, err)
	require.Zero(t, balance.Cmp(big.NewInt(500)))

	require.Error(t, manager.Transfer(recipient, nil))
	require.Error(t, manager.Transfer(recipient, big.NewInt(-1)))
}
