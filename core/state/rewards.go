package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"rewardpool/native/rewards"
)

var (
	rewardsAdminKey      = []byte("rewards/admin")
	rewardsPoolKey       = []byte("rewards/pool")
	rewardsGrantsPrefix  = []byte("rewards/grants/")
	rewardsSettledPrefix = []byte("rewards/settled/")
)

func grantsKey(addr [20]byte) []byte {
	return prefixedKey(rewardsGrantsPrefix, addr[:])
}

func settledKey(addr [20]byte) []byte {
	return prefixedKey(rewardsSettledPrefix, addr[:])
}

// storedReward mirrors rewards.Reward with RLP-friendly field types.
// Timestamps travel as big integers because RLP has no signed encoding.
type storedReward struct {
	Recipient [20]byte
	Kind      uint8
	Amount    *big.Int
	RateBps   uint32
	ExpiresAt *big.Int
	Claimed   bool
	ClaimedAt *big.Int
	Payout    *big.Int
	CreatedAt *big.Int
}

func newStoredReward(r *rewards.Reward) *storedReward {
	if r == nil {
		return nil
	}
	amount := big.NewInt(0)
	if r.Type.Amount != nil {
		amount = new(big.Int).Set(r.Type.Amount)
	}
	payout := big.NewInt(0)
	if r.Payout != nil {
		payout = new(big.Int).Set(r.Payout)
	}
	return &storedReward{
		Recipient: r.Recipient,
		Kind:      uint8(r.Type.Kind),
		Amount:    amount,
		RateBps:   r.Type.RateBps,
		ExpiresAt: big.NewInt(r.ExpiresAt),
		Claimed:   r.Claimed,
		ClaimedAt: big.NewInt(r.ClaimedAt),
		Payout:    payout,
		CreatedAt: big.NewInt(r.CreatedAt),
	}
}

func (s *storedReward) toReward() (*rewards.Reward, error) {
	if s == nil {
		return nil, fmt.Errorf("rewards state: nil reward record")
	}
	kind := rewards.RewardKind(s.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("rewards state: unknown reward kind %d", s.Kind)
	}
	out := &rewards.Reward{
		Recipient: s.Recipient,
		Type:      rewards.RewardType{Kind: kind, RateBps: s.RateBps},
		Claimed:   s.Claimed,
	}
	if kind == rewards.RewardFixed {
		out.Type.Amount = bigOrZero(s.Amount)
	}
	if s.ExpiresAt != nil {
		out.ExpiresAt = s.ExpiresAt.Int64()
	}
	if s.ClaimedAt != nil {
		out.ClaimedAt = s.ClaimedAt.Int64()
	}
	if s.CreatedAt != nil {
		out.CreatedAt = s.CreatedAt.Int64()
	}
	if s.Claimed {
		out.Payout = bigOrZero(s.Payout)
	}
	return out, nil
}

// storedPool mirrors rewards.RewardPool for RLP encoding.
type storedPool struct {
	Admin            [20]byte
	TotalBalance     *big.Int
	TotalDistributed *big.Int
	Active           bool
	CreatedAt        *big.Int
	UpdatedAt        *big.Int
}

func newStoredPool(p *rewards.RewardPool) *storedPool {
	if p == nil {
		return nil
	}
	normalized := p.Clone().Normalize()
	return &storedPool{
		Admin:            normalized.Admin,
		TotalBalance:     normalized.TotalBalance,
		TotalDistributed: normalized.TotalDistributed,
		Active:           normalized.Active,
		CreatedAt:        big.NewInt(normalized.CreatedAt),
		UpdatedAt:        big.NewInt(normalized.UpdatedAt),
	}
}

func (s *storedPool) toPool() *rewards.RewardPool {
	if s == nil {
		return nil
	}
	out := &rewards.RewardPool{
		Admin:            s.Admin,
		TotalBalance:     bigOrZero(s.TotalBalance),
		TotalDistributed: bigOrZero(s.TotalDistributed),
		Active:           s.Active,
	}
	if s.CreatedAt != nil {
		out.CreatedAt = s.CreatedAt.Int64()
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = s.UpdatedAt.Int64()
	}
	return out
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Admin returns the stored pool administrator, if any.
func (m *Manager) Admin() ([20]byte, bool, error) {
	var admin [20]byte
	data, ok, err := m.get(kvKey(rewardsAdminKey))
	if err != nil || !ok {
		return admin, false, err
	}
	if len(data) != len(admin) {
		return admin, false, fmt.Errorf("rewards state: malformed admin record")
	}
	copy(admin[:], data)
	return admin, true, nil
}

// SetAdmin records the pool administrator.
func (m *Manager) SetAdmin(addr [20]byte) error {
	return m.set(kvKey(rewardsAdminKey), addr[:])
}

// RewardPool returns the pool singleton, if initialized.
func (m *Manager) RewardPool() (*rewards.RewardPool, bool, error) {
	data, ok, err := m.get(kvKey(rewardsPoolKey))
	if err != nil || !ok {
		return nil, false, err
	}
	stored := new(storedPool)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false, fmt.Errorf("rewards state: decode pool: %w", err)
	}
	return stored.toPool(), true, nil
}

// SetRewardPool persists the pool singleton.
func (m *Manager) SetRewardPool(pool *rewards.RewardPool) error {
	if pool == nil {
		return fmt.Errorf("rewards state: nil pool")
	}
	encoded, err := rlp.EncodeToBytes(newStoredPool(pool))
	if err != nil {
		return err
	}
	return m.set(kvKey(rewardsPoolKey), encoded)
}

// UserRewards returns the recipient's grant list in insertion order. A
// recipient with no grants yields an empty list.
func (m *Manager) UserRewards(addr [20]byte) ([]*rewards.Reward, error) {
	data, ok, err := m.get(grantsKey(addr))
	if err != nil || !ok {
		return []*rewards.Reward{}, err
	}
	var stored []*storedReward
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return nil, fmt.Errorf("rewards state: decode grants: %w", err)
	}
	out := make([]*rewards.Reward, 0, len(stored))
	for _, record := range stored {
		reward, err := record.toReward()
		if err != nil {
			return nil, err
		}
		out = append(out, reward)
	}
	return out, nil
}

// SetUserRewards persists the recipient's full grant list.
func (m *Manager) SetUserRewards(addr [20]byte, list []*rewards.Reward) error {
	stored := make([]*storedReward, 0, len(list))
	for _, reward := range list {
		if reward == nil {
			return fmt.Errorf("rewards state: nil reward in list")
		}
		stored = append(stored, newStoredReward(reward))
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	return m.set(grantsKey(addr), encoded)
}

// SettledBalance returns the total amount ever paid out to the address.
func (m *Manager) SettledBalance(addr [20]byte) (*big.Int, error) {
	data, ok, err := m.get(settledKey(addr))
	if err != nil || !ok {
		return big.NewInt(0), err
	}
	balance := new(big.Int)
	if err := rlp.DecodeBytes(data, balance); err != nil {
		return nil, fmt.Errorf("rewards state: decode settled balance: %w", err)
	}
	return balance, nil
}

// Transfer credits the recipient's settled balance. It is the state-backed
// funds-transfer sink behind claims; the pool debit stays with the engine.
func (m *Manager) Transfer(to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("rewards state: invalid transfer amount")
	}
	balance, err := m.SettledBalance(to)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(new(big.Int).Add(balance, amount))
	if err != nil {
		return err
	}
	return m.set(settledKey(to), encoded)
}
