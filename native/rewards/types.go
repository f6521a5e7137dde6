package rewards

import "math/big"

// RateBpsDenominator defines the fixed-point scale for percentage rewards.
// A rate of 10_000 pays out the entire pool balance.
const RateBpsDenominator = 10_000

type RewardKind uint8

const (
	RewardFixed RewardKind = iota + 1
	RewardPercentage
)

func (k RewardKind) Valid() bool {
	switch k {
	case RewardFixed, RewardPercentage:
		return true
	default:
		return false
	}
}

func (k RewardKind) String() string {
	switch k {
	case RewardFixed:
		return "fixed"
	case RewardPercentage:
		return "percentage"
	default:
		return "unknown"
	}
}

// RewardType is the tagged payout definition of a grant: either a fixed
// amount or a basis-point share of the pool balance at claim time.
type RewardType struct {
	Kind    RewardKind
	Amount  *big.Int
	RateBps uint32
}

// NewFixedReward builds a fixed-amount reward type. The amount must be
// strictly positive.
func NewFixedReward(amount *big.Int) (RewardType, error) {
	t := RewardType{Kind: RewardFixed, Amount: cloneBigInt(amount)}
	if err := t.Validate(); err != nil {
		return RewardType{}, err
	}
	return t, nil
}

// NewPercentageReward builds a percentage reward type. The rate is expressed
// in basis points and must be in (0, 10_000].
func NewPercentageReward(rateBps uint32) (RewardType, error) {
	t := RewardType{Kind: RewardPercentage, RateBps: rateBps}
	if err := t.Validate(); err != nil {
		return RewardType{}, err
	}
	return t, nil
}

// Validate enforces the construction rules for both kinds.
func (t RewardType) Validate() error {
	switch t.Kind {
	case RewardFixed:
		if t.Amount == nil || t.Amount.Sign() <= 0 {
			return ErrInvalidRewardType
		}
		if t.RateBps != 0 {
			return ErrInvalidRewardType
		}
	case RewardPercentage:
		if t.RateBps == 0 || t.RateBps > RateBpsDenominator {
			return ErrInvalidRewardType
		}
		if t.Amount != nil && t.Amount.Sign() != 0 {
			return ErrInvalidRewardType
		}
	default:
		return ErrInvalidRewardType
	}
	return nil
}

// PayoutAgainst resolves the concrete payout for the given pool balance.
// Percentage rewards floor towards zero. Adding a reward kind means
// extending this switch; nothing else inspects the tag.
func (t RewardType) PayoutAgainst(balance *big.Int) *big.Int {
	switch t.Kind {
	case RewardFixed:
		return cloneBigInt(t.Amount)
	case RewardPercentage:
		payout := new(big.Int).Mul(cloneBigInt(balance), new(big.Int).SetUint64(uint64(t.RateBps)))
		return payout.Quo(payout, big.NewInt(RateBpsDenominator))
	default:
		return big.NewInt(0)
	}
}

func (t RewardType) Clone() RewardType {
	out := RewardType{Kind: t.Kind, RateBps: t.RateBps}
	if t.Amount != nil {
		out.Amount = new(big.Int).Set(t.Amount)
	}
	return out
}

// Reward is a single grant to one recipient. Claimed flips exactly once;
// the record is never deleted so it doubles as the permanent claim receipt.
type Reward struct {
	Recipient [20]byte
	Type      RewardType
	ExpiresAt int64 // unix seconds, zero means no expiry
	Claimed   bool
	ClaimedAt int64
	Payout    *big.Int // settled amount, nil until claimed
	CreatedAt int64
}

func (r *Reward) Clone() *Reward {
	if r == nil {
		return nil
	}
	out := *r
	out.Type = r.Type.Clone()
	if r.Payout != nil {
		out.Payout = new(big.Int).Set(r.Payout)
	}
	return &out
}

// ExpiredAt reports whether the reward can no longer be claimed at the given
// time. A reward expires at its deadline, not after it.
func (r *Reward) ExpiredAt(now int64) bool {
	if r == nil || r.ExpiresAt == 0 {
		return false
	}
	return now >= r.ExpiresAt
}

// RewardPool is the singleton aggregate funding every grant.
type RewardPool struct {
	Admin            [20]byte
	TotalBalance     *big.Int
	TotalDistributed *big.Int
	Active           bool
	CreatedAt        int64
	UpdatedAt        int64
}

func (p *RewardPool) Clone() *RewardPool {
	if p == nil {
		return nil
	}
	out := *p
	out.TotalBalance = cloneBigInt(p.TotalBalance)
	out.TotalDistributed = cloneBigInt(p.TotalDistributed)
	return &out
}

// Normalize ensures the big integer fields are non-nil. The method returns
// the receiver to allow chaining.
func (p *RewardPool) Normalize() *RewardPool {
	if p == nil {
		return nil
	}
	if p.TotalBalance == nil {
		p.TotalBalance = big.NewInt(0)
	}
	if p.TotalDistributed == nil {
		p.TotalDistributed = big.NewInt(0)
	}
	return p
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
