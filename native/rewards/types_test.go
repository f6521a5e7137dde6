package rewards

import (
	"errors"
	"math/big"
	"testing"
)

func TestRewardTypeValidate(t *testing.T) {
	cases := []struct {
		name    string
		rt      RewardType
		wantErr error
	}{
		{"fixed ok", RewardType{Kind: RewardFixed, Amount: big.NewInt(10)}, nil},
		{"fixed zero amount", RewardType{Kind: RewardFixed, Amount: big.NewInt(0)}, ErrInvalidRewardType},
		{"fixed nil amount", RewardType{Kind: RewardFixed}, ErrInvalidRewardType},
		{"fixed negative amount", RewardType{Kind: RewardFixed, Amount: big.NewInt(-1)}, ErrInvalidRewardType},
		{"fixed with rate", RewardType{Kind: RewardFixed, Amount: big.NewInt(10), RateBps: 100}, ErrInvalidRewardType},
		{"percentage ok", RewardType{Kind: RewardPercentage, RateBps: 5000}, nil},
		{"percentage full", RewardType{Kind: RewardPercentage, RateBps: RateBpsDenominator}, nil},
		{"percentage zero rate", RewardType{Kind: RewardPercentage}, ErrInvalidRewardType},
		{"percentage over denominator", RewardType{Kind: RewardPercentage, RateBps: RateBpsDenominator + 1}, ErrInvalidRewardType},
		{"percentage with amount", RewardType{Kind: RewardPercentage, RateBps: 100, Amount: big.NewInt(1)}, ErrInvalidRewardType},
		{"unknown kind", RewardType{Kind: 0}, ErrInvalidRewardType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rt.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPayoutAgainst(t *testing.T) {
	fixed, err := NewFixedReward(big.NewInt(75))
	if err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if got := fixed.PayoutAgainst(big.NewInt(10)); got.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("fixed payout should ignore the balance, got %s", got)
	}

	pct, err := NewPercentageReward(2500)
	if err != nil {
		t.Fatalf("percentage: %v", err)
	}
	if got := pct.PayoutAgainst(big.NewInt(1000)); got.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("expected 250, got %s", got)
	}
	// Integer division floors.
	if got := pct.PayoutAgainst(big.NewInt(3)); got.Sign() != 0 {
		t.Fatalf("expected 0 from floor(3*2500/10000), got %s", got)
	}

	full, _ := NewPercentageReward(RateBpsDenominator)
	if got := full.PayoutAgainst(big.NewInt(1234)); got.Cmp(big.NewInt(1234)) != 0 {
		t.Fatalf("10000 bps should pay the full balance, got %s", got)
	}
}

func TestRewardExpiry(t *testing.T) {
	open := &Reward{ExpiresAt: 0}
	if open.ExpiredAt(1 << 40) {
		t.Fatalf("zero deadline must never expire")
	}
	deadline := &Reward{ExpiresAt: 100}
	if deadline.ExpiredAt(99) {
		t.Fatalf("reward should be claimable before the deadline")
	}
	if !deadline.ExpiredAt(100) {
		t.Fatalf("reward expires exactly at the deadline")
	}
	if !deadline.ExpiredAt(101) {
		t.Fatalf("reward stays expired after the deadline")
	}
}

func TestRewardCloneIsDeep(t *testing.T) {
	reward := &Reward{
		Recipient: addr(7),
		Type:      RewardType{Kind: RewardFixed, Amount: big.NewInt(10)},
		ExpiresAt: 50,
		CreatedAt: 1,
	}
	clone := reward.Clone()
	clone.Type.Amount.SetInt64(999)
	clone.Claimed = true
	if reward.Type.Amount.Cmp(big.NewInt(10)) != 0 || reward.Claimed {
		t.Fatalf("mutating the clone leaked into the original")
	}

	pool := &RewardPool{
		Admin:            addr(1),
		TotalBalance:     big.NewInt(100),
		TotalDistributed: big.NewInt(5),
		Active:           true,
	}
	poolClone := pool.Clone()
	poolClone.TotalBalance.SetInt64(0)
	if pool.TotalBalance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("pool clone shares the balance pointer")
	}
}
