package events

import (
	"math/big"
	"strconv"

	"rewardpool/crypto"
)

const (
	TypePoolInitialized   = "rewards.pool.initialized"
	TypePoolDeposited     = "rewards.pool.deposited"
	TypePoolStatusChanged = "rewards.pool.status"
	TypeRewardAssigned    = "rewards.assigned"
	TypeRewardClaimed     = "rewards.claimed"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddress(addr [20]byte) string {
	return crypto.MustNewAddress(addr[:]).String()
}

func NewPoolInitialized(admin [20]byte, balance *big.Int, createdAt int64) *Event {
	return &Event{
		Type: TypePoolInitialized,
		Attributes: map[string]string{
			"admin":     formatAddress(admin),
			"balance":   formatAmount(balance),
			"createdAt": strconv.FormatInt(createdAt, 10),
		},
	}
}

func NewPoolDeposited(admin [20]byte, amount, balance *big.Int) *Event {
	return &Event{
		Type: TypePoolDeposited,
		Attributes: map[string]string{
			"admin":   formatAddress(admin),
			"amount":  formatAmount(amount),
			"balance": formatAmount(balance),
		},
	}
}

func NewPoolStatusChanged(admin [20]byte, active bool) *Event {
	return &Event{
		Type: TypePoolStatusChanged,
		Attributes: map[string]string{
			"admin":  formatAddress(admin),
			"active": strconv.FormatBool(active),
		},
	}
}

func NewRewardAssigned(recipient [20]byte, index uint32, kind string, expiresAt int64) *Event {
	attrs := map[string]string{
		"recipient": formatAddress(recipient),
		"index":     strconv.FormatUint(uint64(index), 10),
		"kind":      kind,
	}
	if expiresAt > 0 {
		attrs["expiresAt"] = strconv.FormatInt(expiresAt, 10)
	}
	return &Event{Type: TypeRewardAssigned, Attributes: attrs}
}

func NewRewardClaimed(recipient [20]byte, index uint32, payout, balance *big.Int) *Event {
	return &Event{
		Type: TypeRewardClaimed,
		Attributes: map[string]string{
			"recipient": formatAddress(recipient),
			"index":     strconv.FormatUint(uint64(index), 10),
			"payout":    formatAmount(payout),
			"balance":   formatAmount(balance),
		},
	}
}
