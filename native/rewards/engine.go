package rewards

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/holiman/uint256"

	"rewardpool/core/events"
)

var errNilState = errors.New("rewards engine: state not configured")

// EngineState describes the persistence the engine needs from the
// surrounding state implementation. All writes issued through it belong to
// the enclosing unit of work and must commit or roll back together.
type EngineState interface {
	Admin() ([20]byte, bool, error)
	SetAdmin(addr [20]byte) error
	RewardPool() (*RewardPool, bool, error)
	SetRewardPool(pool *RewardPool) error
	UserRewards(addr [20]byte) ([]*Reward, error)
	SetUserRewards(addr [20]byte, list []*Reward) error
}

// Transferrer is the funds-transfer sink. The engine calls it exactly once
// per successful claim, after every validation has passed, so a failing
// transfer aborts the claim before the claimed flag can stick.
type Transferrer interface {
	Transfer(to [20]byte, amount *big.Int) error
}

// Engine owns the reward pool state machine: pool lifecycle, grant
// assignment and one-shot claims. Callers are verified 20-byte addresses;
// the engine never trusts a self-declared identity.
type Engine struct {
	state       EngineState
	transferrer Transferrer
	emitter     events.Emitter
	nowFn       func() int64
}

// NewEngine creates a rewards engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state EngineState) { e.state = state }

// SetTransferrer configures the funds-transfer sink invoked on claims.
func (e *Engine) SetTransferrer(t Transferrer) { e.transferrer = t }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily
// intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func requireCaller(caller, expected [20]byte) error {
	if caller != expected {
		return ErrUnauthorized
	}
	return nil
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	admin, ok, err := e.state.Admin()
	if err != nil {
		return err
	}
	if !ok {
		return ErrPoolNotFound
	}
	return requireCaller(caller, admin)
}

func (e *Engine) loadPool() (*RewardPool, error) {
	pool, ok, err := e.state.RewardPool()
	if err != nil {
		return nil, err
	}
	if !ok || pool == nil {
		return nil, ErrPoolNotFound
	}
	return pool.Normalize(), nil
}

// checkedAdd adds delta to balance and fails with ErrOverflow when the
// result no longer fits in 256 bits.
func checkedAdd(balance, delta *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(cloneBigInt(balance), cloneBigInt(delta))
	if _, overflow := uint256.FromBig(sum); overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

// Initialize creates the pool singleton with the caller as admin. The pool
// starts active. Re-initialization fails.
func (e *Engine) Initialize(caller [20]byte, initialBalance *big.Int) (*RewardPool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok, err := e.state.Admin(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	if initialBalance != nil && initialBalance.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	balance, err := checkedAdd(big.NewInt(0), initialBalance)
	if err != nil {
		return nil, err
	}
	now := e.now()
	pool := &RewardPool{
		Admin:            caller,
		TotalBalance:     balance,
		TotalDistributed: big.NewInt(0),
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.state.SetAdmin(caller); err != nil {
		return nil, err
	}
	if err := e.state.SetRewardPool(pool); err != nil {
		return nil, err
	}
	e.emit(events.NewPoolInitialized(caller, pool.TotalBalance, now))
	return pool.Clone(), nil
}

// Deposit credits the pool balance. Admin only. Deposits stay permitted
// while the pool is inactive so the admin can refill a paused pool.
func (e *Engine) Deposit(caller [20]byte, amount *big.Int) (*RewardPool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	balance, err := checkedAdd(pool.TotalBalance, amount)
	if err != nil {
		return nil, err
	}
	pool.TotalBalance = balance
	pool.UpdatedAt = e.now()
	if err := e.state.SetRewardPool(pool); err != nil {
		return nil, err
	}
	e.emit(events.NewPoolDeposited(caller, amount, pool.TotalBalance))
	return pool.Clone(), nil
}

// SetPoolStatus toggles the activity flag. Admin only. Setting the current
// value is a no-op, not an error.
func (e *Engine) SetPoolStatus(caller [20]byte, active bool) (*RewardPool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if pool.Active == active {
		return pool.Clone(), nil
	}
	pool.Active = active
	pool.UpdatedAt = e.now()
	if err := e.state.SetRewardPool(pool); err != nil {
		return nil, err
	}
	e.emit(events.NewPoolStatusChanged(caller, active))
	return pool.Clone(), nil
}

// Assign records a new grant for the recipient and returns its index in the
// recipient's list. Admin only. Assignment never reserves pool balance;
// percentage grants resolve against the balance at claim time, so the admin
// is responsible for not over-promising.
func (e *Engine) Assign(caller, recipient [20]byte, rewardType RewardType, expiresAt int64) (uint32, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return 0, err
	}
	pool, err := e.loadPool()
	if err != nil {
		return 0, err
	}
	if !pool.Active {
		return 0, ErrPoolInactive
	}
	if err := rewardType.Validate(); err != nil {
		return 0, err
	}
	now := e.now()
	if expiresAt < 0 || (expiresAt != 0 && expiresAt <= now) {
		return 0, ErrInvalidExpiry
	}
	list, err := e.state.UserRewards(recipient)
	if err != nil {
		return 0, err
	}
	reward := &Reward{
		Recipient: recipient,
		Type:      rewardType.Clone(),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	list = append(list, reward)
	if err := e.state.SetUserRewards(recipient, list); err != nil {
		return 0, err
	}
	index := uint32(len(list) - 1)
	e.emit(events.NewRewardAssigned(recipient, index, rewardType.Kind.String(), expiresAt))
	return index, nil
}

// Claim settles the reward identified by (recipient, index) and returns the
// payout. Only the recipient may claim, each grant settles at most once, and
// the whole claim aborts when the transfer sink fails.
func (e *Engine) Claim(caller, recipient [20]byte, index uint32) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	list, err := e.state.UserRewards(recipient)
	if err != nil {
		return nil, err
	}
	if uint64(index) >= uint64(len(list)) {
		return nil, ErrRewardNotFound
	}
	reward := list[index]
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	if err := requireCaller(caller, reward.Recipient); err != nil {
		return nil, err
	}
	if reward.Claimed {
		return nil, ErrAlreadyClaimed
	}
	now := e.now()
	if reward.ExpiredAt(now) {
		return nil, ErrRewardExpired
	}
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if !pool.Active {
		return nil, ErrPoolInactive
	}
	payout := reward.Type.PayoutAgainst(pool.TotalBalance)
	if payout.Cmp(pool.TotalBalance) > 0 {
		return nil, ErrInsufficientPoolBalance
	}
	pool.TotalBalance = new(big.Int).Sub(pool.TotalBalance, payout)
	pool.TotalDistributed = new(big.Int).Add(pool.TotalDistributed, payout)
	pool.UpdatedAt = now
	reward.Claimed = true
	reward.ClaimedAt = now
	reward.Payout = new(big.Int).Set(payout)
	if err := e.state.SetRewardPool(pool); err != nil {
		return nil, err
	}
	if err := e.state.SetUserRewards(recipient, list); err != nil {
		return nil, err
	}
	// The transfer is issued last so a sink failure aborts the unit of work
	// before the claimed flag can commit.
	if e.transferrer != nil && payout.Sign() > 0 {
		if err := e.transferrer.Transfer(recipient, payout); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}
	e.emit(events.NewRewardClaimed(recipient, index, payout, pool.TotalBalance))
	return payout, nil
}

// UserRewards returns the recipient's grants in insertion order, including
// claimed and expired ones. The snapshot is side-effect free.
func (e *Engine) UserRewards(recipient [20]byte) ([]*Reward, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	list, err := e.state.UserRewards(recipient)
	if err != nil {
		return nil, err
	}
	out := make([]*Reward, 0, len(list))
	for _, reward := range list {
		out = append(out, reward.Clone())
	}
	return out, nil
}

// PoolInfo returns the current pool snapshot.
func (e *Engine) PoolInfo() (*RewardPool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}
