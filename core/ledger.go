package core

import (
	"math/big"
	"sync"
	"time"

	"rewardpool/core/events"
	"rewardpool/core/state"
	"rewardpool/native/rewards"
	"rewardpool/storage"
)

// Ledger hosts the rewards engine and gives every public operation the
// atomic unit-of-work semantics the engine assumes: operations are
// serialized by a mutex, run against a write overlay, and flush to the
// backing store in a single batch only when the whole operation succeeded.
// Events observed during a failed operation are never published.
type Ledger struct {
	mu      sync.Mutex
	db      storage.Database
	emitter events.Emitter
	nowFn   func() int64
}

// NewLedger creates a ledger over the provided database.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{
		db:      db,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the emitter that receives events after commit.
// Passing nil resets it to a no-op implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// SetNowFunc overrides the ledger time source, primarily for tests.
func (l *Ledger) SetNowFunc(now func() int64) {
	if now == nil {
		l.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	l.nowFn = now
}

func (l *Ledger) newEngine(db storage.Database, buffer *events.Buffer) *rewards.Engine {
	manager := state.NewManager(db)
	engine := rewards.NewEngine()
	engine.SetState(manager)
	engine.SetTransferrer(manager)
	engine.SetNowFunc(l.nowFn)
	if buffer != nil {
		engine.SetEmitter(buffer)
	}
	return engine
}

// execute runs fn inside one atomic unit of work.
func (l *Ledger) execute(fn func(*rewards.Engine) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	overlay := storage.NewOverlay(l.db)
	buffer := new(events.Buffer)
	engine := l.newEngine(overlay, buffer)
	if err := fn(engine); err != nil {
		return err
	}
	if overlay.Dirty() {
		if err := l.db.Write(overlay.Entries()); err != nil {
			return err
		}
	}
	for _, evt := range buffer.Drain() {
		l.emitter.Emit(evt)
	}
	return nil
}

// view runs fn against committed state without a commit path of its own.
func (l *Ledger) view(fn func(*rewards.Engine, *state.Manager) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	manager := state.NewManager(l.db)
	engine := l.newEngine(l.db, nil)
	return fn(engine, manager)
}

// Initialize creates the pool with the caller as admin.
func (l *Ledger) Initialize(caller [20]byte, initialBalance *big.Int) (*rewards.RewardPool, error) {
	var pool *rewards.RewardPool
	err := l.execute(func(engine *rewards.Engine) error {
		var err error
		pool, err = engine.Initialize(caller, initialBalance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Deposit credits the pool balance.
func (l *Ledger) Deposit(caller [20]byte, amount *big.Int) (*rewards.RewardPool, error) {
	var pool *rewards.RewardPool
	err := l.execute(func(engine *rewards.Engine) error {
		var err error
		pool, err = engine.Deposit(caller, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// SetPoolStatus toggles the pool activity flag.
func (l *Ledger) SetPoolStatus(caller [20]byte, active bool) (*rewards.RewardPool, error) {
	var pool *rewards.RewardPool
	err := l.execute(func(engine *rewards.Engine) error {
		var err error
		pool, err = engine.SetPoolStatus(caller, active)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Assign records a new grant and returns its index.
func (l *Ledger) Assign(caller, recipient [20]byte, rewardType rewards.RewardType, expiresAt int64) (uint32, error) {
	var index uint32
	err := l.execute(func(engine *rewards.Engine) error {
		var err error
		index, err = engine.Assign(caller, recipient, rewardType, expiresAt)
		return err
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// Claim settles a grant and returns the payout.
func (l *Ledger) Claim(caller, recipient [20]byte, index uint32) (*big.Int, error) {
	var payout *big.Int
	err := l.execute(func(engine *rewards.Engine) error {
		var err error
		payout, err = engine.Claim(caller, recipient, index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

// PoolInfo returns the committed pool snapshot.
func (l *Ledger) PoolInfo() (*rewards.RewardPool, error) {
	var pool *rewards.RewardPool
	err := l.view(func(engine *rewards.Engine, _ *state.Manager) error {
		var err error
		pool, err = engine.PoolInfo()
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// UserRewards returns the recipient's committed grant list.
func (l *Ledger) UserRewards(recipient [20]byte) ([]*rewards.Reward, error) {
	var list []*rewards.Reward
	err := l.view(func(engine *rewards.Engine, _ *state.Manager) error {
		var err error
		list, err = engine.UserRewards(recipient)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// SettledBalance returns the total ever paid out to the address.
func (l *Ledger) SettledBalance(addr [20]byte) (*big.Int, error) {
	var balance *big.Int
	err := l.view(func(_ *rewards.Engine, manager *state.Manager) error {
		var err error
		balance, err = manager.SettledBalance(addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}
