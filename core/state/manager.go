package state

import (
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"rewardpool/storage"
)

// Manager provides typed access to the reward ledger's persisted state on
// top of a plain key-value database. Logical keys are hashed before they hit
// the store so the backing layout stays uniform regardless of key shape.
//
// A Manager performs no buffering of its own; callers that need atomicity
// hand it an overlay database and commit or discard the overlay.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func prefixedKey(prefix []byte, suffix []byte) []byte {
	buf := make([]byte, len(prefix)+len(suffix))
	copy(buf, prefix)
	copy(buf[len(prefix):], suffix)
	return ethcrypto.Keccak256(buf)
}

func (m *Manager) get(key []byte) ([]byte, bool, error) {
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Manager) set(key []byte, value []byte) error {
	return m.db.Put(key, value)
}
