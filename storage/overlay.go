package storage

// Overlay buffers writes on top of a backing database. Reads consult the
// buffer first and fall through to the backing store. Nothing reaches the
// backing store until Entries is flushed by the caller, which makes the
// overlay the unit of atomicity for a single ledger operation: drop the
// overlay and the operation never happened.
//
// Overlay is not safe for concurrent use; the ledger serializes access.
type Overlay struct {
	backend Database
	writes  map[string][]byte
	order   []string
}

// NewOverlay creates an empty overlay on top of the backing database.
func NewOverlay(backend Database) *Overlay {
	return &Overlay{
		backend: backend,
		writes:  make(map[string][]byte),
	}
}

func (o *Overlay) Put(key []byte, value []byte) error {
	k := string(key)
	if _, ok := o.writes[k]; !ok {
		o.order = append(o.order, k)
	}
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	if value, ok := o.writes[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return o.backend.Get(key)
}

func (o *Overlay) Has(key []byte) (bool, error) {
	if _, ok := o.writes[string(key)]; ok {
		return true, nil
	}
	return o.backend.Has(key)
}

func (o *Overlay) Write(entries []Entry) error {
	for _, entry := range entries {
		if err := o.Put(entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

// Close satisfies the Database interface. The backing store stays open.
func (o *Overlay) Close() {}

// Entries returns the buffered writes in first-write order, ready to be
// handed to the backing database's batch Write.
func (o *Overlay) Entries() []Entry {
	entries := make([]Entry, 0, len(o.order))
	for _, k := range o.order {
		entries = append(entries, Entry{Key: []byte(k), Value: o.writes[k]})
	}
	return entries
}

// Dirty reports whether the overlay holds any buffered writes.
func (o *Overlay) Dirty() bool {
	return len(o.writes) > 0
}
