package store

import (
	"context"
	"sync"
)

// BankSlotName is the slot holding the JSON-encoded question bank.
const BankSlotName = "ps_question_bank"

// Slot is a single named value that is always read and written whole.
type Slot interface {
	// Load returns the stored bytes, or nil if nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, value []byte) error
}

// Ledger remembers which seed files have been imported.
type Ledger interface {
	ImportedHash(ctx context.Context, path string) (string, error)
	SetImportedHash(ctx context.Context, path, hash string) error
}

// Backend is a durable home for slots and the import ledger.
type Backend interface {
	Ledger
	Slot(name string) Slot
	Close() error
}

// MemorySlot keeps the value in process memory.
type MemorySlot struct {
	mu    sync.Mutex
	value []byte
}

func (m *MemorySlot) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return nil, nil
	}
	return append([]byte(nil), m.value...), nil
}

func (m *MemorySlot) Save(_ context.Context, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = append([]byte(nil), value...)
	return nil
}
