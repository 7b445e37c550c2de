package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// ErrNotFound is returned when no bank question has the requested ID.
var ErrNotFound = errors.New("question not found")

// FilterAll matches every value in Filter.
const FilterAll = "All"

// Bank is the question bank. The whole collection lives in one slot as a JSON
// array; reads load all of it and every mutation rewrites all of it.
type Bank struct {
	slot  Slot
	mu    sync.Mutex
	newID func() string
}

// NewBank creates a bank over slot.
func NewBank(slot Slot) *Bank {
	return &Bank{slot: slot, newID: newBankID}
}

// newBankID returns a time-ordered unique identifier.
func newBankID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "bank-" + uuid.NewString()
	}
	return "bank-" + id.String()
}

func (b *Bank) load(ctx context.Context) ([]model.BankQuestion, error) {
	data, err := b.slot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var qs []model.BankQuestion
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return qs, nil
}

func (b *Bank) save(ctx context.Context, qs []model.BankQuestion) error {
	if qs == nil {
		qs = []model.BankQuestion{}
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("encode question bank: %w", err)
	}
	return b.slot.Save(ctx, data)
}

// List returns every bank question in insertion order.
func (b *Bank) List(ctx context.Context) ([]model.BankQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Count returns the number of bank questions.
func (b *Bank) Count(ctx context.Context) (int, error) {
	qs, err := b.List(ctx)
	return len(qs), err
}

// Get returns the bank question with the given ID.
func (b *Bank) Get(ctx context.Context, id string) (model.BankQuestion, error) {
	qs, err := b.List(ctx)
	if err != nil {
		return model.BankQuestion{}, err
	}
	for _, q := range qs {
		if q.ID == id {
			return q, nil
		}
	}
	return model.BankQuestion{}, ErrNotFound
}

// Filter returns questions matching class and subject exactly.
// An empty value or FilterAll matches everything for that field.
func (b *Bank) Filter(ctx context.Context, classLevel, subject string) ([]model.BankQuestion, error) {
	qs, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.BankQuestion
	for _, q := range qs {
		if !matches(classLevel, q.ClassLevel) || !matches(subject, q.Subject) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// Match returns the questions whose class and subject equal the given values.
// There are no wildcards; a blank value matches only blank fields.
func (b *Bank) Match(ctx context.Context, classLevel, subject string) ([]model.BankQuestion, error) {
	qs, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.BankQuestion
	for _, q := range qs {
		if q.ClassLevel == classLevel && q.Subject == subject {
			out = append(out, q)
		}
	}
	return out, nil
}

func matches(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}

// Insert validates q, assigns it a fresh ID and appends it to the bank.
func (b *Bank) Insert(ctx context.Context, q model.BankQuestion) (model.BankQuestion, error) {
	if err := model.ValidateBankQuestion(q); err != nil {
		return model.BankQuestion{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	qs, err := b.load(ctx)
	if err != nil {
		return model.BankQuestion{}, err
	}
	q.ID = b.newID()
	if err := b.save(ctx, append(qs, q)); err != nil {
		return model.BankQuestion{}, err
	}
	slog.Info("bank question added", "id", q.ID, "class", q.ClassLevel, "subject", q.Subject)
	return q, nil
}

// InsertMany validates every question first and appends them all in one write.
// Nothing is stored if any question is invalid.
func (b *Bank) InsertMany(ctx context.Context, batch []model.BankQuestion) (int, error) {
	for i, q := range batch {
		if err := model.ValidateBankQuestion(q); err != nil {
			return 0, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	qs, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	for _, q := range batch {
		q.ID = b.newID()
		qs = append(qs, q)
	}
	if err := b.save(ctx, qs); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// Update replaces the question with the given ID, keeping its ID and position.
func (b *Bank) Update(ctx context.Context, id string, q model.BankQuestion) (model.BankQuestion, error) {
	if err := model.ValidateBankQuestion(q); err != nil {
		return model.BankQuestion{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	qs, err := b.load(ctx)
	if err != nil {
		return model.BankQuestion{}, err
	}
	for i := range qs {
		if qs[i].ID != id {
			continue
		}
		q.ID = id
		qs[i] = q
		if err := b.save(ctx, qs); err != nil {
			return model.BankQuestion{}, err
		}
		slog.Info("bank question updated", "id", id)
		return q, nil
	}
	return model.BankQuestion{}, ErrNotFound
}

// Delete removes the question with the given ID.
func (b *Bank) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	qs, err := b.load(ctx)
	if err != nil {
		return err
	}
	for i := range qs {
		if qs[i].ID != id {
			continue
		}
		if err := b.save(ctx, append(qs[:i], qs[i+1:]...)); err != nil {
			return err
		}
		slog.Info("bank question deleted", "id", id)
		return nil
	}
	return ErrNotFound
}
