package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// Export returns the whole bank as an indented JSON array.
func (b *Bank) Export(ctx context.Context) ([]byte, error) {
	qs, err := b.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bank: %w", err)
	}
	if qs == nil {
		qs = []model.BankQuestion{}
	}
	return json.MarshalIndent(qs, "", "  ")
}

// ImportOutcome describes what happened to one imported file.
type ImportOutcome string

const (
	ImportDone      ImportOutcome = "imported"
	ImportDuplicate ImportOutcome = "duplicate" // same content already imported
	ImportChanged   ImportOutcome = "changed"   // name imported before with other content
)

// ImportResult reports the outcome of importing one file.
type ImportResult struct {
	Name    string        `json:"name"`
	Outcome ImportOutcome `json:"outcome"`
	Count   int           `json:"count"`
}

// Import appends the JSON array in data to the bank, using ledger to skip content
// that was already imported under name. A file whose content changed since its
// last import is skipped unless allowChanged is set, so re-running a seed does not
// duplicate questions.
func Import(ctx context.Context, bank *Bank, ledger Ledger, name string, data []byte, allowChanged bool) (ImportResult, error) {
	res := ImportResult{Name: name}
	hash := sha256sum(data)

	stored, err := ledger.ImportedHash(ctx, name)
	if err != nil {
		return res, fmt.Errorf("check import status for %s: %w", name, err)
	}
	if stored == hash {
		slog.Info("questions file unchanged, skipping", "name", name)
		res.Outcome = ImportDuplicate
		return res, nil
	}
	if stored != "" && !allowChanged {
		slog.Warn("questions file changed since last import, skipping to avoid duplicates", "name", name)
		res.Outcome = ImportChanged
		return res, nil
	}

	var batch []model.BankQuestion
	if err := json.Unmarshal(data, &batch); err != nil {
		return res, fmt.Errorf("parse %s: %w", name, err)
	}
	n, err := bank.InsertMany(ctx, batch)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", name, err)
	}
	if err := ledger.SetImportedHash(ctx, name, hash); err != nil {
		return res, fmt.Errorf("record import for %s: %w", name, err)
	}
	slog.Info("imported questions", "name", name, "count", n)
	res.Outcome = ImportDone
	res.Count = n
	return res, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
