// Package ledger tracks which companies have already been enriched and
// persisted, so interrupted runs resume without duplicating work. The output
// CSV itself is the authoritative history; the ledger is its in-memory index.
package ledger

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/model"
	"github.com/outreach-labs/leadgen-cli/internal/urlutil"
)

// Ledger is a mutex-guarded seen-set of dedup keys. Safe for concurrent use
// by the parallel enricher.
type Ledger struct {
	mu   sync.Mutex
	keys map[model.DedupKey]bool

	// nameComune indexes (nome, comune) pairs. Two listings for the same
	// business often disagree on scheme or www prefix, so the site part of
	// the key is recorded but membership is decided on name+municipality.
	nameComune map[[2]string]bool
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{
		keys:       make(map[model.DedupKey]bool),
		nameComune: make(map[[2]string]bool),
	}
}

// Load builds a Ledger from an existing output CSV. A missing or malformed
// file yields an empty ledger, never an error: a first run simply has no
// history. Rows with extra or missing columns are tolerated.
func Load(outputPath string) *Ledger {
	l := New()

	f, err := os.Open(outputPath)
	if err != nil {
		return l
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return l
	}

	nomeIdx, comuneIdx, sitoIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "nome":
			nomeIdx = i
		case "comune":
			comuneIdx = i
		case "sito_web":
			sitoIdx = i
		}
	}
	if nomeIdx < 0 || comuneIdx < 0 {
		zap.L().Warn("ledger: output file has no nome/comune columns, starting empty",
			zap.String("path", outputPath),
		)
		return l
	}

	rows := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Corrupt row, likely an interrupted append. Skip and continue.
			continue
		}
		sito := ""
		if sitoIdx >= 0 && sitoIdx < len(row) {
			sito = urlutil.Clean(strings.TrimSpace(row[sitoIdx]))
		}
		l.Add(model.NewDedupKey(field(row, nomeIdx), field(row, comuneIdx), sito))
		rows++
	}

	zap.L().Info("ledger: loaded existing keys",
		zap.String("path", outputPath),
		zap.Int("rows", rows),
	)
	return l
}

// Contains reports whether a company with the key's name and municipality
// was already persisted.
func (l *Ledger) Contains(key model.DedupKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nameComune[[2]string{key.Nome, key.Comune}]
}

// Add records a persisted key.
func (l *Ledger) Add(key model.DedupKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[key] = true
	l.nameComune[[2]string{key.Nome, key.Comune}] = true
}

// Len returns the number of recorded keys.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Keys returns a snapshot of all recorded keys.
func (l *Ledger) Keys() []model.DedupKey {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.DedupKey, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	return out
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
