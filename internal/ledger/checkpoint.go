package ledger

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/model"
)

// Checkpoint periodically snapshots the ledger to a JSON sidecar so a crash
// between CSV appends still leaves a recoverable record of progress.
// Safe for concurrent use.
type Checkpoint struct {
	Path  string
	Every int

	mu    sync.Mutex
	runID string
	count int
}

type checkpointFile struct {
	RunID     string           `json:"run_id"`
	SavedAt   time.Time        `json:"saved_at"`
	Processed int              `json:"processed"`
	Keys      []model.DedupKey `json:"keys"`
}

// NewCheckpoint returns a Checkpoint that writes to path every n records.
// An n of zero or less disables periodic saves; Flush still works.
func NewCheckpoint(path string, n int) *Checkpoint {
	return &Checkpoint{
		Path:  path,
		Every: n,
		runID: uuid.NewString(),
	}
}

// Tick notes one processed record and saves a snapshot when the interval is
// reached. Save failures are logged, never fatal: losing a checkpoint costs
// at most one interval of re-scanning on resume.
func (c *Checkpoint) Tick(l *Ledger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	if c.Every <= 0 || c.count%c.Every != 0 {
		return
	}
	if err := c.save(l); err != nil {
		zap.L().Warn("checkpoint: save failed", zap.Error(err))
	}
}

// Flush writes a final snapshot regardless of the interval.
func (c *Checkpoint) Flush(l *Ledger) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(l)
}

// save must be called with mu held: it reads count and rewrites the shared
// .tmp sidecar.
func (c *Checkpoint) save(l *Ledger) error {
	keys := l.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Nome != keys[j].Nome {
			return keys[i].Nome < keys[j].Nome
		}
		if keys[i].Comune != keys[j].Comune {
			return keys[i].Comune < keys[j].Comune
		}
		return keys[i].Sito < keys[j].Sito
	})

	data, err := json.MarshalIndent(checkpointFile{
		RunID:     c.runID,
		SavedAt:   time.Now().UTC(),
		Processed: c.count,
		Keys:      keys,
	}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal snapshot")
	}

	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrap(err, "checkpoint: write snapshot")
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		return eris.Wrap(err, "checkpoint: replace snapshot")
	}
	return nil
}

// LoadCheckpoint reads a snapshot's keys into a fresh ledger. Missing or
// unreadable files yield an empty ledger.
func LoadCheckpoint(path string) *Ledger {
	l := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	var cf checkpointFile
	if err := json.Unmarshal(data, &cf); err != nil {
		zap.L().Warn("checkpoint: unreadable snapshot, ignoring",
			zap.String("path", path), zap.Error(err))
		return l
	}
	for _, k := range cf.Keys {
		l.Add(k)
	}
	return l
}
