// Package sink persists enriched records. Records are appended one at a time
// as they finish so an interrupted run keeps everything processed so far.
package sink

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/model"
)

const backupEvery = 10

// CSVSink appends CompanyRecords to a CSV file, writing the header once.
// Safe for concurrent use. Every tenth append the whole file is copied to a
// _backup sidecar, and a failed append falls back to an _emergency file so
// the record is never silently lost.
type CSVSink struct {
	mu      sync.Mutex
	path    string
	appends int
}

// NewCSVSink opens (or creates) the output file at path and ensures it starts
// with the expected header.
func NewCSVSink(path string) (*CSVSink, error) {
	s := &CSVSink{path: path}
	if err := s.ensureHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the output file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one record. On write failure the record is retried against
// the emergency sidecar; a landed emergency copy is logged and the batch goes
// on, so only a double failure returns an error.
func (s *CSVSink) Append(rec *model.CompanyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendTo(s.path, rec); err != nil {
		zap.L().Error("sink: append failed, writing emergency copy",
			zap.String("nome", rec.Nome), zap.Error(err))
		if eerr := appendTo(s.emergencyPath(), rec); eerr != nil {
			return eris.Wrap(err, "sink: append record")
		}
		zap.L().Warn("sink: record saved to emergency file",
			zap.String("nome", rec.Nome), zap.String("path", s.emergencyPath()))
		return nil
	}

	s.appends++
	if s.appends%backupEvery == 0 {
		if err := copyFile(s.path, s.backupPath()); err != nil {
			zap.L().Warn("sink: backup copy failed", zap.Error(err))
		}
	}
	return nil
}

func (s *CSVSink) backupPath() string {
	return sidecarPath(s.path, "_backup")
}

func (s *CSVSink) emergencyPath() string {
	return sidecarPath(s.path, "_emergency")
}

func sidecarPath(path, suffix string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexByte(path, '/') {
		return path[:i] + suffix + path[i:]
	}
	return path + suffix
}

// ensureHeader writes the CSV header if the file is missing or empty. An
// existing non-empty file is left untouched so resumed runs keep appending
// to their own history, whatever columns it has.
func (s *CSVSink) ensureHeader() error {
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		return nil
	}

	header, err := csvutil.Header(model.CompanyRecord{}, "csv")
	if err != nil {
		return eris.Wrap(err, "sink: derive header")
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return eris.Wrap(err, "sink: create output file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "sink: write header")
	}
	w.Flush()
	return eris.Wrap(w.Error(), "sink: flush header")
}

func appendTo(path string, rec *model.CompanyRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "sink: open for append")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.Encode(rec); err != nil {
		return eris.Wrap(err, "sink: encode record")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "sink: flush record")
	}
	return f.Sync()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrap(err, "sink: open source")
	}
	defer in.Close() //nolint:errcheck

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return eris.Wrap(err, "sink: open backup")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, in); err != nil {
		return eris.Wrap(err, "sink: copy backup")
	}
	return nil
}
