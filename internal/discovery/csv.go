package discovery

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/outreach-labs/leadgen-cli/internal/model"
)

// CSVSource reads candidates from a CSV export. Column order does not
// matter; unknown columns are ignored and missing ones stay empty, so
// partial exports and older files load fine.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a Source reading from path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Discover loads all rows. Individual malformed rows are skipped with a
// warning; only an unreadable file or header is an error.
func (s *CSVSource) Discover(ctx context.Context) ([]model.CompanyRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: open %s", s.Path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: read header of %s", s.Path)
	}

	var records []model.CompanyRecord
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "discovery: read candidates")
		}
		var rec model.CompanyRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		zap.L().Warn("discovery: skipped malformed rows",
			zap.String("path", s.Path), zap.Int("skipped", skipped))
	}

	zap.L().Info("discovery: loaded candidates from csv",
		zap.String("path", s.Path), zap.Int("records", len(records)))
	return records, nil
}
