package discovery

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultRadiusKm = 5

// LoadAreas reads municipalities from a CSV file. The name column may be
// "comune" or "denominazione_ita"; "lat", "lon", and an optional "radius_km"
// column supply the search circle. Rows without usable coordinates are
// skipped with a warning.
func LoadAreas(path string) ([]Area, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: open areas file %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: read areas header of %s", path)
	}

	cols := make(map[string]int)
	for i, col := range header {
		cols[strings.TrimSpace(strings.ToLower(col))] = i
	}
	nameIdx, ok := cols["comune"]
	if !ok {
		nameIdx, ok = cols["denominazione_ita"]
	}
	if !ok {
		return nil, eris.Errorf("discovery: areas file %s has no comune column", path)
	}
	latIdx, latOK := cols["lat"]
	lonIdx, lonOK := cols["lon"]
	if !latOK || !lonOK {
		return nil, eris.Errorf("discovery: areas file %s has no lat/lon columns", path)
	}
	radiusIdx, radiusOK := cols["radius_km"]

	var areas []Area
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, nameIdx))
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(cell(row, latIdx)), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(cell(row, lonIdx)), 64)
		if name == "" || errLat != nil || errLon != nil {
			skipped++
			continue
		}

		radius := float64(defaultRadiusKm)
		if radiusOK {
			if v, err := strconv.ParseFloat(strings.TrimSpace(cell(row, radiusIdx)), 64); err == nil && v > 0 {
				radius = v
			}
		}

		areas = append(areas, Area{Comune: name, Lat: lat, Lon: lon, RadiusKm: radius})
	}

	if skipped > 0 {
		zap.L().Warn("discovery: skipped unusable area rows",
			zap.String("path", path), zap.Int("skipped", skipped))
	}
	zap.L().Info("discovery: loaded areas", zap.String("path", path), zap.Int("areas", len(areas)))
	return areas, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
