package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_Discover(t *testing.T) {
	path := writeFile(t, "candidates.csv",
		"nome,comune,sito_web,keyword\n"+
			"Rossi Impianti,Milano,https://rossi.it,fotovoltaico\n"+
			"Bianchi Energia,Torino,,fotovoltaico\n")

	records, err := NewCSVSource(path).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Rossi Impianti", records[0].Nome)
	assert.Equal(t, "Milano", records[0].Comune)
	assert.Equal(t, "https://rossi.it", records[0].SitoWeb)
	assert.Equal(t, "fotovoltaico", records[0].Keyword)
	assert.Empty(t, records[1].SitoWeb)
}

func TestCSVSource_ColumnOrderIrrelevant(t *testing.T) {
	path := writeFile(t, "candidates.csv",
		"sito_web,nome,extra_column,comune\n"+
			"https://rossi.it,Rossi Impianti,ignored,Milano\n")

	records, err := NewCSVSource(path).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Rossi Impianti", records[0].Nome)
	assert.Equal(t, "Milano", records[0].Comune)
}

func TestCSVSource_SkipsMalformedRows(t *testing.T) {
	path := writeFile(t, "candidates.csv",
		"nome,comune\n"+
			"Rossi Impianti,Milano\n"+
			"Solare \"Verdi,Bergamo\n"+
			"Bianchi Energia,Torino\n")

	records, err := NewCSVSource(path).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Rossi Impianti", records[0].Nome)
	assert.Equal(t, "Bianchi Energia", records[1].Nome)
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Discover(context.Background())
	assert.Error(t, err)
}

func TestCSVSource_CanceledContext(t *testing.T) {
	path := writeFile(t, "candidates.csv", "nome,comune\nRossi Impianti,Milano\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVSource(path).Discover(ctx)
	assert.Error(t, err)
}
