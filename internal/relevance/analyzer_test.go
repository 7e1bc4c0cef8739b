package relevance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreach-labs/leadgen-cli/internal/fetch"
)

type stubFetcher struct {
	resp *fetch.Response
	err  error
}

func (s *stubFetcher) Get(ctx context.Context, url string) (*fetch.Response, error) {
	return s.resp, s.err
}

func (s *stubFetcher) Head(ctx context.Context, url string) (int, error) { return 0, s.err }

func (s *stubFetcher) Name() string { return "stub" }

func newTestAnalyzer(t *testing.T, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer("fotovoltaico", nil, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAnalyzer_UnknownIndustry(t *testing.T) {
	_, err := NewAnalyzer("apicoltura", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown industry")
}

func TestAnalyzeText(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name         string
		text         string
		wantRelevant bool
		wantScore    float64
		wantTier     Tier
	}{
		{
			name:         "strongly positive",
			text:         "Installazione impianto fotovoltaico con pannelli e inverter",
			wantRelevant: true,
			wantScore:    98, // 4 positive hits: 50 + 4*12
			wantTier:     TierAlta,
		},
		{
			name:         "negative only",
			text:         "Negozio di scarpe in centro",
			wantRelevant: false,
			wantScore:    32, // 1 negative hit: 50 - 18
			wantTier:     TierBassa,
		},
		{
			name:         "neutral text is not relevant",
			text:         "Azienda italiana fondata nel 1985",
			wantRelevant: false,
			wantScore:    50,
			wantTier:     TierBassa,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := a.AnalyzeText(tt.text)
			assert.Equal(t, tt.wantRelevant, res.Relevant)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantTier, res.Tier)
			assert.Equal(t, "fotovoltaico", res.Category)
		})
	}
}

func TestAnalyzeText_ScoreClamped(t *testing.T) {
	a := newTestAnalyzer(t)

	// All eight positive keywords present: 50 + 96 clamps to 100.
	res := a.AnalyzeText("fotovoltaico pannelli inverter accumulo impianto energia solare kwh kwp")
	assert.Equal(t, 100.0, res.Score)

	res = a.AnalyzeText("negozio rivendita ecommerce supermercato")
	assert.Equal(t, 0.0, res.Score)
}

func TestAnalyzeText_MorePositivesNeverLowerScore(t *testing.T) {
	a := newTestAnalyzer(t)

	one := a.AnalyzeText("impianto elettrico civile")
	two := a.AnalyzeText("impianto fotovoltaico civile")
	assert.GreaterOrEqual(t, two.Score, one.Score)
}

func TestAnalyzeWebsite_EmptyURL(t *testing.T) {
	a := newTestAnalyzer(t)

	res := a.AnalyzeWebsite(context.Background(), "")
	assert.False(t, res.Relevant)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, TierBassa, res.Tier)
	assert.Equal(t, CategoryUnknown, res.Category)
}

func TestAnalyzeWebsite_DomainShortcut(t *testing.T) {
	// Diagnostic domain: no fetch should happen.
	a := newTestAnalyzer(t, WithFetcher(&stubFetcher{err: eris.New("must not be called")}))

	res := a.AnalyzeWebsite(context.Background(), "https://www.rossifotovoltaico.it")
	assert.True(t, res.Relevant)
	assert.Equal(t, 0.8, res.Confidence)
	assert.Equal(t, TierAlta, res.Tier)
	assert.Equal(t, "fotovoltaico", res.Category)
}

func TestAnalyzeWebsite_UnreachableSoftFails(t *testing.T) {
	a := newTestAnalyzer(t, WithFetcher(&stubFetcher{err: eris.New("connection refused")}))

	res := a.AnalyzeWebsite(context.Background(), "https://dead.example")
	assert.False(t, res.Relevant)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, CategoryUnknown, res.Category)
}

func TestAnalyzeWebsite_RelevantSite(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>
<head><title>Impianti fotovoltaici</title></head>
<body>
<h1>Pannelli solari e inverter</h1>
<p>Realizziamo impianti fotovoltaici chiavi in mano con sistemi di accumulo.</p>
</body>
</html>`)
	}))
	defer ts.Close()

	a := newTestAnalyzer(t, WithFetcher(fetch.NewHTTPFetcher()))
	res := a.AnalyzeWebsite(context.Background(), ts.URL)
	assert.True(t, res.Relevant)
	assert.Greater(t, res.Confidence, 0.5)
	assert.Equal(t, "fotovoltaico", res.Category)
	assert.NotEqual(t, TierBassa, res.Tier)
}

func TestAnalyzeWebsite_OffIndustrySite(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>
<head><title>Negozio di scarpe</title></head>
<body><p>Rivendita di calzature, borse e accessori in centro.</p></body>
</html>`)
	}))
	defer ts.Close()

	a := newTestAnalyzer(t, WithFetcher(fetch.NewHTTPFetcher()))
	res := a.AnalyzeWebsite(context.Background(), ts.URL)
	assert.False(t, res.Relevant)
	assert.Equal(t, CategoryNotRelevant, res.Category)
}

func TestAnalyzeWebsite_IgnoresScriptContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
<script>var kw = "fotovoltaico pannelli inverter accumulo impianto";</script>
<p>Parrucchiere per signora.</p>
</body></html>`)
	}))
	defer ts.Close()

	a := newTestAnalyzer(t, WithFetcher(fetch.NewHTTPFetcher()))
	res := a.AnalyzeWebsite(context.Background(), ts.URL)
	assert.False(t, res.Relevant)
}
