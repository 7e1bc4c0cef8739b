package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreach-labs/leadgen-cli/internal/admin"
	"github.com/outreach-labs/leadgen-cli/internal/contact"
	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/model"
	"github.com/outreach-labs/leadgen-cli/internal/relevance"
)

// fakeFetcher serves canned pages and HEAD statuses.
type fakeFetcher struct {
	pages      map[string]string
	headStatus int
	headErr    error
}

func (f *fakeFetcher) Get(_ context.Context, url string) (*fetch.Response, error) {
	if body, ok := f.pages[url]; ok {
		return &fetch.Response{StatusCode: 200, Body: body, FinalURL: url}, nil
	}
	return &fetch.Response{StatusCode: 404, FinalURL: url}, nil
}

func (f *fakeFetcher) Head(_ context.Context, _ string) (int, error) {
	return f.headStatus, f.headErr
}

func (f *fakeFetcher) Name() string { return "fake" }

type fakeSeen map[[2]string]bool

func (s fakeSeen) Contains(key model.DedupKey) bool {
	return s[[2]string{key.Nome, key.Comune}]
}

func newTestEnricher(t *testing.T, f *fakeFetcher) *Enricher {
	t.Helper()
	analyzer, err := relevance.NewAnalyzer("fotovoltaico", nil, relevance.WithFetcher(f))
	require.NoError(t, err)
	return New(analyzer,
		WithFetcher(f),
		WithExtractor(contact.NewExtractor(contact.WithExtractFetcher(f))),
	)
}

func TestIsBigCompany(t *testing.T) {
	tests := []struct {
		nome string
		want bool
	}{
		{"Enel Energia", true},
		{"Edison Next Milano", true},
		{"Gruppo Industriale Lombardo", true},
		{"Energy Holding", true},
		{"Impianti Verdi S.p.A.", true},
		{"Rossi Impianti Srl", false},
		{"Fotovoltaico Bianchi", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBigCompany(tt.nome))
		})
	}
}

func TestFilter(t *testing.T) {
	e := newTestEnricher(t, &fakeFetcher{})

	t.Run("big company", func(t *testing.T) {
		rec := &model.CompanyRecord{Nome: "  Enel X  ", Comune: "Milano"}
		assert.Equal(t, SkipBigCompany, e.Filter(rec, nil))
		assert.Equal(t, "Enel X", rec.Nome)
	})

	t.Run("cleans site to base url", func(t *testing.T) {
		rec := &model.CompanyRecord{Nome: "Rossi Impianti", SitoWeb: "https://rossi.it/chi-siamo?utm=1"}
		assert.Equal(t, SkipNone, e.Filter(rec, nil))
		assert.Equal(t, "https://rossi.it", rec.SitoWeb)
	})

	t.Run("blanks google redirect sites", func(t *testing.T) {
		rec := &model.CompanyRecord{Nome: "Rossi Impianti", SitoWeb: "https://maps.google.com/place/rossi"}
		assert.Equal(t, SkipNone, e.Filter(rec, nil))
		assert.Empty(t, rec.SitoWeb)
	})

	t.Run("duplicate", func(t *testing.T) {
		seen := fakeSeen{{"rossi impianti", "milano"}: true}
		rec := &model.CompanyRecord{Nome: "Rossi Impianti", Comune: "Milano", SitoWeb: "https://altro.it"}
		assert.Equal(t, SkipDuplicate, e.Filter(rec, seen))
	})

	t.Run("fresh record passes", func(t *testing.T) {
		rec := &model.CompanyRecord{Nome: "Bianchi Energia", Comune: "Torino"}
		assert.Equal(t, SkipNone, e.Filter(rec, fakeSeen{}))
	})
}

func TestEnrich_RelevantSite(t *testing.T) {
	contactPage := `<html><body>
		<footer>info@rossifotovoltaico.it</footer>
		<a href="https://www.linkedin.com/company/rossi-fotovoltaico">LinkedIn</a>
	</body></html>`
	f := &fakeFetcher{
		headStatus: 200,
		pages: map[string]string{
			"https://rossifotovoltaico.it":          contactPage,
			"https://rossifotovoltaico.it/":         contactPage,
			"https://rossifotovoltaico.it/contatti": contactPage,
		},
	}
	e := newTestEnricher(t, f)

	rec := &model.CompanyRecord{
		Nome:      "Rossi Fotovoltaico",
		Comune:    "Milano",
		SitoWeb:   "https://rossifotovoltaico.it",
		Indirizzo: "Indirizzo: Via Roma 1,\n Milano",
		Telefono:  "Tel: 02 1234567",
	}
	e.Enrich(context.Background(), rec)

	// The industry keyword in the domain scores the site without a fetch.
	assert.True(t, rec.Pertinenza)
	assert.Equal(t, "fotovoltaico", rec.Categoria)
	assert.InDelta(t, 0.8, rec.Confidenza, 0.001)

	assert.Equal(t, "info@rossifotovoltaico.it", rec.Email)
	assert.Equal(t, "https://www.linkedin.com/company/rossi-fotovoltaico", rec.LinkedIn)

	assert.Equal(t, "Via Roma 1, Milano", rec.Indirizzo)
	assert.Equal(t, "02 1234567", rec.Telefono)
}

func TestEnrich_UnreachableSiteSkipsExtraction(t *testing.T) {
	f := &fakeFetcher{headErr: assert.AnError}
	e := newTestEnricher(t, f)

	rec := &model.CompanyRecord{
		Nome:    "Rossi Fotovoltaico",
		Comune:  "Milano",
		SitoWeb: "https://rossifotovoltaico.it",
	}
	e.Enrich(context.Background(), rec)

	assert.True(t, rec.Pertinenza, "domain shortcut still scores the site")
	assert.Empty(t, rec.Email)
	assert.Empty(t, rec.LinkedIn)
}

func TestEnrich_NoSite(t *testing.T) {
	e := newTestEnricher(t, &fakeFetcher{})

	rec := &model.CompanyRecord{Nome: "Bianchi Energia", Comune: "Torino"}
	e.Enrich(context.Background(), rec)

	assert.False(t, rec.Pertinenza)
	assert.Equal(t, relevance.CategoryUnknown, rec.Categoria)
	assert.Zero(t, rec.Confidenza)
	assert.Empty(t, rec.Email)
}

type fakeOracle struct {
	name string
	err  error
}

func (o *fakeOracle) AdminName(_ context.Context, _, _ string) (string, error) {
	return o.name, o.err
}

func TestEnrich_AdminLookup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := &fakeFetcher{}
		analyzer, err := relevance.NewAnalyzer("fotovoltaico", nil, relevance.WithFetcher(f))
		require.NoError(t, err)
		e := New(analyzer, WithFetcher(f), WithOracle(&fakeOracle{name: "Mario Rossi"}))

		rec := &model.CompanyRecord{Nome: "Rossi Impianti", Comune: "Milano"}
		e.Enrich(context.Background(), rec)
		assert.Equal(t, "Mario Rossi", rec.Contatto)
	})

	t.Run("not found", func(t *testing.T) {
		f := &fakeFetcher{}
		analyzer, err := relevance.NewAnalyzer("fotovoltaico", nil, relevance.WithFetcher(f))
		require.NoError(t, err)
		e := New(analyzer, WithFetcher(f), WithOracle(&fakeOracle{err: admin.ErrNoAdminFound}))

		rec := &model.CompanyRecord{Nome: "Rossi Impianti", Comune: "Milano"}
		e.Enrich(context.Background(), rec)
		assert.Empty(t, rec.Contatto)
	})
}
