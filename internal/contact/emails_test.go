package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreach-labs/leadgen-cli/internal/fetch"
)

// siteFetcher serves canned pages keyed by exact URL. Anything else is a 404,
// which the extractor and discoverer must treat as skip-and-continue.
type siteFetcher struct {
	pages  map[string]string
	finals map[string]string
	calls  []string
}

func (s *siteFetcher) Get(_ context.Context, url string) (*fetch.Response, error) {
	s.calls = append(s.calls, url)
	final := url
	if f, ok := s.finals[url]; ok {
		final = f
	}
	if body, ok := s.pages[url]; ok {
		return &fetch.Response{StatusCode: 200, Body: body, FinalURL: final}, nil
	}
	return &fetch.Response{StatusCode: 404, FinalURL: final}, nil
}

func (s *siteFetcher) Head(_ context.Context, _ string) (int, error) { return 200, nil }

func (s *siteFetcher) Name() string { return "site-stub" }

func TestNormalizeObfuscations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bracket at and dot", "info [at] acme [dot] it", "info@acme.it"},
		{"paren at and dot", "info (at) acme (dot) it", "info@acme.it"},
		{"word at and dot", "info at acme dot it", "info@acme.it"},
		{"italian chiocciola punto", "info [chiocciola] acme [punto] it", "info@acme.it"},
		{"spaces around at", "info @ acme.it", "info@acme.it"},
		{"spaces around dot", "info@acme . it", "info@acme.it"},
		{"mixed case markers", "info [AT] acme [DOT] it", "info@acme.it"},
		{"already plain", "info@acme.it", "info@acme.it"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeObfuscations(tt.in))
		})
	}
}

func TestCleanEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "info@acme.it", "info@acme.it"},
		{"uppercase", "INFO@ACME.IT", "info@acme.it"},
		{"mailto query", "info@acme.it?subject=Informazioni", "info@acme.it"},
		{"mailto prefix", "mailto:info@acme.it", "info@acme.it"},
		{"email label prefix", "email:info@acme.it", "info@acme.it"},
		{"trailing punctuation", "info@acme.it,", "info@acme.it"},
		{"wrapping parens", "(info@acme.it)", "info@acme.it"},
		{"duplicated tld", "info@acme.it.it", "info@acme.it"},
		{"legit multi label kept", "info@mail.acme.it", "info@mail.acme.it"},
		{"truncates at whitespace", "info@acme.it e molto altro", "info@acme.it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanEmail(tt.in))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"info@acme.it", true},
		{"vendite.nord@acme-impianti.it", true},
		{"not-an-email", false},
		{"a@acme.it", false},                    // local part too short
		{"info@example.com", false},             // placeholder domain
		{"abc123@sentry.io", false},             // error tracker
		{"noreply@acme.it", false},              // machine sender
		{"privacy@acme.it", false},              // legal inbox
		{"mario.rossi@gmail.com", true},         // free mail is valid, just deprioritized
		{"0123456789abcdef0123456789abcdef@acme.it", false}, // hex hash local part
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidEmail(tt.email))
		})
	}
}

func TestIsFreeMail(t *testing.T) {
	assert.True(t, isFreeMail("mario.rossi@gmail.com"))
	assert.True(t, isFreeMail("info@hotmail.com"))
	assert.False(t, isFreeMail("info@acme.it"))
	assert.False(t, isFreeMail("gmail.com@acme.it"))
}

func TestExtract(t *testing.T) {
	homepage := `<html><body>
		<p>Scrivici a mario.rossi@gmail.com</p>
		<span data-email="direzione@acme.it"></span>
		<script>var cfg = {"email": "noreply@acme.it"};</script>
		<a href="/contatti">Contatti</a>
		<a href="https://www.linkedin.com/company/acme-srl">Seguici</a>
		<footer>Acme Srl | amministrazione@acme.it</footer>
	</body></html>`
	contactPage := `<html><body>
		<div class="contatti-box">
			<p>vendite [at] acme [dot] it</p>
			<a href="mailto:info@acme.it?subject=Informazioni">Scrivici</a>
		</div>
	</body></html>`

	f := &siteFetcher{pages: map[string]string{
		"https://acme.it":          homepage,
		"https://acme.it/":         homepage,
		"https://acme.it/contatti": contactPage,
	}}
	e := NewExtractor(WithExtractFetcher(f))

	got := e.Extract(context.Background(), "https://acme.it", false)
	require.NotEmpty(t, got)

	// Zone trust ordering: footer, then contact section, then mailto, then
	// the rest of the page. Free mail is dropped because corporate addresses
	// exist, and the noreply JSON fragment never passes validation.
	assert.Equal(t, []string{
		"amministrazione@acme.it",
		"vendite@acme.it",
		"info@acme.it",
		"direzione@acme.it",
		LinkedInPrefix + "https://www.linkedin.com/company/acme-srl",
	}, got)
}

func TestExtract_FreeMailKeptWhenAlone(t *testing.T) {
	homepage := `<html><body><footer>mario.rossi@gmail.com</footer></body></html>`
	f := &siteFetcher{pages: map[string]string{
		"https://acme.it":  homepage,
		"https://acme.it/": homepage,
	}}
	e := NewExtractor(WithExtractFetcher(f))

	got := e.Extract(context.Background(), "https://acme.it", false)
	assert.Equal(t, []string{"mario.rossi@gmail.com"}, got)
}

func TestExtract_RejectsNonHTTP(t *testing.T) {
	e := NewExtractor(WithExtractFetcher(&siteFetcher{}))

	assert.Nil(t, e.Extract(context.Background(), "", false))
	assert.Nil(t, e.Extract(context.Background(), "ftp://acme.it", false))
	assert.Nil(t, e.Extract(context.Background(), "www.acme.it", false))
}

func TestExtract_UnreachableSite(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{}}
	e := NewExtractor(WithExtractFetcher(f))

	assert.Empty(t, e.Extract(context.Background(), "https://morta.it", true))
}
