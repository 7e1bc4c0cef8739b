// Package admin resolves the administrator or legal representative of a
// company, used to personalize outreach. Lookup is optional and disabled by
// default: it costs an API call per record.
package admin

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoAdminFound is returned when the lookup ran but no administrator name
// could be determined. Callers treat it as an empty result, not a failure.
var ErrNoAdminFound = eris.New("admin: no administrator found")

// Oracle answers "who runs this company?".
type Oracle interface {
	AdminName(ctx context.Context, nome, comune string) (string, error)
}

const (
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 60
)

const systemPrompt = "Sei un assistente specializzato nell'estrazione di nomi di amministratori di aziende italiane."

// notFoundPhrases are answers that mean "no name". The model is instructed to
// use the first one, the rest cover its common paraphrases.
var notFoundPhrases = []string{
	"nessun amministratore",
	"non ho trovato",
	"non è possibile",
	"non sono in grado",
}

// ClaudeOracle asks the Anthropic API for the administrator's name.
type ClaudeOracle struct {
	client sdk.Client
	model  string
}

// ClaudeOption configures a ClaudeOracle.
type ClaudeOption func(*ClaudeOracle)

// WithModel overrides the model used for lookups.
func WithModel(model string) ClaudeOption {
	return func(o *ClaudeOracle) { o.model = model }
}

// NewClaudeOracle returns an Oracle backed by the Anthropic API.
func NewClaudeOracle(apiKey string, opts ...ClaudeOption) *ClaudeOracle {
	o := &ClaudeOracle{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AdminName asks for the administrator or legal representative of the named
// company. Returns ErrNoAdminFound when the model cannot name one.
func (o *ClaudeOracle) AdminName(ctx context.Context, nome, comune string) (string, error) {
	prompt := fmt.Sprintf(
		"Chi è l'amministratore o legale rappresentante dell'azienda %q di %s?\n"+
			"Rispondi SOLO con il nome. Se non lo conosci con certezza, rispondi 'Nessun amministratore trovato'.",
		nome, comune,
	)

	msg, err := o.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(o.model),
		MaxTokens: defaultMaxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
		Temperature: sdk.Float(0.3),
	})
	if err != nil {
		return "", eris.Wrap(err, "admin: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = strings.TrimSpace(block.Text)
			break
		}
	}

	name, err := interpretAnswer(text)
	if err != nil {
		return "", err
	}
	zap.L().Debug("admin: resolved administrator",
		zap.String("nome", nome), zap.String("contatto", name))
	return name, nil
}

// interpretAnswer maps the model's reply to a name or ErrNoAdminFound.
func interpretAnswer(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoAdminFound
	}
	lower := strings.ToLower(text)
	for _, phrase := range notFoundPhrases {
		if strings.Contains(lower, phrase) {
			return "", ErrNoAdminFound
		}
	}
	return text, nil
}
