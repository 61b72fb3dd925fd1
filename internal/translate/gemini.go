package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/services"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiBatchSize    = 50
)

const geminiPrompt = `Translate each string in the JSON array below from %s to %s.
These are subtitle lines; keep line breaks inside each string and keep them short.
Reply with only a JSON array of strings of exactly %d elements, in the same order.

%s`

// contentGenerator is the subset of genai.Models the engine uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures the Gemini engine.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini translates batches of cue texts with a single prompt per batch.
type Gemini struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*Gemini, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "init", "gemini api key is required", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "init", "create client", err)
	}
	return newGeminiWithGenerator(client.Models, cfg.Model, logger), nil
}

func newGeminiWithGenerator(models contentGenerator, model string, logger *slog.Logger) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{models: models, model: model, logger: logging.NewComponentLogger(logger, "gemini")}
}

func (g *Gemini) Name() string { return "gemini" }

// Translate sends texts in batches. A batch whose reply does not decode to the
// expected number of strings keeps the source text, as do empty replies.
func (g *Gemini) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)
	for start := 0; start < len(texts); start += geminiBatchSize {
		end := min(start+geminiBatchSize, len(texts))
		batch := texts[start:end]
		translated, err := g.translateBatch(ctx, batch, source, target)
		if err != nil {
			return nil, err
		}
		if len(translated) != len(batch) {
			g.logger.WarnContext(ctx, "gemini reply length mismatch; keeping source text",
				logging.String(logging.FieldEventType, "gemini_batch_mismatch"),
				logging.Int("expected", len(batch)),
				logging.Int("received", len(translated)),
			)
			continue
		}
		for i, text := range translated {
			if strings.TrimSpace(text) != "" {
				out[start+i] = text
			}
		}
	}
	return out, nil
}

func (g *Gemini) translateBatch(ctx context.Context, batch []string, source, target string) ([]string, error) {
	encoded, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode batch: %w", err)
	}
	prompt := fmt.Sprintf(geminiPrompt, languageLabel(source), languageLabel(target), len(batch), encoded)
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrUpstream, "gemini", "generate", "", err)
	}
	if result == nil {
		return nil, nil
	}
	var translated []string
	if err := json.Unmarshal([]byte(stripFence(result.Text())), &translated); err != nil {
		g.logger.DebugContext(ctx, "gemini reply was not a JSON array", logging.Error(err))
		return nil, nil
	}
	return translated, nil
}

// Languages returns the built-in translation options; Gemini has no listing
// endpoint for target languages.
func (g *Gemini) Languages(context.Context) ([]language.Option, error) {
	return language.Options(), nil
}

func languageLabel(code string) string {
	code = normalizeLang(code)
	if code == "auto" {
		return "the detected source language"
	}
	return language.DisplayName(code)
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
