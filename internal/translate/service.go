package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/services"
	"subsync/internal/srt"
)

// Service translates whole SRT documents through an Engine, consulting the
// optional Memory first.
type Service struct {
	engine Engine
	memory *Memory
	logger *slog.Logger
}

// NewService wires engine and memory. memory may be nil.
func NewService(engine Engine, memory *Memory, logger *slog.Logger) *Service {
	return &Service{engine: engine, memory: memory, logger: logging.NewComponentLogger(logger, "translate")}
}

// Engine returns the underlying engine.
func (s *Service) Engine() Engine { return s.engine }

// Languages lists the engine's supported languages.
func (s *Service) Languages(ctx context.Context) ([]language.Option, error) {
	return s.engine.Languages(ctx)
}

// TranslateDocument parses text, translates every cue's text, and formats the
// document back with numbering and timing preserved. A malformed document
// fails with an srt.ParseError before any engine call.
func (s *Service) TranslateDocument(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", services.Wrap(services.ErrValidation, "translate", "translate document", "target language is required", nil)
	}
	doc, err := srt.Parse(text)
	if err != nil {
		return "", err
	}
	source, target = normalizeLang(source), normalizeLang(target)

	texts := make([]string, len(doc.Cues))
	for i, cue := range doc.Cues {
		texts[i] = cue.Text()
	}
	translated, err := s.TranslateTexts(ctx, texts, source, target)
	if err != nil {
		return "", err
	}

	out := srt.Document{Cues: make([]srt.Cue, len(doc.Cues))}
	for i, cue := range doc.Cues {
		cue.Lines = cueLines(translated[i], cue.Lines)
		out.Cues[i] = cue
	}
	s.logger.InfoContext(ctx, "subtitle translated",
		logging.String("engine", s.engine.Name()),
		logging.String("source", source),
		logging.String("target", target),
		logging.Int("cues", len(doc.Cues)),
	)
	return out.Format(), nil
}

// cueLines splits a translation into cue text lines. Blank lines would end
// the cue early, so they are dropped; an empty translation keeps the source
// lines.
func cueLines(translated string, source []string) []string {
	translated = strings.ReplaceAll(translated, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(translated, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return source
	}
	return lines
}

// TranslateTexts translates texts, reusing remembered translations and
// remembering new ones. Duplicate texts are sent to the engine once.
func (s *Service) TranslateTexts(ctx context.Context, texts []string, source, target string) ([]string, error) {
	engineName := s.engine.Name()
	known, err := s.memory.Lookup(ctx, engineName, source, target, texts)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "translation memory lookup failed; translating everything", "translation_memory_lookup_failed",
			logging.Error(err),
		)
		known = map[string]string{}
	}

	var pending []string
	queued := make(map[string]struct{})
	for _, text := range texts {
		if _, ok := known[text]; ok {
			continue
		}
		if _, ok := queued[text]; ok {
			continue
		}
		queued[text] = struct{}{}
		pending = append(pending, text)
	}

	if len(pending) > 0 {
		results, err := s.engine.Translate(ctx, pending, source, target)
		if err != nil {
			return nil, err
		}
		if len(results) != len(pending) {
			return nil, services.Wrap(services.ErrUpstream, "translate", engineName, fmt.Sprintf("engine returned %d translations for %d texts", len(results), len(pending)), nil)
		}
		fresh := make(map[string]string, len(pending))
		for i, text := range pending {
			known[text] = results[i]
			if strings.TrimSpace(results[i]) != "" {
				fresh[text] = results[i]
			}
		}
		if err := s.memory.Store(ctx, engineName, source, target, fresh); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "translation memory store failed", "translation_memory_store_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
			)
		}
	}
	s.logger.DebugContext(ctx, "translation batch resolved",
		logging.Int("texts", len(texts)),
		logging.Int("engine_calls", len(pending)),
	)

	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = known[text]
	}
	return out, nil
}
