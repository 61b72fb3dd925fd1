package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/providers"
	"subsync/internal/services"
	"subsync/internal/srt"
)

const maxRequestBody = 1 << 20

type languagesResponse struct {
	Languages []language.Option `json:"languages"`
}

type searchResponse struct {
	Results []providers.Result `json:"results"`
	Total   int                `json:"total"`
}

// subtitleRequest is the common body of download, sync and translate. Ref is
// the provider reference from a search result; FileID is accepted as a
// shorthand for an OpenSubtitles file.
type subtitleRequest struct {
	Ref        string          `json:"ref"`
	FileID     int64           `json:"file_id"`
	Filename   string          `json:"filename"`
	SyncTime   json.RawMessage `json:"sync_time"`
	StartAt    json.RawMessage `json:"start_at"`
	SourceLang string          `json:"source_lang"`
	TargetLang string          `json:"target_lang"`
}

func (req subtitleRequest) ref() (providers.Ref, error) {
	if strings.TrimSpace(req.Ref) != "" {
		return providers.ParseRef(req.Ref)
	}
	if req.FileID > 0 {
		return providers.Ref{Provider: providers.KindOpenSubtitles, FileID: req.FileID}, nil
	}
	return providers.Ref{}, services.Wrap(services.ErrValidation, "api", "parse request", "ref or file_id is required", nil)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if h.languages != nil {
		options, err := h.languages.Languages(r.Context())
		if err == nil {
			writeJSON(w, http.StatusOK, languagesResponse{Languages: options})
			return
		}
		if h.catalog == nil {
			h.fail(w, r, err)
			return
		}
		logging.WarnWithContext(logging.WithContext(r.Context(), h.logger), "provider language listing failed; serving catalog", "languages_fallback",
			logging.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, languagesResponse{Languages: h.catalogSearchOptions()})
}

func (h *Handler) catalogSearchOptions() []language.Option {
	if h.catalog == nil {
		return language.Options()
	}
	codes := h.catalog.SearchLanguages()
	out := make([]language.Option, 0, len(codes))
	for _, code := range codes {
		out = append(out, language.Option{Code: code, Name: language.DisplayName(code)})
	}
	return out
}

func (h *Handler) handleTranslationLanguages(w http.ResponseWriter, r *http.Request) {
	if h.translator != nil {
		options, err := h.translator.Languages(r.Context())
		if err == nil {
			writeJSON(w, http.StatusOK, languagesResponse{Languages: options})
			return
		}
		if h.catalog == nil {
			h.fail(w, r, err)
			return
		}
		logging.WarnWithContext(logging.WithContext(r.Context(), h.logger), "translator language listing failed; serving catalog", "translation_languages_fallback",
			logging.Error(err),
		)
	}
	if h.catalog == nil {
		h.fail(w, r, services.Wrap(services.ErrConfiguration, "api", "translation languages", "no translator configured", nil))
		return
	}
	writeJSON(w, http.StatusOK, languagesResponse{Languages: h.catalog.TranslationOptions()})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := providers.Query{
		Text:   strings.TrimSpace(values.Get("query")),
		IMDBID: strings.TrimSpace(values.Get("imdb_id")),
	}
	if query.Text == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	for _, field := range []struct {
		name string
		dest *int
	}{
		{"year", &query.Year},
		{"season", &query.Season},
		{"episode", &query.Episode},
	} {
		raw := strings.TrimSpace(values.Get(field.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be an integer", field.name))
			return
		}
		*field.dest = n
	}
	query.Languages = language.NormalizeList(splitList(values.Get("languages")))
	if len(query.Languages) == 0 && h.catalog != nil {
		query.Languages = h.catalog.SearchLanguages()
	}

	var kinds []providers.Kind
	for _, name := range splitList(values.Get("providers")) {
		kind, err := providers.ParseKind(name)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		kinds = append(kinds, kind)
	}

	results, err := h.registry.Search(r.Context(), query, kinds)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if results == nil {
		results = []providers.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results, Total: len(results)})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	text, payload, err := h.fetch(r, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	text, shifted, err := h.applySyncTime(r, text, req.SyncTime)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	suffix := ""
	if shifted {
		suffix = "_synced"
	}
	writeSubtitle(w, subtitleFilename(req.Filename, payload.FileName, suffix), text)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	startAt, err := parseStartAt(req.StartAt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	text, payload, err := h.fetch(r, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	aligned, err := srt.AlignFirst(text, startAt)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSubtitle(w, subtitleFilename(req.Filename, payload.FileName, "_synced"), aligned)
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if h.translator == nil {
		h.fail(w, r, services.Wrap(services.ErrConfiguration, "api", "translate", "no translator configured", nil))
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	target := strings.TrimSpace(req.TargetLang)
	if target == "" {
		writeError(w, http.StatusBadRequest, "target_lang is required")
		return
	}
	text, payload, err := h.fetch(r, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	text, shifted, err := h.applySyncTime(r, text, req.SyncTime)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	translated, err := h.translator.TranslateDocument(r.Context(), text, req.SourceLang, target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	suffix := ""
	if shifted {
		suffix = "_synced"
	}
	suffix += "_" + strings.ToLower(target)
	writeSubtitle(w, subtitleFilename(req.Filename, payload.FileName, suffix), translated)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (subtitleRequest, bool) {
	var req subtitleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) fetch(r *http.Request, req subtitleRequest) (string, providers.Payload, error) {
	ref, err := req.ref()
	if err != nil {
		return "", providers.Payload{}, err
	}
	payload, err := h.registry.Download(r.Context(), ref)
	if err != nil {
		return "", providers.Payload{}, err
	}
	return srt.Decode(payload.Data), payload, nil
}

// applySyncTime shifts text when raw holds a finite number of seconds.
// Anything else leaves the text unmodified.
func (h *Handler) applySyncTime(r *http.Request, text string, raw json.RawMessage) (string, bool, error) {
	seconds, ok := parseSyncTime(raw)
	if !ok {
		if len(raw) > 0 && string(raw) != "null" {
			h.logger.DebugContext(r.Context(), "ignoring non-numeric sync_time", logging.String("sync_time", string(raw)))
		}
		return text, false, nil
	}
	shifted, err := srt.Shift(text, seconds)
	if err != nil {
		return "", false, err
	}
	return shifted, true, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", logging.Error(err), logging.Int("status", status))
	} else {
		h.logger.DebugContext(r.Context(), "request rejected", logging.Error(err), logging.Int("status", status))
	}
	writeError(w, status, errorMessage(r, status, err))
}

// parseStartAt accepts a timestamp string (see srt.ParseTimeString) or a JSON
// number of seconds.
func parseStartAt(raw json.RawMessage) (time.Duration, error) {
	var text string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, services.Wrap(services.ErrValidation, "api", "sync", "start_at must be a string or number", err)
		}
	} else {
		text = strings.TrimSpace(string(raw))
	}
	if text == "" || text == "null" {
		return 0, services.Wrap(services.ErrValidation, "api", "sync", "start_at is required", nil)
	}
	at, err := srt.ParseTimeString(text)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "api", "sync", fmt.Sprintf("invalid start_at %q", text), err)
	}
	if at < 0 {
		return 0, services.Wrap(services.ErrValidation, "api", "sync", "start_at must not be negative", nil)
	}
	return at, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
