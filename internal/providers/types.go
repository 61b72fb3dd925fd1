package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"subsync/internal/services"
)

// Kind names a subtitle provider.
type Kind string

const (
	KindOpenSubtitles Kind = "opensubtitles"
	KindSubDL         Kind = "subdl"
)

// ParseKind validates a provider name.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindOpenSubtitles:
		return KindOpenSubtitles, nil
	case KindSubDL:
		return KindSubDL, nil
	default:
		return "", services.Wrap(services.ErrValidation, "providers", "parse kind", fmt.Sprintf("unknown provider %q", value), nil)
	}
}

// Query is a provider-neutral search request.
type Query struct {
	Text      string
	Languages []string
	IMDBID    string
	Year      int
	Season    int
	Episode   int
}

// IsEpisode reports whether the query targets a single TV episode.
func (q Query) IsEpisode() bool {
	return q.Season > 0 && q.Episode > 0
}

// Validate rejects queries that give a provider nothing to search on.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" && strings.TrimSpace(q.IMDBID) == "" {
		return services.Wrap(services.ErrValidation, "providers", "search", "query or imdb_id is required", nil)
	}
	if q.Season < 0 || q.Episode < 0 || q.Year < 0 {
		return services.Wrap(services.ErrValidation, "providers", "search", "season, episode and year must not be negative", nil)
	}
	return nil
}

// Ref identifies a downloadable subtitle. OpenSubtitles refs carry a file id,
// SubDL refs carry the archive path relative to the download host.
type Ref struct {
	Provider Kind
	FileID   int64
	Path     string
}

// ParseRef decodes the string form produced by Ref.String.
func ParseRef(value string) (Ref, error) {
	value = strings.TrimSpace(value)
	prefix, rest, ok := strings.Cut(value, ":")
	if !ok || rest == "" {
		return Ref{}, services.Wrap(services.ErrValidation, "providers", "parse ref", fmt.Sprintf("malformed reference %q", value), nil)
	}
	kind, err := ParseKind(prefix)
	if err != nil {
		return Ref{}, err
	}
	switch kind {
	case KindOpenSubtitles:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return Ref{}, services.Wrap(services.ErrValidation, "providers", "parse ref", fmt.Sprintf("invalid opensubtitles file id %q", rest), nil)
		}
		return Ref{Provider: kind, FileID: id}, nil
	default:
		if strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, `\\`) || strings.Contains(rest, "://") {
			return Ref{}, services.Wrap(services.ErrValidation, "providers", "parse ref", fmt.Sprintf("%s reference must be a download path, got %q", kind, rest), nil)
		}
		if !strings.HasPrefix(rest, "/") {
			rest = "/" + rest
		}
		return Ref{Provider: kind, Path: rest}, nil
	}
}

func (r Ref) String() string {
	switch r.Provider {
	case KindOpenSubtitles:
		return string(r.Provider) + ":" + strconv.FormatInt(r.FileID, 10)
	default:
		return string(r.Provider) + ":" + r.Path
	}
}

// MarshalText encodes the reference in its string form.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes the string form.
func (r *Ref) UnmarshalText(text []byte) error {
	parsed, err := ParseRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// OpenSubtitlesDetail holds fields only OpenSubtitles reports.
type OpenSubtitlesDetail struct {
	SubtitleID   string `json:"subtitle_id"`
	FileID       int64  `json:"file_id"`
	FeatureType  string `json:"feature_type,omitempty"`
	HD           bool   `json:"hd"`
	AITranslated bool   `json:"ai_translated"`
}

// SubDLDetail holds fields only SubDL reports.
type SubDLDetail struct {
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
	Author      string `json:"author,omitempty"`
	Season      int    `json:"season,omitempty"`
	Episode     int    `json:"episode,omitempty"`
}

// Result is one subtitle candidate. Exactly one of OpenSubtitles or SubDL is
// non-nil, matching Provider.
type Result struct {
	Provider        Kind                 `json:"provider"`
	Ref             Ref                  `json:"ref"`
	Release         string               `json:"release"`
	Language        string               `json:"language"`
	HearingImpaired bool                 `json:"hearing_impaired"`
	Downloads       int                  `json:"downloads"`
	Title           string               `json:"title,omitempty"`
	Year            int                  `json:"year,omitempty"`
	OpenSubtitles   *OpenSubtitlesDetail `json:"opensubtitles,omitempty"`
	SubDL           *SubDLDetail         `json:"subdl,omitempty"`
}

// Payload is a downloaded subtitle file.
type Payload struct {
	Data     []byte
	FileName string
	Language string
}

// Provider is a subtitle source.
type Provider interface {
	Kind() Kind
	Search(ctx context.Context, query Query) ([]Result, error)
	Download(ctx context.Context, ref Ref) (Payload, error)
}
