package opensubtitles

import (
	"cmp"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"subsync/internal/language"
)

// SearchRequest describes subtitle discovery filters.
type SearchRequest struct {
	IMDBID    string
	Query     string
	Languages []string
	Season    int
	Episode   int
	Year      int
}

// Subtitle represents a subtitle candidate returned by OpenSubtitles.
type Subtitle struct {
	ID              string
	FileID          int64
	FileName        string
	Language        string
	Release         string
	FeatureTitle    string
	FeatureYear     int
	FeatureType     string
	Downloads       int
	HearingImpaired bool
	HD              bool
	AITranslated    bool
}

// SearchResponse bundles the subtitles returned by a query.
type SearchResponse struct {
	Subtitles []Subtitle
	Total     int
}

// values encodes the request as /subtitles query parameters, most downloaded
// first. Any season or episode makes it an episode search; an IMDB id alone
// makes it a movie search.
func (r SearchRequest) values() url.Values {
	params := url.Values{}
	set := func(key string, n int) {
		if n > 0 {
			params.Set(key, strconv.Itoa(n))
		}
	}
	imdb := SanitizeIMDBID(r.IMDBID)
	if imdb != "" {
		params.Set("imdb_id", imdb)
	}
	if q := strings.TrimSpace(r.Query); q != "" {
		params.Set("query", q)
	}
	if len(r.Languages) > 0 {
		params.Set("languages", strings.Join(r.Languages, ","))
	}
	set("season_number", r.Season)
	set("episode_number", r.Episode)
	set("year", r.Year)
	switch {
	case r.Season > 0 || r.Episode > 0:
		params.Set("type", "episode")
	case imdb != "":
		params.Set("type", "movie")
	}
	params.Set("order_by", "download_count")
	params.Set("order_direction", "desc")
	return params
}

// Search queries /subtitles. Entries without a language or a downloadable
// file are dropped.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if c == nil {
		return SearchResponse{}, errNilClient
	}
	endpoint := c.baseURL.JoinPath("subtitles")
	endpoint.RawQuery = req.values().Encode()

	var payload searchResponse
	if err := c.call(ctx, "search", http.MethodGet, endpoint, nil, &payload); err != nil {
		return SearchResponse{}, err
	}

	out := SearchResponse{Total: payload.Meta.Total, Subtitles: make([]Subtitle, 0, len(payload.Data))}
	for _, entry := range payload.Data {
		attrs := entry.Attributes
		file, ok := attrs.PrimaryFile()
		if attrs.Language == "" || !ok {
			continue
		}
		out.Subtitles = append(out.Subtitles, Subtitle{
			ID:              entry.ID,
			FileID:          file.FileID,
			FileName:        file.FileName,
			Language:        attrs.Language,
			Release:         attrs.Release,
			FeatureTitle:    attrs.FeatureDetails.Title,
			FeatureYear:     attrs.FeatureDetails.Year,
			FeatureType:     attrs.FeatureDetails.FeatureType,
			Downloads:       attrs.DownloadCount,
			HearingImpaired: attrs.HearingImpaired,
			HD:              attrs.HD,
			AITranslated:    attrs.AITranslated || attrs.MachineTranslated,
		})
	}
	return out, nil
}

// Languages lists the subtitle languages OpenSubtitles supports. Entries
// without a name get the local display name.
func (c *Client) Languages(ctx context.Context) ([]language.Option, error) {
	if c == nil {
		return nil, errNilClient
	}
	var payload languagesResponse
	if err := c.call(ctx, "languages", http.MethodGet, c.baseURL.JoinPath("infos", "languages"), nil, &payload); err != nil {
		return nil, err
	}
	out := make([]language.Option, 0, len(payload.Data))
	for _, entry := range payload.Data {
		code := strings.TrimSpace(entry.Code)
		if code == "" {
			continue
		}
		out = append(out, language.Option{Code: code, Name: cmp.Or(strings.TrimSpace(entry.Name), language.DisplayName(code))})
	}
	return out, nil
}

// SanitizeIMDBID strips the "tt" prefix and rejects non-numeric identifiers.
func SanitizeIMDBID(value string) string {
	value = strings.TrimPrefix(strings.TrimSpace(value), "tt")
	if value == "" {
		return ""
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return ""
	}
	return value
}

type searchResponse struct {
	Data []struct {
		ID         string           `json:"id"`
		Attributes searchAttributes `json:"attributes"`
	} `json:"data"`
	Meta struct {
		Total int `json:"total_count"`
	} `json:"meta"`
}

type searchAttributes struct {
	Language          string         `json:"language"`
	Release           string         `json:"release"`
	DownloadCount     int            `json:"download_count"`
	HearingImpaired   bool           `json:"hearing_impaired"`
	HD                bool           `json:"hd"`
	AITranslated      bool           `json:"ai_translated"`
	MachineTranslated bool           `json:"machine_translated"`
	FeatureDetails    featureDetails `json:"feature_details"`
	Files             []searchFile   `json:"files"`
}

// PrimaryFile returns the first attached file; OpenSubtitles lists the
// main SRT first.
func (a searchAttributes) PrimaryFile() (searchFile, bool) {
	if len(a.Files) == 0 || a.Files[0].FileID == 0 {
		return searchFile{}, false
	}
	return a.Files[0], true
}

type featureDetails struct {
	FeatureType string `json:"feature_type"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
}

type searchFile struct {
	FileID   int64  `json:"file_id"`
	FileName string `json:"file_name"`
}

type languagesResponse struct {
	Data []struct {
		Code string `json:"language_code"`
		Name string `json:"language_name"`
	} `json:"data"`
}
