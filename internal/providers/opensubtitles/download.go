package opensubtitles

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DownloadResult captures the downloaded subtitle payload. Remaining is the
// daily download quota left after this request, as reported by the API.
type DownloadResult struct {
	Data        []byte
	FileName    string
	Language    string
	DownloadURL string
	Remaining   int
	ResetTime   string
}

// Download negotiates a temporary link for fileID and fetches the SRT payload.
func (c *Client) Download(ctx context.Context, fileID int64) (DownloadResult, error) {
	if c == nil {
		return DownloadResult{}, errNilClient
	}
	if fileID <= 0 {
		return DownloadResult{}, errors.New("opensubtitles: invalid file id")
	}

	endpoint := c.baseURL.JoinPath("download")
	request := downloadRequest{FileID: fileID, SubFormat: "srt"}
	var info downloadResponse
	if err := c.call(ctx, "download negotiation", http.MethodPost, endpoint, request, &info); err != nil {
		return DownloadResult{}, err
	}
	if info.Link == "" {
		return DownloadResult{}, fmt.Errorf("opensubtitles: download response missing link (remaining %d, resets %s)", info.Remaining, cmp.Or(info.ResetTime, "unknown"))
	}
	link, err := endpoint.Parse(info.Link)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("opensubtitles: parse download url: %w", err)
	}

	data, err := c.fetch(ctx, link)
	if err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{
		Data:        data,
		FileName:    info.FileName,
		Language:    info.Language,
		DownloadURL: link.String(),
		Remaining:   info.Remaining,
		ResetTime:   info.ResetTime,
	}, nil
}

type downloadRequest struct {
	FileID    int64  `json:"file_id"`
	SubFormat string `json:"sub_format"`
}

type downloadResponse struct {
	Link      string `json:"link"`
	FileName  string `json:"file_name"`
	Language  string `json:"language"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"reset_time"`
}
