package subdl

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nwaples/rardecode"
)

// ErrBadArchive is returned when a payload claims to be an archive but is
// neither a readable ZIP nor RAR file.
var ErrBadArchive = errors.New("subdl: file is not a valid zip or rar archive")

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// Extract returns the subtitle file inside data. Archives yield their first
// .srt entry, or their first file when none ends in .srt. Anything that is not
// an archive is returned as-is with fallbackName.
func Extract(data []byte, contentType, sourcePath string) ([]byte, string, error) {
	isArchiveHint := strings.Contains(strings.ToLower(contentType), "zip") ||
		strings.HasSuffix(strings.ToLower(sourcePath), ".zip") ||
		strings.HasSuffix(strings.ToLower(sourcePath), ".rar")

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return extractZip(data)
	case bytes.HasPrefix(data, rarMagic):
		return extractRar(data)
	case isArchiveHint:
		if body, name, err := extractZip(data); err == nil {
			return body, name, nil
		}
		if body, name, err := extractRar(data); err == nil {
			return body, name, nil
		}
		return nil, "", ErrBadArchive
	default:
		name := path.Base(sourcePath)
		if name == "." || name == "/" || name == "" {
			name = "subtitle.srt"
		}
		return data, name, nil
	}
}

func extractZip(data []byte) ([]byte, string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrBadArchive, err)
	}
	var chosen *zip.File
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if chosen == nil {
			chosen = file
		}
		if isSRT(file.Name) {
			chosen = file
			break
		}
	}
	if chosen == nil {
		return nil, "", fmt.Errorf("%w: archive is empty", ErrBadArchive)
	}
	rc, err := chosen.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open zip entry %s: %w", chosen.Name, err)
	}
	defer rc.Close()
	body, err := io.ReadAll(io.LimitReader(rc, maxArchiveBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read zip entry %s: %w", chosen.Name, err)
	}
	return body, path.Base(chosen.Name), nil
}

func extractRar(data []byte) ([]byte, string, error) {
	reader, err := rardecode.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrBadArchive, err)
	}
	var (
		firstBody []byte
		firstName string
	)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if firstName != "" {
				break
			}
			return nil, "", fmt.Errorf("%w: %w", ErrBadArchive, err)
		}
		if header.IsDir {
			continue
		}
		body, err := io.ReadAll(io.LimitReader(reader, maxArchiveBytes))
		if err != nil {
			return nil, "", fmt.Errorf("read rar entry %s: %w", header.Name, err)
		}
		name := path.Base(strings.ReplaceAll(header.Name, "\\", "/"))
		if isSRT(header.Name) {
			return body, name, nil
		}
		if firstName == "" {
			firstBody, firstName = body, name
		}
	}
	if firstName == "" {
		return nil, "", fmt.Errorf("%w: archive is empty", ErrBadArchive)
	}
	return firstBody, firstName, nil
}

func isSRT(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".srt")
}
