package jsengine

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedURL is returned for addresses the headless engine cannot load.
var ErrUnsupportedURL = errors.New("jsengine: unsupported url")

// resolveDocument returns the script source behind rawURL.
func resolveDocument(rawURL string) (string, error) {
	if rawURL == aboutBlank {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(rawURL, "data:"); ok {
		return decodeDataURL(rest)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		return string(data), nil
	case "":
		return "", fmt.Errorf("%w: %q has no scheme", ErrUnsupportedURL, rawURL)
	default:
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
}

// decodeDataURL decodes the part of a data: URL after the scheme. Only
// script and plain text media types are accepted.
func decodeDataURL(rest string) (string, error) {
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", fmt.Errorf("%w: data url without payload", ErrUnsupportedURL)
	}

	params := strings.Split(meta, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	switch mediaType {
	case "", "text/javascript", "application/javascript", "text/plain":
	default:
		return "", fmt.Errorf("%w: media type %q", ErrUnsupportedURL, mediaType)
	}

	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return "", fmt.Errorf("decode data url: %w", err)
			}
			return string(data), nil
		}
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", fmt.Errorf("decode data url: %w", err)
	}
	return text, nil
}

// FileURL returns the file:// address of path, made absolute.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: abs}).String(), nil
}
