// Resource loading for the engine's default hosts: stylesheets and
// images fetched over HTTP, from the filesystem, or decoded from data
// URLs.
//
// Spec references:
// - HTML5 §2.5 URLs
// - RFC 2397: The "data" URL scheme
package dom

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ResourceLoader fetches resources by URL or file path.
type ResourceLoader struct {
	BaseURL string
	Client  *http.Client
}

// NewResourceLoader creates a loader resolving relative references
// against baseURL.
func NewResourceLoader(baseURL string) *ResourceLoader {
	return &ResourceLoader{BaseURL: baseURL, Client: http.DefaultClient}
}

// Load fetches the resource at path, resolving it against the
// loader's base URL first.
func (rl *ResourceLoader) Load(path string) ([]byte, error) {
	resolved := ResolveURL(rl.BaseURL, path)
	switch {
	case strings.HasPrefix(resolved, "data:"):
		return decodeDataURL(resolved)
	case isAbsoluteURL(resolved):
		return rl.fetch(resolved)
	}
	return os.ReadFile(resolved)
}

// LoadString fetches the resource as a string.
func (rl *ResourceLoader) LoadString(path string) (string, error) {
	data, err := rl.Load(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (rl *ResourceLoader) fetch(urlStr string) ([]byte, error) {
	client := rl.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(urlStr)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", urlStr, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// decodeDataURL decodes data:[<mediatype>][;base64],<data>.
// RFC 2397.
func decodeDataURL(dataURL string) ([]byte, error) {
	parsed, err := url.Parse(dataURL)
	if err != nil {
		return nil, fmt.Errorf("parse data URL: %w", err)
	}
	if parsed.Scheme != "data" {
		return nil, fmt.Errorf("not a data URL")
	}

	payload := parsed.Opaque
	comma := strings.Index(payload, ",")
	if comma < 0 {
		return nil, fmt.Errorf("invalid data URL: missing comma")
	}
	meta, data := payload[:comma], payload[comma+1:]

	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decode base64 data: %w", err)
		}
		return decoded, nil
	}
	decoded, err := url.QueryUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return []byte(decoded), nil
}
