// URL resolution for the element tree: relative URLs in src/href
// attributes are resolved against the document base URL.
// HTML5 §2.5 URLs.
package dom

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/flintweb/flint/log"
)

// ResolveURL resolves a possibly relative URL against a base. The
// base may be an http(s) URL or a filesystem directory; absolute URLs
// and data URLs pass through unchanged.
func ResolveURL(baseURL, relativeURL string) string {
	if isAbsoluteURL(relativeURL) || strings.HasPrefix(relativeURL, "data:") {
		return relativeURL
	}
	if isAbsoluteURL(baseURL) {
		base, err := url.Parse(baseURL)
		if err != nil {
			log.Warnf("dom: failed to parse base URL %q: %v", baseURL, err)
			return relativeURL
		}
		rel, err := url.Parse(relativeURL)
		if err != nil {
			log.Warnf("dom: failed to parse URL %q: %v", relativeURL, err)
			return relativeURL
		}
		return base.ResolveReference(rel).String()
	}
	if filepath.IsAbs(relativeURL) {
		return relativeURL
	}
	return filepath.Join(baseURL, relativeURL)
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// DocumentBase extracts the effective base URL for a parsed tree: a
// <base href> when present, otherwise the supplied document URL's
// directory.
// HTML5 §4.2.3 The base element.
func DocumentBase(root *Node, documentURL string) string {
	if base := root.FindFirst("base"); base != nil {
		if href := base.GetAttribute("href"); href != "" {
			return ResolveURL(baseDir(documentURL), href)
		}
	}
	return baseDir(documentURL)
}

// baseDir trims the document file name, leaving the directory or URL
// prefix relative references resolve against.
func baseDir(documentURL string) string {
	if documentURL == "" {
		return ""
	}
	if isAbsoluteURL(documentURL) {
		u, err := url.Parse(documentURL)
		if err != nil {
			return documentURL
		}
		if i := strings.LastIndex(u.Path, "/"); i >= 0 {
			u.Path = u.Path[:i+1]
		}
		u.RawQuery = ""
		u.Fragment = ""
		return u.String()
	}
	return filepath.Dir(documentURL)
}
