package frontier

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during normalization. They
// never change page content but would defeat visited-set deduplication.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"ref":          {},
}

// NormalizeURL resolves a possibly relative URL against the vendor origin
// and canonicalizes it for deduplication: lowercased scheme/host, default
// ports and fragments removed, tracking parameters stripped, remaining
// query sorted, trailing slash trimmed.
func NormalizeURL(origin *url.URL, rawURL string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	resolved := origin.ResolveReference(ref)

	resolved.Scheme = strings.ToLower(resolved.Scheme)
	resolved.Host = strings.ToLower(resolved.Host)

	// Remove default ports
	if (resolved.Scheme == "http" && strings.HasSuffix(resolved.Host, ":80")) ||
		(resolved.Scheme == "https" && strings.HasSuffix(resolved.Host, ":443")) {
		resolved.Host = resolved.Host[:strings.LastIndex(resolved.Host, ":")]
	}

	resolved.Fragment = ""

	if resolved.RawQuery != "" {
		values := resolved.Query()
		for param := range values {
			if _, tracking := trackingParams[param]; tracking {
				values.Del(param)
			}
		}
		resolved.RawQuery = values.Encode()
	}

	if resolved.Path != "/" && strings.HasSuffix(resolved.Path, "/") {
		resolved.Path = strings.TrimSuffix(resolved.Path, "/")
	}
	if resolved.Path == "" {
		resolved.Path = "/"
	}

	return resolved.String(), nil
}

// SameOrigin reports whether the URL's host matches the vendor origin,
// including subdomains (www.shop.example matches shop.example).
func SameOrigin(origin *url.URL, urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Host)
	originHost := strings.ToLower(origin.Host)

	if host == originHost {
		return true
	}
	if strings.HasSuffix(host, "."+originHost) {
		return true
	}
	// The origin itself may carry a www prefix.
	if trimmed := strings.TrimPrefix(originHost, "www."); host == trimmed || strings.HasSuffix(host, "."+trimmed) {
		return true
	}
	return false
}

// IsCrawlable checks scheme and skips common non-page assets.
func IsCrawlable(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	skipExtensions := []string{
		".jpg", ".jpeg", ".png", ".gif", ".ico", ".svg", ".webp",
		".css", ".js", ".woff", ".woff2", ".ttf",
		".pdf", ".zip", ".tar", ".gz",
		".mp3", ".mp4", ".webm", ".avi",
	}

	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}
