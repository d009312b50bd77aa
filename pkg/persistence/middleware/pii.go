package middleware

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Redacted replaces the value of a masked query parameter.
const Redacted = "redacted"

type piiMiddleware struct {
	ports.Host
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of query parameters
// whose names match one of the patterns before the URL reaches the host.
// The displayed page keeps the real values; only the recorded URL is masked.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.Host) ports.Host {
		return &piiMiddleware{Host: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) PushState(ctx context.Context, state domain.HistoryState, url string) error {
	return m.Host.PushState(ctx, state, MaskQuery(url, m.patterns))
}

func (m *piiMiddleware) ReplaceState(ctx context.Context, state domain.HistoryState, url string) error {
	return m.Host.ReplaceState(ctx, state, MaskQuery(url, m.patterns))
}

// MaskQuery masks matching query values of rawURL. Parameter order, the path
// and the fragment are preserved; a URL without matches is returned unchanged.
func MaskQuery(rawURL string, patterns []*regexp.Regexp) string {
	rest, fragment, hasFragment := strings.Cut(rawURL, "#")
	path, query, hasQuery := strings.Cut(rest, "?")
	if !hasQuery || query == "" {
		return rawURL
	}

	pairs := strings.Split(query, "&")
	masked := false
	for i, pair := range pairs {
		rawKey, _, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		for _, p := range patterns {
			if p.MatchString(key) {
				pairs[i] = rawKey + "=" + Redacted
				masked = true
				break
			}
		}
	}
	if !masked {
		return rawURL
	}

	out := path + "?" + strings.Join(pairs, "&")
	if hasFragment {
		out += "#" + fragment
	}
	return out
}
