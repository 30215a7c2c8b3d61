// Package whitelist decides which browser origins may call the service.
package whitelist

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Checker matches request origins against a configured allowlist. Entries
// are exact origins ("https://app.example.com"), host wildcards
// ("*.example.com") or "*" for any origin.
type Checker struct {
	origins  []string
	allowAll bool
	logger   *zap.Logger
}

// NewChecker creates a new origin checker
func NewChecker(origins []string, logger *zap.Logger) *Checker {
	// Normalize origins (lowercase, no trailing slash)
	normalized := make([]string, 0, len(origins))
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
		}
		normalized = append(normalized, origin)
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized origin allowlist", zap.Strings("origins", normalized))
	}

	return &Checker{
		origins:  normalized,
		allowAll: allowAll,
		logger:   logger,
	}
}

// AllowAll reports whether every origin is accepted
func (c *Checker) AllowAll() bool { return c.allowAll }

// IsWhitelisted checks if the request origin is allowed
func (c *Checker) IsWhitelisted(origin string) bool {
	if c.allowAll {
		return true
	}
	if len(c.origins) == 0 || origin == "" {
		return false
	}

	origin = strings.TrimRight(strings.ToLower(origin), "/")
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()

	for _, allowed := range c.origins {
		if allowed == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(allowed, "*."); ok && strings.HasSuffix(host, "."+suffix) {
			if c.logger != nil {
				c.logger.Debug("Origin matched wildcard",
					zap.String("origin", origin),
					zap.String("pattern", allowed))
			}
			return true
		}
	}

	return false
}
