package config

import (
	"net/url"
	"strings"
)

// normalizeListenAddr accepts "8050", ":8050", "host:8050" or a URL and
// returns a host:port suitable for net.Listen.
func normalizeListenAddr(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultAddress
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return u.Host
		}
	}
	if !strings.Contains(s, ":") {
		return ":" + s
	}
	return s
}
