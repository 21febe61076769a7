package dns

import (
	"strings"
)

// DefaultHost is the host label addressing the bare domain.
const DefaultHost = "@"

// FQDN joins a host label and a domain into a fully qualified name.
// e.g. ("www", "example.com") → "www.example.com"
// e.g. ("@", "example.com") → "example.com"
func FQDN(host, domain string) string {
	domain = strings.TrimSuffix(domain, ".")
	if host == "" || host == DefaultHost {
		return domain
	}
	if domain == "" {
		return host
	}
	return host + "." + domain
}

// SplitList splits a comma-separated host list, trimming each entry and
// dropping empty ones. e.g. " @, www,,api " → ["@", "www", "api"]
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
