package dns

import "context"

// Record describes a single host record update sent to a provider.
type Record struct {
	Host     string // host label, e.g. "@", "www", "*"
	Domain   string // e.g. "example.com"
	Password string // per-domain dynamic DNS password, never logged
	IP       string // optional; empty lets the provider use the caller's address
}

// Provider is the interface that dynamic DNS providers must implement.
// Update applies the record and returns the IP the provider assigned to it.
type Provider interface {
	Update(ctx context.Context, record Record) (string, error)
}
