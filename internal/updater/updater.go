// Package updater drives host record updates against a dynamic DNS provider.
//
// One call to Update validates the options, walks the selected hosts strictly
// in order and sends one provider request per host. The first failure aborts
// the remaining hosts; hosts already updated stay updated.
package updater

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns/namecheap"
	_ "github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns/providers"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/metrics"
)

// DefaultProvider is the registered provider used when Options.Provider is empty.
const DefaultProvider = "namecheap"

// Options is the input of a single update.
type Options struct {
	Domain   string // required
	Password string // required, never logged
	Host     Hosts
	IP       string // optional explicit IPv4 address
	APIHost  string // optional provider base URL

	Provider string            // registered provider name
	Settings map[string]string // extra provider settings
}

type config struct {
	log        logr.Logger
	provider   dns.Provider
	httpClient *http.Client
}

// Option customizes how Update runs.
type Option func(*config)

// WithLogger sets the logger receiving per-host progress messages.
func WithLogger(log logr.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithProvider bypasses the registry and sends records to p.
func WithProvider(p dns.Provider) Option {
	return func(c *config) { c.provider = p }
}

// WithHTTPClient sets the HTTP client of providers that accept one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

func (o Options) validate() error {
	if o.Domain == "" {
		return dns.MissingOption("domain")
	}
	if o.Password == "" {
		return dns.MissingOption("password")
	}
	return nil
}

func (o Options) newProvider(c config) (dns.Provider, error) {
	name := o.Provider
	if name == "" {
		name = DefaultProvider
	}
	settings := make(map[string]string, len(o.Settings)+1)
	for k, v := range o.Settings {
		settings[k] = v
	}
	settings["api_host"] = o.APIHost
	if settings["api_host"] == "" {
		settings["api_host"] = namecheap.DefaultAPIHost
	}

	p, err := dns.NewProvider(name, c.log.WithName("dns-"+name), settings)
	if err != nil {
		return nil, err
	}
	if c.httpClient != nil {
		if hc, ok := p.(interface{ SetHTTPClient(*http.Client) }); ok {
			hc.SetHTTPClient(c.httpClient)
		}
	}
	return p, nil
}

// Update applies opts and returns the IP the provider reported for the last
// host in the selection. With an explicitly empty host list no request is
// made and opts.IP is returned.
func Update(ctx context.Context, opts Options, options ...Option) (string, error) {
	c := config{log: logr.Discard()}
	for _, o := range options {
		o(&c)
	}

	if err := opts.validate(); err != nil {
		return "", err
	}
	hosts := opts.Host.Values()

	provider := c.provider
	if provider == nil {
		var err error
		if provider, err = opts.newProvider(c); err != nil {
			return "", fmt.Errorf("creating DNS provider: %w", err)
		}
	}

	return fold(hosts, opts.IP, func(_ string, v any) (string, error) {
		host, err := hostName(v)
		if err != nil {
			return "", err
		}
		fqdn := dns.FQDN(host, opts.Domain)

		c.log.Info(fmt.Sprintf("Updating DNS record for host \"%s\"", host), "fqdn", fqdn)
		ip, err := provider.Update(ctx, dns.Record{
			Host:     host,
			Domain:   opts.Domain,
			Password: opts.Password,
			IP:       opts.IP,
		})
		metrics.ObserveHostUpdate(fqdn, err)
		if err != nil {
			return "", err
		}
		c.log.Info(fmt.Sprintf("DNS record for host \"%s\" updated to IP: %s", host, ip), "fqdn", fqdn)
		return ip, nil
	})
}

// fold applies f to each item in order, threading the accumulator through.
// It stops at the first error.
func fold[T, A any](items []T, acc A, f func(A, T) (A, error)) (A, error) {
	for _, item := range items {
		next, err := f(acc, item)
		if err != nil {
			var zero A
			return zero, err
		}
		acc = next
	}
	return acc, nil
}
