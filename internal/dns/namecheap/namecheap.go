package namecheap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/xmldoc"
)

// DefaultAPIHost is the base address of the Namecheap dynamic DNS endpoint.
const DefaultAPIHost = "https://dynamicdns.park-your-domain.com"

const rootElement = "interface-response"

func init() {
	dns.Register("namecheap", func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider for Namecheap dynamic DNS.
type Provider struct {
	baseURL string
	client  *http.Client
	parser  xmldoc.Parser
	log     logr.Logger
}

// New creates a Namecheap provider from the given settings map.
// Optional settings: api_host (default DefaultAPIHost).
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	baseURL := settings["api_host"]
	if baseURL == "" {
		baseURL = DefaultAPIHost
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("namecheap: invalid api_host %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("namecheap: invalid api_host %q: want an absolute http(s) URL", baseURL)
	}

	// No client timeout: a request runs until it completes or ctx is canceled.
	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Transport: transport},
		parser:  xmldoc.NewParser(),
		log:     log,
	}, nil
}

// SetHTTPClient replaces the client used for update requests.
func (p *Provider) SetHTTPClient(c *http.Client) {
	if c == nil {
		c = http.DefaultClient
	}
	p.client = c
}

// SetParser replaces the XML parser used to read responses.
func (p *Provider) SetParser(parser xmldoc.Parser) {
	p.parser = parser
}

// updateURL composes <api_host>/update?host=..&domain=..&password=..[&ip=..].
func (p *Provider) updateURL(record dns.Record) string {
	q := query{
		{"host", record.Host},
		{"domain", record.Domain},
		{"password", record.Password},
	}
	if record.IP != "" {
		q = append(q, param{"ip", record.IP})
	}
	return p.baseURL + "/update?" + q.Encode()
}

// Update issues a single update request for record and returns the IP the
// provider assigned. It makes exactly one attempt.
func (p *Provider) Update(ctx context.Context, record dns.Record) (string, error) {
	p.log.V(1).Info("sending update request", "host", record.Host, "fqdn", dns.FQDN(record.Host, record.Domain), "explicitIP", record.IP != "")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.updateURL(record), nil)
	if err != nil {
		return "", fmt.Errorf("namecheap: build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the password.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return "", fmt.Errorf("namecheap: GET %s/update: %w", p.baseURL, uerr.Err)
		}
		return "", fmt.Errorf("namecheap: GET %s/update: %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &dns.HTTPError{StatusCode: resp.StatusCode, StatusText: reasonPhrase(resp)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("namecheap: read response body: %w", err)
	}

	ip, err := p.interpret(body)
	if err != nil {
		return "", err
	}
	p.log.V(1).Info("update accepted", "host", record.Host, "ip", ip)
	return ip, nil
}

// interpret reads an interface-response document. ErrCount > 0 means the
// provider rejected the request even though the HTTP status was 200.
func (p *Provider) interpret(body []byte) (string, error) {
	doc, err := p.parser.Parse(body)
	if err != nil {
		return "", &dns.ProtocolError{Root: rootElement, Err: err}
	}
	root, ok := doc.Child(rootElement)
	if !ok || root.Empty() {
		return "", &dns.ProtocolError{Root: rootElement}
	}

	if n := errCount(root); n > 0 {
		messages := errorMessages(root)
		if len(messages) == 0 {
			messages = []string{fmt.Sprintf("ErrCount is %s but no error messages were returned", strconv.FormatFloat(n, 'f', -1, 64))}
		}
		return "", &dns.ProviderError{Messages: messages}
	}
	return xmldoc.TextOf(root, "IP"), nil
}

// errCount reads ErrCount; a missing or non-numeric value counts as zero.
func errCount(root xmldoc.Node) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(xmldoc.TextOf(root, "ErrCount")), 64)
	if err != nil {
		return 0
	}
	return n
}

// errorMessages collects the text entries under <errors>, skipping entries
// that are not plain text.
func errorMessages(root xmldoc.Node) []string {
	errs, ok := root.Child("errors")
	if !ok {
		return nil
	}
	var messages []string
	for _, f := range errs.Children() {
		if s, ok := f.Node.Text(); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// reasonPhrase extracts the reason phrase from a status line such as
// "500 Internal Server Error".
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
