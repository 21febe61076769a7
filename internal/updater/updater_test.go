package updater

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns/namecheap/namecheaptest"
)

type logEntry struct {
	level int
	msg   string
	kv    string
}

// captureSink records every log call for assertions.
type captureSink struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newCapture() (logr.Logger, func() []logEntry) {
	s := captureSink{mu: &sync.Mutex{}, entries: &[]logEntry{}}
	return logr.New(s), func() []logEntry {
		s.mu.Lock()
		defer s.mu.Unlock()
		return append([]logEntry(nil), *s.entries...)
	}
}

func (s captureSink) Init(logr.RuntimeInfo) {}
func (s captureSink) Enabled(int) bool     { return true }
func (s captureSink) Info(level int, msg string, kv ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.entries = append(*s.entries, logEntry{level: level, msg: msg, kv: fmt.Sprint(kv...)})
}
func (s captureSink) Error(err error, msg string, kv ...any) {
	s.Info(0, msg+": "+err.Error(), kv...)
}
func (s captureSink) WithValues(...any) logr.LogSink { return s }
func (s captureSink) WithName(string) logr.LogSink   { return s }

func infoMessages(entries []logEntry) []string {
	var out []string
	for _, e := range entries {
		if e.level == 0 {
			out = append(out, e.msg)
		}
	}
	return out
}

func newServer(t *testing.T) *namecheaptest.Server {
	t.Helper()
	srv := namecheaptest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

func baseOptions(apiHost string) Options {
	return Options{Domain: "example.com", Password: "testpass", APIHost: apiHost}
}

func TestUpdate_MissingDomain(t *testing.T) {
	srv := newServer(t)
	opts := baseOptions(srv.URL)
	opts.Domain = ""

	_, err := Update(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, `Option "domain" must be specified`, err.Error())

	var verr *dns.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, srv.Requests())
}

func TestUpdate_MissingPassword(t *testing.T) {
	srv := newServer(t)
	opts := baseOptions(srv.URL)
	opts.Password = ""

	_, err := Update(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, `Option "password" must be specified`, err.Error())
	assert.Empty(t, srv.Requests())
}

func TestUpdate_MissingBoth(t *testing.T) {
	_, err := Update(context.Background(), Options{Host: SingleHost("www")})
	require.Error(t, err)
	assert.Equal(t, `Option "domain" must be specified`, err.Error())
}

func TestUpdate_DefaultHost(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Success("203.0.113.4"))

	ip, err := Update(context.Background(), baseOptions(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.4", ip)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "@", reqs[0].Query.Get("host"))
	assert.Equal(t, "example.com", reqs[0].Query.Get("domain"))
	assert.Equal(t, "testpass", reqs[0].Query.Get("password"))
}

func TestUpdate_SingleHost(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("www", "example.com", "testpass", namecheaptest.Success("203.0.113.5"))

	opts := baseOptions(srv.URL)
	opts.Host = SingleHost("www")
	ip, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", ip)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "www", reqs[0].Query.Get("host"))
}

func TestUpdate_MultipleHostsInOrder(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Success("203.0.113.1"))
	srv.MockResponse("www", "example.com", "testpass", namecheaptest.Success("203.0.113.2"))

	opts := baseOptions(srv.URL)
	opts.Host = MultiHost("@", "www")
	ip, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.2", ip, "result is the IP of the last host")

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "@", reqs[0].Query.Get("host"))
	assert.Equal(t, "www", reqs[1].Query.Get("host"))
}

func TestUpdate_ExplicitIP(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Success("203.0.113.1"))

	opts := baseOptions(srv.URL)
	opts.IP = "203.0.113.1"
	_, err := Update(context.Background(), opts)
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "203.0.113.1", reqs[0].Query.Get("ip"))
	assert.Contains(t, reqs[0].URL, "ip=203.0.113.1")
}

func TestUpdate_WildcardHost(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("*", "example.com", "testpass", namecheaptest.Success("203.0.113.7"))

	opts := baseOptions(srv.URL)
	opts.Host = SingleHost("*")
	_, err := Update(context.Background(), opts)
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "*", reqs[0].Query.Get("host"))
}

func TestUpdate_NonStringHost(t *testing.T) {
	srv := newServer(t)
	srv.MockDefault(namecheaptest.Success("203.0.113.1"))

	opts := baseOptions(srv.URL)
	opts.Host = HostsOf([]any{123})
	_, err := Update(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, "Host must be a string, got number", err.Error())

	var terr *dns.HostTypeError
	assert.True(t, errors.As(err, &terr))
	assert.Empty(t, srv.Requests())
}

func TestUpdate_NonStringHostAfterSuccess(t *testing.T) {
	srv := newServer(t)
	srv.MockDefault(namecheaptest.Success("203.0.113.1"))

	opts := baseOptions(srv.URL)
	opts.Host = HostsOf([]any{"@", true, "www"})
	_, err := Update(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, "Host must be a string, got boolean", err.Error())

	// The first host was already updated and is not rolled back.
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "@", reqs[0].Query.Get("host"))
}

func TestUpdate_EmptyHostEntry(t *testing.T) {
	srv := newServer(t)

	opts := baseOptions(srv.URL)
	opts.Host = MultiHost("")
	_, err := Update(context.Background(), opts)
	require.Error(t, err)

	var verr *dns.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, srv.Requests())
}

// An explicitly empty host list performs no requests and succeeds. This
// mirrors observed behavior rather than treating it as an error.
func TestUpdate_EmptyHostList(t *testing.T) {
	srv := newServer(t)

	opts := baseOptions(srv.URL)
	opts.Host = MultiHost()
	ip, err := Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "", ip)

	opts.IP = "203.0.113.9"
	ip, err = Update(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", ip)

	assert.Empty(t, srv.Requests())
}

func TestUpdate_FailureAbortsRemainingHosts(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Success("203.0.113.1"))
	srv.MockResponse("www", "example.com", "testpass", namecheaptest.Failure("Domain name not found"))
	srv.MockResponse("api", "example.com", "testpass", namecheaptest.Success("203.0.113.1"))

	opts := baseOptions(srv.URL)
	opts.Host = MultiHost("@", "www", "api")
	ip, err := Update(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, "", ip)
	assert.Equal(t, "Failed to update record:\nDomain name not found", err.Error())

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "www", reqs[1].Query.Get("host"))
}

func TestUpdate_HTTPError(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Response{Status: 500, Body: "Internal Server Error"})

	_, err := Update(context.Background(), baseOptions(srv.URL))
	require.Error(t, err)
	assert.Equal(t, "Request failed with status 500 Internal Server Error", err.Error())
}

func TestUpdate_InvalidXML(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Response{Body: "invalid xml"})

	_, err := Update(context.Background(), baseOptions(srv.URL))
	require.Error(t, err)
	assert.Equal(t, "Invalid response, missing `interface-response` property", err.Error())
}

func TestUpdate_LogMessages(t *testing.T) {
	srv := newServer(t)
	srv.MockResponse("@", "example.com", "testpass", namecheaptest.Success("203.0.113.6"))
	srv.MockResponse("www", "example.com", "testpass", namecheaptest.Success("203.0.113.6"))

	log, entries := newCapture()
	opts := baseOptions(srv.URL)
	opts.Host = MultiHost("@", "www")
	_, err := Update(context.Background(), opts, WithLogger(log))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Updating DNS record for host "@"`,
		`DNS record for host "@" updated to IP: 203.0.113.6`,
		`Updating DNS record for host "www"`,
		`DNS record for host "www" updated to IP: 203.0.113.6`,
	}, infoMessages(entries()))
}

func TestUpdate_PasswordNeverLogged(t *testing.T) {
	srv := newServer(t)
	password := "super-secret-password"
	srv.MockDefault(namecheaptest.Failure("Invalid password"))

	log, entries := newCapture()
	opts := baseOptions(srv.URL)
	opts.Password = password
	_, _ = Update(context.Background(), opts, WithLogger(log))

	for _, e := range entries() {
		assert.NotContains(t, e.msg, password)
		assert.NotContains(t, e.kv, password)
	}
}

type recordingProvider struct {
	records []dns.Record
	ips     map[string]string
}

func (p *recordingProvider) Update(_ context.Context, record dns.Record) (string, error) {
	p.records = append(p.records, record)
	return p.ips[record.Host], nil
}

func TestUpdate_WithProvider(t *testing.T) {
	p := &recordingProvider{ips: map[string]string{"@": "198.51.100.1", "www": "198.51.100.2"}}

	ip, err := Update(context.Background(), Options{
		Domain:   "Example.com",
		Password: "pw",
		Host:     MultiHost("@", "www"),
		IP:       "198.51.100.2",
	}, WithProvider(p))
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.2", ip)

	require.Len(t, p.records, 2)
	assert.Equal(t, dns.Record{Host: "@", Domain: "Example.com", Password: "pw", IP: "198.51.100.2"}, p.records[0])
	assert.Equal(t, "www", p.records[1].Host)
}

type countingTransport struct {
	mu    sync.Mutex
	count int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

func TestUpdate_WithHTTPClient(t *testing.T) {
	srv := newServer(t)
	srv.MockDefault(namecheaptest.Success("203.0.113.1"))
	rt := &countingTransport{}

	opts := baseOptions(srv.URL)
	opts.Host = MultiHost("@", "www")
	_, err := Update(context.Background(), opts, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	assert.Equal(t, 2, rt.count)
}

func TestUpdate_UnknownProvider(t *testing.T) {
	opts := baseOptions("http://localhost")
	opts.Provider = "no-such-provider"

	_, err := Update(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "creating DNS provider"))
}

func TestUpdate_InvalidAPIHost(t *testing.T) {
	_, err := Update(context.Background(), baseOptions("not a url"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api_host")
}

func TestFold(t *testing.T) {
	sum, err := fold([]int{1, 2, 3}, 10, func(acc, n int) (int, error) { return acc + n, nil })
	require.NoError(t, err)
	assert.Equal(t, 16, sum)

	stop := errors.New("stop")
	var seen []int
	_, err = fold([]int{1, 2, 3}, 0, func(acc, n int) (int, error) {
		seen = append(seen, n)
		if n == 2 {
			return 0, stop
		}
		return acc + n, nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{1, 2}, seen)
}
