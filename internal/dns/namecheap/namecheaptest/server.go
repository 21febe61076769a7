// Package namecheaptest provides an in-memory Namecheap dynamic DNS endpoint
// for tests.
package namecheaptest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// Request is a request received by the fake endpoint.
type Request struct {
	Method string
	URL    string // raw request URI, e.g. "/update?host=%40&domain=..."
	Query  url.Values
}

// Response is a canned reply. A zero Status means 200.
type Response struct {
	Status int
	Body   string
	Header http.Header
}

// Server is a fake Namecheap endpoint. Responses are matched on the
// host, domain and password query parameters, falling back to the default
// response; unmatched requests get 404.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	fallback  *Response
	requests  []Request
}

// NewServer starts a fake endpoint. Call Close when done.
func NewServer() *Server {
	s := &Server{responses: map[string]Response{}}
	s.Server = httptest.NewServer(s)
	return s
}

// Key builds the lookup key for a host/domain/password triple.
func Key(host, domain, password string) string {
	return host + "-" + domain + "-" + password
}

// MockResponse registers the reply for requests carrying the given values.
func (s *Server) MockResponse(host, domain, password string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[Key(host, domain, password)] = resp
}

// MockDefault registers the reply for requests without a specific match.
func (s *Server) MockDefault(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &resp
}

// Requests returns a copy of every request received so far, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Reset clears mocked responses and the request history.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = map[string]Response{}
	s.fallback = nil
	s.requests = nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, URL: r.URL.RequestURI(), Query: q})
	resp, ok := s.responses[Key(q.Get("host"), q.Get("domain"), q.Get("password"))]
	if !ok && s.fallback != nil {
		resp, ok = *s.fallback, true
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

// Success returns a 200 response assigning ip.
func Success(ip string) Response {
	return Response{Body: SuccessBody(ip)}
}

// Failure returns a 200 response rejecting the update with message.
func Failure(message string) Response {
	return Response{Body: ErrorBody(message)}
}

// SuccessBody renders the provider's reply to an accepted update.
func SuccessBody(ip string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-16"?>
<interface-response>
  <Command>SETDNSHOST</Command>
  <Language>eng</Language>
  <IP>%s</IP>
  <ErrCount>0</ErrCount>
  <ResponseCount>0</ResponseCount>
  <Done>true</Done>
  <debug><![CDATA[]]></debug>
</interface-response>`, ip)
}

// ErrorBody renders the provider's reply to a rejected update.
func ErrorBody(message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-16"?>
<interface-response>
  <Command>SETDNSHOST</Command>
  <Language>eng</Language>
  <ErrCount>1</ErrCount>
  <errors>
    <Err1>%s</Err1>
  </errors>
  <ResponseCount>1</ResponseCount>
  <responses>
    <response>
      <ResponseNumber>316153</ResponseNumber>
      <ResponseString>%s</ResponseString>
    </response>
  </responses>
  <Done>true</Done>
  <debug><![CDATA[]]></debug>
</interface-response>`, message, message)
}
