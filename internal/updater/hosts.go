package updater

import (
	"fmt"
	"strings"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns"
)

// Hosts selects the host records an update touches: the default host ("@"),
// a single host, or an explicit ordered list. The zero value is the default.
//
// Lists built from decoded configuration may hold non-string entries; those
// are reported when the update reaches them.
type Hosts struct {
	values []any
	set    bool
}

// DefaultHosts selects only the bare domain record.
func DefaultHosts() Hosts { return Hosts{} }

// SingleHost selects one host. An empty name selects the default host.
func SingleHost(host string) Hosts {
	if host == "" {
		return Hosts{}
	}
	return Hosts{values: []any{host}, set: true}
}

// MultiHost selects an explicit list of hosts, in order. An empty list
// selects nothing.
func MultiHost(hosts ...string) Hosts {
	values := make([]any, len(hosts))
	for i, h := range hosts {
		values[i] = h
	}
	return Hosts{values: values, set: true}
}

// HostsOf converts a loosely typed value, such as a decoded YAML field, into
// a host selection. nil selects the default, a string selects one host and a
// slice selects its elements as-is. Any other value becomes a one-element list.
func HostsOf(v any) Hosts {
	switch h := v.(type) {
	case nil:
		return Hosts{}
	case Hosts:
		return h
	case string:
		return SingleHost(h)
	case []string:
		return MultiHost(h...)
	case []any:
		values := make([]any, len(h))
		copy(values, h)
		return Hosts{values: values, set: true}
	default:
		return Hosts{values: []any{v}, set: true}
	}
}

// IsDefault reports whether no host was chosen explicitly.
func (h Hosts) IsDefault() bool { return !h.set }

// Values returns the normalized, ordered host sequence.
func (h Hosts) Values() []any {
	if !h.set {
		return []any{dns.DefaultHost}
	}
	out := make([]any, len(h.values))
	copy(out, h.values)
	return out
}

func (h Hosts) String() string {
	parts := make([]string, 0, len(h.values))
	for _, v := range h.Values() {
		parts = append(parts, fmt.Sprint(v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// hostName checks that v is a usable host name.
func hostName(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &dns.HostTypeError{Got: typeName(v)}
	}
	if s == "" {
		return "", &dns.ValidationError{Message: "Host must not be empty"}
	}
	return s, nil
}

// typeName names the kind of v the way configuration authors think of it.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	default:
		return "object"
	}
}
