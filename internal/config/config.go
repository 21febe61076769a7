// Package config resolves updater settings from command-line flags,
// NC_DDNS_* environment variables and an optional YAML file, in that order
// of precedence.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns"
	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/updater"
)

// Environment variables consulted when the matching flag is not given.
const (
	EnvDomain   = "NC_DDNS_DOMAIN"
	EnvPassword = "NC_DDNS_PASSWORD"
	EnvHost     = "NC_DDNS_HOST" // comma-separated
	EnvIP       = "NC_DDNS_IP"
	EnvAPIHost  = "NC_DDNS_API_HOST"
	EnvInterval = "NC_DDNS_INTERVAL" // seconds
	EnvConfig   = "NC_DDNS_CONFIG"   // path to a YAML file
)

// Flags holds values given on the command line. Empty values count as not
// given.
type Flags struct {
	Domain   string
	Password string
	Hosts    []string
	IP       string
	Interval string
	Config   string
}

// Config is the resolved configuration of a run.
type Config struct {
	Provider string
	Domain   string
	Password string
	Host     any // nil (default host), []string, or a value decoded from YAML
	IP       string
	APIHost  string
	Interval time.Duration
	Settings map[string]string
}

// LookupFunc reads an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolve merges flags, the environment and the config file. A nil lookup
// reads the process environment.
func Resolve(flags Flags, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	file := &FileConfig{}
	if path := first(flags.Config, env(EnvConfig)); path != "" {
		var err error
		if file, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Provider: file.Provider,
		Domain:   first(flags.Domain, env(EnvDomain), file.Domain),
		Password: first(flags.Password, env(EnvPassword), file.Password),
		IP:       first(flags.IP, env(EnvIP), file.IP),
		APIHost:  first(env(EnvAPIHost), file.APIHost),
		Settings: file.Settings,
	}

	if hosts := nonEmpty(flags.Hosts); len(hosts) > 0 {
		cfg.Host = hosts
	} else if hosts := dns.SplitList(env(EnvHost)); len(hosts) > 0 {
		cfg.Host = hosts
	} else {
		cfg.Host = file.Host
	}

	interval, err := ParseInterval(first(flags.Interval, env(EnvInterval), scalarString(file.Interval)))
	if err != nil {
		return nil, err
	}
	cfg.Interval = interval

	return cfg, nil
}

// Options returns the updater input described by c.
func (c *Config) Options() updater.Options {
	return updater.Options{
		Domain:   c.Domain,
		Password: c.Password,
		Host:     updater.HostsOf(c.Host),
		IP:       c.IP,
		APIHost:  c.APIHost,
		Provider: c.Provider,
		Settings: c.Settings,
	}
}

// ParseInterval parses a number of seconds. Fractions are allowed; an empty
// string means zero (run once).
func ParseInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, &dns.ValidationError{Message: "Interval must be a (finite) number"}
	}
	if secs < 0 {
		return 0, &dns.ValidationError{Message: "Interval must be a positive number or zero"}
	}
	if secs > float64(math.MaxInt64)/float64(time.Second) {
		return 0, &dns.ValidationError{Message: fmt.Sprintf("Interval must be at most %d seconds", int64(math.MaxInt64/int64(time.Second)))}
	}
	d := time.Duration(secs * float64(time.Second))
	if d == 0 && secs > 0 {
		// Positive values below the clock resolution still mean "repeat".
		d = time.Nanosecond
	}
	return d, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// scalarString renders a decoded YAML scalar; nil becomes "".
func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
