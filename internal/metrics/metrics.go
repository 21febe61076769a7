// Package metrics exposes update counters through the controller-runtime
// metrics registry.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/yuriy-kovalchuk/nc-ddns-updater/internal/dns"
)

var (
	hostUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ddns_host_updates_total",
		Help: "Host record update attempts by result.",
	}, []string{"fqdn", "result"})

	hostLastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ddns_host_last_success_timestamp_seconds",
		Help: "Unix time of the last accepted update per host record.",
	}, []string{"fqdn"})

	runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ddns_runs_total",
		Help: "Complete update runs by result.",
	}, []string{"result"})
)

func init() {
	crmetrics.Registry.MustRegister(hostUpdates, hostLastSuccess, runs)
}

// Result labels an update outcome by error kind.
func Result(err error) string {
	var (
		verr *dns.ValidationError
		terr *dns.HostTypeError
		herr *dns.HTTPError
		perr *dns.ProtocolError
		rerr *dns.ProviderError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr), errors.As(err, &terr):
		return "invalid"
	case errors.As(err, &herr):
		return "http_error"
	case errors.As(err, &perr):
		return "protocol_error"
	case errors.As(err, &rerr):
		return "rejected"
	default:
		return "error"
	}
}

// ObserveHostUpdate records one provider request for fqdn.
func ObserveHostUpdate(fqdn string, err error) {
	hostUpdates.WithLabelValues(fqdn, Result(err)).Inc()
	if err == nil {
		hostLastSuccess.WithLabelValues(fqdn).Set(float64(time.Now().Unix()))
	}
}

// ObserveRun records the outcome of one complete update run.
func ObserveRun(err error) {
	runs.WithLabelValues(Result(err)).Inc()
}
